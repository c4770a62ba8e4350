package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	collectionapp "github.com/inkasso/backend/internal/application/collection"
	"github.com/inkasso/backend/internal/interfaces/http/middleware"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// CaseHandler handles collection case requests
type CaseHandler struct {
	BaseHandler
	caseService *collectionapp.CaseService
}

// NewCaseHandler creates a new CaseHandler
func NewCaseHandler(caseService *collectionapp.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// CreateCaseBody wraps the create request with the target creditor. Staff
// must name the creditor explicitly; clients fall back to their own.
type CreateCaseBody struct {
	collectionapp.CreateCaseRequest
	KreditorID *uuid.UUID `json:"kreditor_id"`
}

// CreateCase opens a new collection case
func (h *CaseHandler) CreateCase(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var body CreateCaseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	kreditorID := body.KreditorID
	if kreditorID == nil {
		kreditorID = actor.KreditorID
	}
	if kreditorID == nil {
		h.BadRequest(c, "kreditor_id is required")
		return
	}

	resp, err := h.caseService.CreateCase(c.Request.Context(), actor, *kreditorID, body.CreateCaseRequest)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetCase returns a single case visible to the actor
func (h *CaseHandler) GetCase(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.caseService.GetCase(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListCases lists cases visible to the actor with optional filters
func (h *CaseHandler) ListCases(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var filter collectionapp.CaseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	cases, total, err := h.caseService.ListCases(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, cases, total, filter.Page, filter.PageSize)
}

// TransitionCase moves a case to a new status
func (h *CaseHandler) TransitionCase(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req collectionapp.TransitionCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.caseService.TransitionCase(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RecomputeCase re-derives accrued interest and totals as of now
func (h *CaseHandler) RecomputeCase(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.caseService.RecomputeFinancials(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateCaseCosts replaces the cost components of a case
func (h *CaseHandler) UpdateCaseCosts(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req collectionapp.UpdateCaseCostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.caseService.UpdateCaseCosts(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// AddNoteRequest carries a free-text case note
type AddNoteRequest struct {
	Note string `json:"note" binding:"required,max=2000"`
}

// AddCaseNote appends a note to the case history
func (h *CaseHandler) AddCaseNote(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.caseService.AddCaseNote(c.Request.Context(), actor, id, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

package handler

import (
	"github.com/gin-gonic/gin"

	collectionapp "github.com/inkasso/backend/internal/application/collection"
	"github.com/inkasso/backend/internal/interfaces/http/middleware"
)

// InquiryHandler handles case inquiry requests
type InquiryHandler struct {
	BaseHandler
	inquiryService *collectionapp.InquiryService
}

// NewInquiryHandler creates a new InquiryHandler
func NewInquiryHandler(inquiryService *collectionapp.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiryService: inquiryService}
}

// OpenInquiry opens an inquiry on a case
func (h *InquiryHandler) OpenInquiry(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	caseID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req collectionapp.OpenInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.inquiryService.OpenInquiry(c.Request.Context(), actor, caseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListInquiries lists the inquiries of a case
func (h *InquiryHandler) ListInquiries(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	caseID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	inquiries, err := h.inquiryService.ListInquiries(c.Request.Context(), actor, caseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inquiries)
}

// ResolveInquiry answers and closes an open inquiry
func (h *InquiryHandler) ResolveInquiry(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	inquiryID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req collectionapp.ResolveInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.inquiryService.ResolveInquiry(c.Request.Context(), actor, inquiryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListOpenInquiries lists the open inquiries for a creditor's work queue
func (h *InquiryHandler) ListOpenInquiries(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	kreditorID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	inquiries, err := h.inquiryService.ListOpenInquiries(c.Request.Context(), actor, kreditorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inquiries)
}

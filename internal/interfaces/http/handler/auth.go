package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	identityapp "github.com/inkasso/backend/internal/application/identity"
	"github.com/inkasso/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication and user management requests
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user and returns a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var input identityapp.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetMe returns the authenticated user's profile
func (h *AuthHandler) GetMe(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), actor.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// CreateUser provisions a new account, admin only
func (h *AuthHandler) CreateUser(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var input identityapp.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), actor.Role, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// GetUser returns a user by ID
func (h *AuthHandler) GetUser(c *gin.Context) {
	if _, ok := h.requireActor(c); !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// AssignAgentRequest carries an agent portfolio assignment
type AssignAgentRequest struct {
	KreditorID uuid.UUID `json:"kreditor_id" binding:"required"`
}

// AssignAgent adds a creditor to an agent's portfolio, admin only
func (h *AuthHandler) AssignAgent(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	agentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.authService.AssignAgentToKreditor(c.Request.Context(), actor.Role, agentID, req.KreditorID); err != nil {
		h.HandleError(c, err)
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), agentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

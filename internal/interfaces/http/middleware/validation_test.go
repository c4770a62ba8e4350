package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkasso/backend/internal/interfaces/http/dto"
)

func TestSetupValidator(t *testing.T) {
	// Should not panic
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	type transitionBody struct {
		TargetStatus string `json:"target_status" binding:"required,casestatus"`
		Note         string `json:"note" binding:"max=10"`
	}

	SetupValidator()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req transitionBody
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("rejects unknown status with field details", func(t *testing.T) {
		body := strings.NewReader(`{"target_status": "ESCALATED", "note": "viel zu lange Notiz"}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "target_status", resp.Error.Details[0].Field)
		assert.Equal(t, "Unknown case status", resp.Error.Details[0].Message)
		assert.Equal(t, "note", resp.Error.Details[1].Field)
	})

	t.Run("accepts a known status", func(t *testing.T) {
		body := strings.NewReader(`{"target_status": "REMINDER_1"}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing required field", func(t *testing.T) {
		body := strings.NewReader(`{}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "This field is required", resp.Error.Details[0].Message)
	})
}

package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/interfaces/http/dto"
)

// SetupValidator configures the binding validator with custom tags
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Use JSON tag names for field names in errors
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})

		// casestatus accepts only known case lifecycle statuses
		_ = v.RegisterValidation("casestatus", func(fl validator.FieldLevel) bool {
			return collection.CaseStatus(fl.Field().String()).IsValid()
		})
	}
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return fmt.Sprintf("Must not exceed %s characters", e.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s", e.Param())
	case "uuid":
		return "Must be a valid UUID"
	case "casestatus":
		return "Unknown case status"
	default:
		return fmt.Sprintf("Failed validation on %s", e.Tag())
	}
}

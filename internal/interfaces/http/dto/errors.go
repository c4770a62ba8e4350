package dto

import (
	"net/http"
	"strings"

	"github.com/inkasso/backend/internal/domain/shared"
)

// HTTP-layer error codes for failures that never reach the domain
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Authorization failures on invisible resources surface as NOT_FOUND from
// the application layer, so 403 here only covers explicit role rejections.
var errorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:              http.StatusNotFound,
	shared.CodeConcurrencyConflict:   http.StatusConflict,
	shared.CodeInvalidTransition:     http.StatusUnprocessableEntity,
	shared.CodeUnauthorizedRole:      http.StatusForbidden,
	shared.CodeInvalidFinancialInput: http.StatusBadRequest,

	"ALREADY_EXISTS":        http.StatusConflict,
	"DUPLICATE_CASE_NUMBER": http.StatusConflict,
	"DUPLICATE_USERNAME":    http.StatusConflict,
	"INVALID_STATE":         http.StatusUnprocessableEntity,

	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"ACCOUNT_INACTIVE":    http.StatusUnauthorized,
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"FORBIDDEN":           http.StatusForbidden,

	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unknown INVALID_* codes are treated as bad input, everything else
// unknown as an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound              = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists         = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput          = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict   = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized          = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden             = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidTransition     = NewDomainError("INVALID_TRANSITION", "Status transition not allowed")
	ErrUnauthorizedRole      = NewDomainError("UNAUTHORIZED_ROLE", "Actor role insufficient for this action")
	ErrInvalidFinancialInput = NewDomainError("INVALID_FINANCIAL_INPUT", "Financial input is invalid")
)

// Error code constants used across error construction sites
const (
	CodeNotFound              = "NOT_FOUND"
	CodeConcurrencyConflict   = "CONCURRENCY_CONFLICT"
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeUnauthorizedRole      = "UNAUTHORIZED_ROLE"
	CodeInvalidFinancialInput = "INVALID_FINANCIAL_INPUT"
)

// IsDomainErrorWithCode reports whether err is a DomainError carrying the given code.
func IsDomainErrorWithCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if de, ok := err.(*DomainError); ok {
		return de.Code == code
	}
	return false
}

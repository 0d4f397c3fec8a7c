package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeCandleNotFound     = "CANDLE_NOT_FOUND"
	ErrCodeCategoryNotFound   = "CATEGORY_NOT_FOUND"
	ErrCodeCategoryExists     = "CATEGORY_EXISTS"
	ErrCodeLabelSetNotFound   = "LABEL_SET_NOT_FOUND"
	ErrCodeEmptySelection     = "EMPTY_SELECTION"
	ErrCodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeUnsupportedFile    = "UNSUPPORTED_FILE"
	ErrCodeInvalidFile        = "INVALID_FILE"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

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

// MissingField reports a required text field that is absent or blank.
func MissingField(field string) *DomainError {
	return NewDomainError(ErrCodeMissingField, fmt.Sprintf("%s is required", field))
}

// Common domain errors
var (
	ErrCandleNotFound     = NewDomainError(ErrCodeCandleNotFound, "Candle not found")
	ErrCategoryNotFound   = NewDomainError(ErrCodeCategoryNotFound, "Category not found")
	ErrCategoryExists     = NewDomainError(ErrCodeCategoryExists, "Category already exists")
	ErrLabelSetNotFound   = NewDomainError(ErrCodeLabelSetNotFound, "Label set not found")
	ErrEmptySelection     = NewDomainError(ErrCodeEmptySelection, "No candles selected for printing")
	ErrUnsupportedFormat  = NewDomainError(ErrCodeUnsupportedFormat, "Only the html format is supported")
	ErrUnsupportedDensity = NewDomainError(ErrCodeInvalidRequest, "labels_per_page must be 6")
	ErrInvalidPrintType   = NewDomainError(ErrCodeInvalidRequest, "print_type must be labels, instructions or full")
	ErrUnsupportedFile    = NewDomainError(ErrCodeUnsupportedFile, "Only CSV and JSON files are supported")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Invalid login or password")
)

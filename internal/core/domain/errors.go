package domain

import (
	"errors"
	"strings"
)

var (
	ErrMissingToken = errors.New("missing or malformed authorization header")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("admin access required")
)

// FieldError describes one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation, not just the
// first one.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

const defaultValidationMessage = "Validation failed"

// NewValidationError builds a ValidationError with the default message.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Message: defaultValidationMessage, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return strings.ToLower(e.message())
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.ToLower(e.message()) + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) message() string {
	if e.Message == "" {
		return defaultValidationMessage
	}
	return e.Message
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field already has an error.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Merge appends the fields of other, if any.
func (e *ValidationError) Merge(other *ValidationError) {
	if other != nil {
		e.Fields = append(e.Fields, other.Fields...)
	}
}

// ErrOrNil returns e when it holds at least one field, nil otherwise.
func (e *ValidationError) ErrOrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// DisplayMessage is the client-facing summary.
func (e *ValidationError) DisplayMessage() string {
	return e.message()
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

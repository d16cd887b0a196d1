package validation

import (
	"fmt"
	"net/http"
	"strings"
)

// Error item constants.
const (
	TypeField    = "field"
	LocationBody = "body"
)

// FieldError describes one failed rule.
type FieldError struct {
	// Type is always "field".
	Type string `json:"type"`

	// Value is the offending value, omitted when the field was absent.
	Value any `json:"value,omitempty"`

	// Msg is the human-readable rule message.
	Msg string `json:"msg"`

	// Path is the field name.
	Path string `json:"path"`

	// Location is where the field was read from.
	Location string `json:"location"`
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return e.Path + ": " + e.Msg
}

// Errors is a batch of field errors from one request.
type Errors []*FieldError

// Error implements the error interface.
func (e Errors) Error() string {
	switch len(e) {
	case 0:
		return "validation failed"
	case 1:
		return e[0].Msg
	}
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Msg
	}
	return fmt.Sprintf("%d validation errors: %s", len(e), strings.Join(msgs, "; "))
}

// StatusCode returns the HTTP status code for this error.
func (e Errors) StatusCode() int {
	return http.StatusBadRequest
}

// Result contains the outcome of validation.
type Result struct {
	Errors Errors
}

// AddError records a failed rule.
func (r *Result) AddError(err *FieldError) {
	r.Errors = append(r.Errors, err)
}

// Valid reports whether no rule failed.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns the collected errors, or nil when valid.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return r.Errors
}

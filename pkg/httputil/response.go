// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dinhlab/supreme-fiesta/pkg/validation"
)

// StatusCodeError is an error that knows its HTTP status.
type StatusCodeError interface {
	error
	StatusCode() int
}

// StatusOf returns the HTTP status carried by err, or 500 when it carries none.
func StatusOf(err error) int {
	var sc StatusCodeError
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code != 0 {
			return code
		}
	}
	return http.StatusInternalServerError
}

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteText writes a plain-text response with the given status code.
func WriteText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

// WriteOK writes a 200 OK response with data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteError writes err as a failure response and returns the status used.
//
// Validation batches render as {"errors": [...]}. Other client errors send
// their message as plain text. Server errors send only the status text; the
// caller is expected to log the detail.
func WriteError(w http.ResponseWriter, err error) int {
	status := StatusOf(err)

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		WriteJSON(w, status, map[string]any{"errors": verrs})
		return status
	}
	if status >= http.StatusInternalServerError {
		WriteText(w, status, http.StatusText(status))
		return status
	}
	WriteText(w, status, err.Error())
	return status
}

// WriteNotFound writes the 404 used for unmatched routes.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteText(w, http.StatusNotFound, message)
}

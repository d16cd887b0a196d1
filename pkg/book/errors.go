package book

import "net/http"

// NotFoundMessage is the message returned when an ID matches no record.
const NotFoundMessage = "Book not found!"

// ValidationError reports bad or disallowed client input.
// Status is 400 for malformed values and 401 for keys outside an allow-list.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for this error.
func (e *ValidationError) StatusCode() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}

// NotAllowed returns the 401 error used for keys outside an allow-list.
func NotAllowed(message string) *ValidationError {
	return &ValidationError{Status: http.StatusUnauthorized, Message: message}
}

// Invalid returns a 400 error for a malformed value.
func Invalid(message string) *ValidationError {
	return &ValidationError{Status: http.StatusBadRequest, Message: message}
}

// NotFoundError is returned when no record matches an ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return NotFoundMessage
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

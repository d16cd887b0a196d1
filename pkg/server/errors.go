package server

import (
	"errors"
	"net/http"

	"github.com/dinhlab/supreme-fiesta/pkg/book"
	"github.com/dinhlab/supreme-fiesta/pkg/store"
	"github.com/dinhlab/supreme-fiesta/pkg/validation"
)

// Client-facing messages.
const (
	Greeting = "Welcome to Bookshelf!"

	ErrMsgPathNotFound    = "Path not found"
	ErrMsgInvalidJSON     = "Invalid JSON in request body"
	ErrMsgNotObject       = "Request body must be a JSON object"
	ErrMsgBodyTooLarge    = "Request body too large"
	ErrMsgTooManyRequests = "Too Many Requests"
	ErrMsgInternalError   = "Internal Server Error"
)

// requestError is a client error raised while reading a request.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string   { return e.message }
func (e *requestError) StatusCode() int { return e.status }

var (
	errInvalidJSON  = &requestError{status: http.StatusBadRequest, message: ErrMsgInvalidJSON}
	errNotObject    = &requestError{status: http.StatusBadRequest, message: ErrMsgNotObject}
	errBodyTooLarge = &requestError{status: http.StatusRequestEntityTooLarge, message: ErrMsgBodyTooLarge}
)

// Values of the type label on bookshelf_errors_total.
const (
	errorTypeStorage     = "storage"
	errorTypeValidation  = "validation"
	errorTypeNotFound    = "not_found"
	errorTypeNotAllowed  = "not_allowed"
	errorTypeRequest     = "request"
	errorTypeInternal    = "internal"
	errorTypePanic       = "panic"
	errorTypeRateLimited = "rate_limited"
)

// errorType classifies err for metrics.
func errorType(err error) string {
	var (
		serr  *store.StorageError
		verrs validation.Errors
		nf    *book.NotFoundError
		ve    *book.ValidationError
		re    *requestError
	)
	switch {
	case errors.As(err, &serr):
		return errorTypeStorage
	case errors.As(err, &verrs):
		return errorTypeValidation
	case errors.As(err, &nf):
		return errorTypeNotFound
	case errors.As(err, &ve):
		if ve.StatusCode() == http.StatusUnauthorized {
			return errorTypeNotAllowed
		}
		return errorTypeValidation
	case errors.As(err, &re):
		return errorTypeRequest
	}
	return errorTypeInternal
}

package errors

import (
	"fmt"
	"net/http"
)

/*
APIError is the error shape every dashboard endpoint returns. Code is a
stable machine-readable string, Status the HTTP status it maps to.
*/
type APIError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

/*
Error implements the error interface for APIError.
*/
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	ErrInvalidParams = &APIError{Code: "invalid_params", Status: http.StatusBadRequest, Message: "Invalid params"}
	ErrNotFound      = &APIError{Code: "not_found", Status: http.StatusNotFound, Message: "Not found"}
	ErrInternal      = &APIError{Code: "internal", Status: http.StatusInternalServerError, Message: "Internal error"}
)

// WithMessagef creates a *copy* of an APIError with a formatted message.
// It does not modify the original error variable.
func (e *APIError) WithMessagef(format string, args ...any) *APIError {
	newErr := *e
	newErr.Message = fmt.Sprintf(format, args...)
	return &newErr
}

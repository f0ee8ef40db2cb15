package pkg

import (
	"fmt"
	"net/http"
)

// AppError is the error shape returned by HTTP handlers.
type AppError struct {
	Code       string
	Message    string
	Field      string
	HTTPStatus int
	Err        error
}

// HTTPError is the JSON body written for an AppError.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

func NewDomainError(code, message string, err error, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPStatus: httpStatus}
}

func NewDomainErrorSimple(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// NewFieldError builds a 400 error pointing at a single request field.
func NewFieldError(field, message string) *AppError {
	return &AppError{Code: "INVALID_FIELD", Message: message, Field: field, HTTPStatus: http.StatusBadRequest}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ToHTTPError hides wrapped internals for 5xx responses.
func (e *AppError) ToHTTPError() HTTPError {
	out := HTTPError{Code: e.Code, Message: e.Message, Field: e.Field}
	if e.Err != nil && e.HTTPStatus < http.StatusInternalServerError {
		out.Details = e.Err.Error()
	}
	return out
}

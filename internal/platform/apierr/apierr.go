package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation  = "validation_error"
	CodeNotFound    = "not_found"
	CodeConflict    = "conflict"
	CodeTransient   = "transient_store_error"
	CodeAggregation = "aggregation_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(err error) *Error {
	return New(http.StatusBadRequest, CodeValidation, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func Conflict(err error) *Error {
	return New(http.StatusConflict, CodeConflict, err)
}

func Transient(err error) *Error {
	return New(http.StatusServiceUnavailable, CodeTransient, err)
}

// Aggregation wraps rollup recompute failures. These are logged and
// swallowed by callers; the status is only meaningful if one ever leaks.
func Aggregation(err error) *Error {
	return New(http.StatusInternalServerError, CodeAggregation, err)
}

func IsCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

func IsValidation(err error) bool { return IsCode(err, CodeValidation) }
func IsNotFound(err error) bool   { return IsCode(err, CodeNotFound) }
func IsTransient(err error) bool  { return IsCode(err, CodeTransient) }

// StatusOf maps an error onto an HTTP status, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the taxonomy code, or empty for unclassified errors.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

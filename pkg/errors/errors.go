package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound      = NewError("NOT_FOUND", "resource not found", http.StatusNotFound)
	ErrValidation    = NewError("VALIDATION_ERROR", "validation failed", http.StatusBadRequest)
	ErrConflict      = NewError("CONFLICT", "resource conflict", http.StatusConflict)
	ErrInternal      = NewError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
	ErrConfiguration = NewError("CONFIGURATION_ERROR", "storage unavailable or misconfigured", http.StatusServiceUnavailable)

	// Evaluation-time errors. These never surface through HTTP: the generator
	// reports them and keeps going, scoped to a single predicate or row.
	ErrQuery  = NewError("QUERY_ERROR", "record source query failed", http.StatusInternalServerError)
	ErrLookup = NewError("LOOKUP_ERROR", "field label not present in row", http.StatusInternalServerError)
	ErrParse  = NewError("PARSE_ERROR", "unparseable date value", http.StatusInternalServerError)
)

type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]interface{}
	Cause   error
}

func NewError(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		if detailMsg, ok := e.Details["message"].(string); ok && detailMsg != "" {
			msg = detailMsg
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithCause(cause error) *Error {
	err := *e
	err.Cause = cause
	return &err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := *e
	if err.Details == nil {
		err.Details = make(map[string]interface{})
	}
	err.Details[key] = value
	return &err
}

func Wrap(err error, appErr *Error) *Error {
	if err == nil {
		return nil
	}
	return appErr.WithCause(err)
}

func HasCode(err error, target *Error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

func IsNotFound(err error) bool {
	return HasCode(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return HasCode(err, ErrValidation)
}

func IsConflict(err error) bool {
	return HasCode(err, ErrConflict)
}

func ToHTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

func ToErrorResponse(err error) map[string]interface{} {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = ErrInternal.WithCause(err)
	}

	response := map[string]interface{}{
		"error":      appErr.Message,
		"error_code": appErr.Code,
	}

	if len(appErr.Details) > 0 {
		response["details"] = appErr.Details
	}

	return response
}

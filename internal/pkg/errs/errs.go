/*
Package errs provides the application error type and the business error codes
used across HTTP handlers and the chat gateway.

CustomError carries a stable business code, a client-safe message, and the
HTTP status the edge should answer with.
*/
package errs

import (
	"fmt"
	"net/http"

	"mikuchat/internal/pkg/logx"
)

// CustomError is the error type surfaced to clients. It implements the error
// interface and maps one-to-one onto the JSON error envelope.
type CustomError struct {
	// Code is the stable business error code (see error_codes.go).
	Code int

	// Message is the client-safe description.
	Message string

	// Status is the HTTP status code the edge responds with.
	Status int
}

func (e CustomError) Error() string {
	return fmt.Sprintf("error code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError from a predefined code. An unknown code is
// logged and falls back to ErrUnknown so callers never receive a nil error
// description.
func NewError(code int) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("unknown error code %d requested", code),
			"errs.NewError called with a code missing from errorMap",
		)
		template = errorMap[ErrUnknown]
	}

	errCopy := template
	if errCopy.Status == 0 {
		errCopy.Status = http.StatusInternalServerError
	}

	return &errCopy
}

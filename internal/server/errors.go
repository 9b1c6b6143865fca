// internal/server/errors.go
package server

import (
	"fmt"
	"net/http"

	"github.com/xkilldash9x/pagehound/api/schemas"
)

// ErrorKind classifies an API failure for status-code mapping.
type ErrorKind int

const (
	KindSessionNotFound ErrorKind = iota
	KindBrowserError
	KindMCPError
	KindSerializationError
	KindInternalError
)

// AppError is the single error type handlers return; writeError maps it to
// the uniform {error, status} envelope.
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string { return e.Message }

// StatusCode maps the error kind to its HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindSessionNotFound:
		return http.StatusNotFound
	case KindBrowserError, KindSerializationError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Envelope renders the error as the wire-format body.
func (e *AppError) Envelope() schemas.ErrorResponse {
	return schemas.ErrorResponse{Error: e.Message, Status: e.StatusCode()}
}

func sessionNotFound(id string) *AppError {
	return &AppError{Kind: KindSessionNotFound, Message: fmt.Sprintf("Session %s not found", id)}
}

func browserError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindBrowserError, Message: fmt.Sprintf(format, args...)}
}

func serializationError(err error) *AppError {
	return &AppError{Kind: KindSerializationError, Message: fmt.Sprintf("Serialization error: %v", err)}
}

func internalError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInternalError, Message: fmt.Sprintf(format, args...)}
}

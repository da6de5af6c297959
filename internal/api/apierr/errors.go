package apierr

import (
	"errors"
	"net/http"

	"github.com/musyaffa-iman/EchoShift/internal/api/response"
	"github.com/musyaffa-iman/EchoShift/internal/model"
	"github.com/musyaffa-iman/EchoShift/internal/services/auth"
	"github.com/musyaffa-iman/EchoShift/internal/services/runs"
)

// httpError combines an HTTP status code with the message for the envelope
type httpError struct {
	status  int
	message string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.message
}

// opError tags an error with the operation that produced it, so unexpected
// failures read "Error <op>: <cause>"
type opError struct {
	op  string
	err error
}

func (e *opError) Error() string {
	return "Error " + e.op + ": " + e.err.Error()
}

func (e *opError) Unwrap() error {
	return e.err
}

// WithOperation names the operation err came from. Nil stays nil.
func WithOperation(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// WriteError writes an error envelope to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	response.Failure(w, he.status, he.message)
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &httpError{http.StatusBadRequest, ve.Message}
	}

	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return &httpError{http.StatusBadRequest, "Invalid request"}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, "Invalid username or password"}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, "Invalid or expired session"}
	case errors.Is(err, runs.ErrNotRunOwner):
		return &httpError{http.StatusForbidden, "You can only modify your own runs"}

	// Map model errors
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, "Username already exists"}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, "Player not found"}
	case errors.Is(err, model.ErrRunNotFound):
		return &httpError{http.StatusNotFound, "Run not found"}
	}

	var oe *opError
	if errors.As(err, &oe) {
		return &httpError{http.StatusInternalServerError, oe.Error()}
	}
	return &httpError{http.StatusInternalServerError, "Internal server error"}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, message}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) error {
	return &httpError{http.StatusNotFound, message}
}

// NewMethodNotAllowedError creates a method not allowed error
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, "Method not allowed"}
}

// NewTooManyRequestsError creates a rate limit error
func NewTooManyRequestsError() error {
	return &httpError{http.StatusTooManyRequests, "Too many requests"}
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(message string) error {
	return &httpError{http.StatusServiceUnavailable, message}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, "Internal server error"}
}

package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response of the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses and
// errors.Is(err, ErrUnavailable) match 502-504.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrUnavailable:
		return e.Status == http.StatusBadGateway ||
			e.Status == http.StatusServiceUnavailable ||
			e.Status == http.StatusGatewayTimeout
	}
	return false
}

// OperationError is what page-level code sees when an operation fails:
// Error() is a message fit for display, Unwrap exposes the cause.
type OperationError struct {
	Op      string
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Failure translates err into an OperationError for op. The message is the
// server's own message when it sent one, otherwise fallback.
func Failure(op, fallback string, err error) *OperationError {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr
	}

	msg := fallback
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	return &OperationError{Op: op, Message: msg, Err: err}
}

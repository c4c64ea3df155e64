package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors.
	ErrorValidation = errors.New("validation error")

	// Session errors.
	ErrCredentialAbsent = errors.New("no credential for protected request")
	ErrEmptyToken       = errors.New("empty token in response")
)

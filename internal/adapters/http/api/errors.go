package api

import "errors"

var (
	// ErrInvalidPayload indicates a malformed or incomplete request body.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrMethodNotAllowed indicates the HTTP method is not supported on the
	// route.
	ErrMethodNotAllowed = errors.New("method not allowed")
)

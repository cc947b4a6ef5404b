package models

import "errors"

// Sentinel errors returned by the service layer. Handlers translate these to
// HTTP status codes; anything else is treated as an internal error.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotSeller          = errors.New("seller account required")
	ErrForbidden          = errors.New("forbidden")
)

// Package service implements the lost & found workflows: accounts, item
// review and comments.
package service

import "errors"

// Errors returned by the services. The API layer maps each one to an HTTP
// status; their messages are safe to show to clients.
var (
	ErrValidation         = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleMismatch       = errors.New("role mismatch")
	ErrUnauthenticated    = errors.New("access denied")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrStorage            = errors.New("upload rejected")
	ErrInternal           = errors.New("server error")
)

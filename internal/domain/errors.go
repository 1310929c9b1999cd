package domain

import "errors"

var (
	// ErrBlankInput indicates an empty or whitespace-only query
	ErrBlankInput = errors.New("blank input")
	// ErrBusy indicates a query is already in flight
	ErrBusy = errors.New("a query is already in progress")
	// ErrInvalidRole indicates a stored message whose role is neither user nor assistant
	ErrInvalidRole = errors.New("invalid message role")
	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")
)

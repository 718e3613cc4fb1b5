package domain

import "errors"

// Domain errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNameRequired    = errors.New("name is required")
	ErrNoSession       = errors.New("no active session")
	ErrNoSelection     = errors.New("no category selected for edit")
	ErrNotConfirmed    = errors.New("deletion not confirmed")
	ErrCategoryMissing = errors.New("category not in current list")
)

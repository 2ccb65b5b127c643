package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound       = errors.New("domain: not found")
	ErrSessionExpired = errors.New("domain: session expired")
	ErrInvalidURL     = errors.New("domain: invalid url")
)

package domain

import "errors"

var (
	ErrNotFound          = errors.New("not_found")
	ErrInvalidEmployee   = errors.New("invalid_employee")
	ErrDuplicateUsername = errors.New("duplicate_github_username")
	// ErrNotConfigured is returned when the GitHub token, owner or repository is missing.
	ErrNotConfigured = errors.New("github_not_configured")
)

// ErrInvalidID is returned when an identifier cannot be parsed.
var ErrInvalidID = errors.New("invalid_id")

package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when an operation is not permitted for
	// the authenticated principal.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrNoCompany is returned when an operation requires the user to be
	// associated with a company and they are not.
	ErrNoCompany = errors.New("user not associated with any company")
)

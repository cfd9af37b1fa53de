package domain

import "errors"

// Domain errors shared across adapters.
var (
	// ErrNotAuthenticated indicates no stored credentials exist for the account.
	ErrNotAuthenticated = errors.New("not authenticated: run 'outlook-mcp login' first")

	// ErrNoRefreshToken indicates the stored credentials cannot be refreshed.
	// A new interactive login is required.
	ErrNoRefreshToken = errors.New("stored credentials have no refresh token: run 'outlook-mcp login' again")
)

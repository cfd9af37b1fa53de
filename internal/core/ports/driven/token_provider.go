// Package driven defines the outbound ports consumed by the core packages.
package driven

import "context"

// TokenProvider supplies a valid Microsoft Graph access token on demand.
// Implementations refresh expired tokens transparently; callers treat the
// returned token as valid for the duration of one request.
type TokenProvider interface {
	// GetToken returns a valid access token, refreshing it if necessary.
	GetToken(ctx context.Context) (string, error)

	// IsAuthenticated reports whether credentials are available at all.
	IsAuthenticated() bool
}

package driven

import "github.com/custodia-labs/outlook-mcp/internal/core/domain"

// CredentialsStore persists OAuth tokens between runs, keyed by account.
type CredentialsStore interface {
	// SaveToken stores or replaces the token for an account.
	SaveToken(account string, token *domain.OAuthToken) error

	// LoadToken returns the stored token, or domain.ErrNotAuthenticated
	// when the account has never logged in.
	LoadToken(account string) (*domain.OAuthToken, error)

	// DeleteToken removes stored credentials. Deleting an unknown account
	// is not an error.
	DeleteToken(account string) error
}

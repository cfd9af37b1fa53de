// Package auth signs in against the Microsoft identity platform and keeps
// the access token fresh, persisting credentials between runs.
package auth

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/custodia-labs/outlook-mcp/internal/core/domain"
	"github.com/custodia-labs/outlook-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/outlook-mcp/internal/logger"
)

var _ driven.TokenProvider = (*Provider)(nil)

// defaultScopes are requested at sign-in. Everything the tools need is
// requested upfront to avoid re-authorisation later.
var defaultScopes = []string{
	"offline_access",      // Required for refresh tokens
	"User.Read",           // Signed-in user profile
	"Mail.ReadWrite",      // Read, move and update messages
	"Mail.Send",           // Send mail as the user
	"Calendars.ReadWrite", // Read and manage calendar events
}

// Config identifies the Azure app registration to sign in against.
type Config struct {
	// ClientID is the application (client) id of the registration.
	ClientID string
	// TenantID scopes sign-in to one directory; empty means "common".
	TenantID string
	// ClientSecret is only set for confidential client registrations.
	ClientSecret string
	// RedirectPort is the loopback port registered as a redirect URI.
	RedirectPort int
	// Account labels the stored credentials.
	Account string
}

// Provider implements TokenProvider on top of stored credentials,
// refreshing the access token through the identity platform when it
// nears expiry.
type Provider struct {
	mu           sync.Mutex
	oauth        *oauth2.Config
	store        driven.CredentialsStore
	account      string
	redirectPort int
	current      *domain.OAuthToken
}

// NewProvider builds a token provider for one account.
func NewProvider(cfg Config, store driven.CredentialsStore) *Provider {
	return &Provider{
		oauth:        oauthConfig(cfg),
		store:        store,
		account:      cfg.Account,
		redirectPort: cfg.RedirectPort,
	}
}

func oauthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     microsoft.AzureADEndpoint(cfg.TenantID),
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", cfg.RedirectPort),
		Scopes:       defaultScopes,
	}
}

// GetToken returns a valid access token, refreshing and persisting it
// when the cached one has expired.
func (p *Provider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current.Valid() {
		return p.current.AccessToken, nil
	}

	if p.current == nil {
		stored, err := p.store.LoadToken(p.account)
		if err != nil {
			return "", err
		}
		p.current = stored
		if p.current.Valid() {
			return p.current.AccessToken, nil
		}
	}

	fresh, err := p.refresh(ctx, p.current)
	if err != nil {
		return "", err
	}
	p.current = fresh

	return p.current.AccessToken, nil
}

// IsAuthenticated reports whether stored credentials exist that can still
// produce an access token. It never touches the network.
func (p *Provider) IsAuthenticated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		stored, err := p.store.LoadToken(p.account)
		if err != nil {
			return false
		}
		p.current = stored
	}

	return p.current.Valid() || p.current.RefreshToken != ""
}

// Logout discards the cached and stored credentials for the account.
func (p *Provider) Logout() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = nil
	if err := p.store.DeleteToken(p.account); err != nil {
		return fmt.Errorf("delete stored credentials: %w", err)
	}
	return nil
}

// refresh exchanges the refresh token for new credentials and persists
// them.
func (p *Provider) refresh(ctx context.Context, stale *domain.OAuthToken) (*domain.OAuthToken, error) {
	if stale.RefreshToken == "" {
		return nil, domain.ErrNoRefreshToken
	}

	logger.Debug("auth: refreshing access token for account %q", p.account)

	src := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: stale.RefreshToken})
	refreshed, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	token := &domain.OAuthToken{
		AccessToken:  refreshed.AccessToken,
		RefreshToken: refreshed.RefreshToken,
		TokenType:    refreshed.TokenType,
		Expiry:       refreshed.Expiry,
	}
	// Microsoft may rotate the refresh token; keep the old one when the
	// response omits it.
	if token.RefreshToken == "" {
		token.RefreshToken = stale.RefreshToken
	}

	if err := p.store.SaveToken(p.account, token); err != nil {
		return nil, fmt.Errorf("persist refreshed token: %w", err)
	}
	return token, nil
}

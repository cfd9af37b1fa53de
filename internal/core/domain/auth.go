// Package domain holds the core types shared across the application.
package domain

import "time"

// expirySkew is subtracted from the token expiry so a token about to lapse
// is refreshed before Microsoft Graph starts rejecting it.
const expirySkew = 2 * time.Minute

// OAuthToken holds OAuth2 credentials for the Microsoft identity platform.
type OAuthToken struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}

// Valid reports whether the access token is usable without a refresh.
func (t *OAuthToken) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return time.Now().Before(t.Expiry.Add(-expirySkew))
}

package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
)

// User is the authenticated account's profile from Microsoft Graph.
type User struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Email returns the user's address, falling back to the principal name
// when the mail attribute is not set.
func (u *User) Email() string {
	if u.Mail != "" {
		return u.Mail
	}
	return u.UserPrincipalName
}

// GetMe fetches the authenticated user's profile through the pipeline.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	raw, err := c.MakeRequest(ctx, "/me", &RequestOptions{
		Select: []string{"id", "displayName", "mail", "userPrincipalName"},
	})
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user profile: %w", err)
	}
	return &user, nil
}

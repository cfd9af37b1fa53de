// Package sqlite persists OAuth credentials in a local SQLite database,
// one row per account.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/custodia-labs/outlook-mcp/internal/core/domain"
	"github.com/custodia-labs/outlook-mcp/internal/core/ports/driven"
)

var _ driven.CredentialsStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	account       TEXT PRIMARY KEY,
	access_token  TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	token_type    TEXT NOT NULL,
	expiry        INTEGER NOT NULL
);`

// Store is a CredentialsStore backed by an embedded SQLite database.
type Store struct {
	db *sql.DB
}

// New opens the database at path, creating the file and schema on first
// use.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open credentials database: %w", err)
	}
	// A single connection keeps concurrent refreshes from tripping over
	// SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create credentials schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveToken stores or replaces the credentials for an account.
func (s *Store) SaveToken(account string, token *domain.OAuthToken) error {
	var expiry int64
	if !token.Expiry.IsZero() {
		expiry = token.Expiry.Unix()
	}

	_, err := s.db.Exec(`
		INSERT INTO credentials (account, access_token, refresh_token, token_type, expiry)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET
			access_token  = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type    = excluded.token_type,
			expiry        = excluded.expiry`,
		account, token.AccessToken, token.RefreshToken, token.TokenType, expiry)
	if err != nil {
		return fmt.Errorf("save token for %q: %w", account, err)
	}
	return nil
}

// LoadToken returns the stored credentials, or domain.ErrNotAuthenticated
// when the account has never logged in.
func (s *Store) LoadToken(account string) (*domain.OAuthToken, error) {
	row := s.db.QueryRow(`
		SELECT access_token, refresh_token, token_type, expiry
		FROM credentials
		WHERE account = ?`, account)

	var (
		token  domain.OAuthToken
		expiry int64
	)
	err := row.Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, domain.ErrNotAuthenticated
	case err != nil:
		return nil, fmt.Errorf("load token for %q: %w", account, err)
	}

	if expiry > 0 {
		token.Expiry = time.Unix(expiry, 0).UTC()
	}
	return &token, nil
}

// DeleteToken removes stored credentials. Deleting an unknown account is
// not an error.
func (s *Store) DeleteToken(account string) error {
	if _, err := s.db.Exec(`DELETE FROM credentials WHERE account = ?`, account); err != nil {
		return fmt.Errorf("delete token for %q: %w", account, err)
	}
	return nil
}

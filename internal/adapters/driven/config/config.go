// Package config loads and persists the application configuration as a
// TOML file, with environment variable overrides for credentials that
// should not live on disk.
package config

import (
	"os"
	"time"

	"github.com/custodia-labs/outlook-mcp/internal/msgraph"
)

// Environment variables overriding the [auth] section.
const (
	EnvClientID     = "OUTLOOK_MCP_CLIENT_ID"
	EnvTenantID     = "OUTLOOK_MCP_TENANT_ID"
	EnvClientSecret = "OUTLOOK_MCP_CLIENT_SECRET" //nolint:gosec // G101: env var name, not a credential
)

// defaultRedirectPort is the loopback port the sign-in flow listens on.
// The app registration must allow http://localhost:<port> as a redirect URI.
const defaultRedirectPort = 8400

// Config is the full application configuration.
type Config struct {
	Auth    AuthConfig    `toml:"auth"`
	Graph   GraphConfig   `toml:"graph"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

// AuthConfig identifies the Azure app registration used to sign in.
type AuthConfig struct {
	// ClientID is the application (client) id of the app registration.
	ClientID string `toml:"client_id"`
	// TenantID scopes sign-in to one directory. Defaults to "common",
	// which accepts both work and personal accounts.
	TenantID string `toml:"tenant_id"`
	// ClientSecret is only needed for confidential client registrations.
	ClientSecret string `toml:"client_secret,omitempty"`
	// Account labels the stored credentials, allowing several mailboxes
	// side by side.
	Account string `toml:"account"`
	// RedirectPort is the loopback port for the browser sign-in flow.
	RedirectPort int `toml:"redirect_port"`
}

// GraphConfig carries the access layer tunables worth exposing.
type GraphConfig struct {
	// TimeoutSeconds bounds each HTTP attempt.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// MaxRetryAttempts bounds retries of throttled and failed requests.
	MaxRetryAttempts int `toml:"max_retry_attempts"`
	// RequestsPerSecond and Burst tune the sustained-rate limiter.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	// MaxConcurrent bounds in-flight requests against the mailbox.
	MaxConcurrent int `toml:"max_concurrent"`
}

// StorageConfig locates the credentials database.
type StorageConfig struct {
	// Path of the SQLite database. Empty means a credentials.db next to
	// the configuration file.
	Path string `toml:"path,omitempty"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	// Verbose enables debug logging on stderr.
	Verbose bool `toml:"verbose"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Auth: AuthConfig{
			TenantID:     "common",
			Account:      "default",
			RedirectPort: defaultRedirectPort,
		},
		Graph: GraphConfig{
			TimeoutSeconds:    30,
			MaxRetryAttempts:  4,
			RequestsPerSecond: 10.0,
			Burst:             15,
			MaxConcurrent:     4,
		},
	}
}

// applyEnv lets environment variables override the stored auth settings.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvClientID); v != "" {
		c.Auth.ClientID = v
	}
	if v := os.Getenv(EnvTenantID); v != "" {
		c.Auth.TenantID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		c.Auth.ClientSecret = v
	}
}

// normalise fills gaps left by hand-edited files.
func (c *Config) normalise() {
	if c.Auth.TenantID == "" {
		c.Auth.TenantID = "common"
	}
	if c.Auth.Account == "" {
		c.Auth.Account = "default"
	}
	if c.Auth.RedirectPort <= 0 {
		c.Auth.RedirectPort = defaultRedirectPort
	}
}

// ClientConfig converts the [graph] section into access layer settings,
// leaving unset values to the layer's own defaults.
func (c *Config) ClientConfig() msgraph.ClientConfig {
	cfg := msgraph.DefaultClientConfig()
	if c.Graph.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(c.Graph.TimeoutSeconds) * time.Second
	}
	if c.Graph.MaxRetryAttempts > 0 {
		cfg.Retry.MaxAttempts = c.Graph.MaxRetryAttempts
	}
	if c.Graph.RequestsPerSecond > 0 {
		cfg.Rate.RequestsPerSecond = c.Graph.RequestsPerSecond
	}
	if c.Graph.Burst > 0 {
		cfg.Rate.Burst = c.Graph.Burst
	}
	if c.Graph.MaxConcurrent > 0 {
		cfg.Admission.MaxConcurrent = c.Graph.MaxConcurrent
	}
	return cfg
}

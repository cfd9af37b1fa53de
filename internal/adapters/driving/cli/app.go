package cli

import (
	"fmt"

	"github.com/custodia-labs/outlook-mcp/internal/adapters/driven/auth"
	"github.com/custodia-labs/outlook-mcp/internal/adapters/driven/config"
	"github.com/custodia-labs/outlook-mcp/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/outlook-mcp/internal/logger"
	"github.com/custodia-labs/outlook-mcp/internal/msgraph"
)

// app holds the dependencies shared by the commands that talk to
// Microsoft Graph. Each command builds a fresh app and closes it on exit.
type app struct {
	cfg      *config.Config
	cfgStore *config.Store
	creds    *sqlite.Store
	provider *auth.Provider
}

// loadApp loads configuration and opens the credentials store, building
// the token provider the Graph client authenticates with.
func loadApp() (*app, error) {
	cfgStore, err := config.NewStore(configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := cfgStore.Load()
	if err != nil {
		return nil, err
	}

	// The --verbose flag wins; otherwise the config file decides.
	if !verbose && cfg.Logging.Verbose {
		logger.SetVerbose(true)
	}

	creds, err := sqlite.New(cfgStore.CredentialsPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("open credentials store: %w", err)
	}

	provider := auth.NewProvider(auth.Config{
		ClientID:     cfg.Auth.ClientID,
		TenantID:     cfg.Auth.TenantID,
		ClientSecret: cfg.Auth.ClientSecret,
		RedirectPort: cfg.Auth.RedirectPort,
		Account:      cfg.Auth.Account,
	}, creds)

	return &app{
		cfg:      cfg,
		cfgStore: cfgStore,
		creds:    creds,
		provider: provider,
	}, nil
}

// graphClient builds the Graph access layer from the loaded configuration.
func (a *app) graphClient() *msgraph.Client {
	return msgraph.NewClient(a.cfg.ClientConfig(), a.provider)
}

// Close releases the credentials store.
func (a *app) Close() error {
	return a.creds.Close()
}

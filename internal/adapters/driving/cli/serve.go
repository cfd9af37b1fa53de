package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/outlook-mcp/internal/adapters/driving/mcpserver"
	"github.com/custodia-labs/outlook-mcp/internal/logger"
	"github.com/custodia-labs/outlook-mcp/internal/msgraph/calendar"
	"github.com/custodia-labs/outlook-mcp/internal/msgraph/outlook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Serve mail and calendar tools to an MCP client over stdin/stdout.

This is the command an MCP client configuration should run. The protocol
owns stdout, so all diagnostics go to stderr.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.provider.IsAuthenticated() {
		logger.Warn("no stored credentials for account %q: tools will fail until 'outlook-mcp login' is run", a.cfg.Auth.Account)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := a.graphClient()

	server := mcpserver.New(mcpserver.Deps{
		Graph:    client,
		Mail:     outlook.NewService(client),
		Calendar: calendar.NewService(client),
		Version:  version,
	})

	// Pick up config edits while serving. Only logging verbosity can
	// change without a restart; access layer settings are fixed at client
	// construction.
	updates, err := a.cfgStore.Watch(ctx)
	if err != nil {
		logger.Warn("config watch unavailable: %v", err)
	} else {
		go func() {
			for cfg := range updates {
				logger.SetVerbose(verbose || cfg.Logging.Verbose)
				logger.Debug("config reloaded from %s", a.cfgStore.Path())
			}
		}()
	}

	logger.Info("serving MCP over stdio (account %q)", a.cfg.Auth.Account)

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

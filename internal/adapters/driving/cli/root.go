// Package cli wires the cobra command tree: serve runs the MCP server
// over stdio, the remaining commands manage sign-in and configuration.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/outlook-mcp/internal/logger"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Verbose enables debug logging.
	verbose bool

	// configPath overrides the default configuration file location.
	configPath string
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "outlook-mcp",
	Short: "Outlook mail and calendar tools for AI agents",
	Long: `outlook-mcp exposes Microsoft Outlook mail and calendar operations to
AI agents over the Model Context Protocol.

Run 'outlook-mcp configure' once to point it at an Azure app registration,
'outlook-mcp login' to sign in, then 'outlook-mcp serve' from an MCP client.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("outlook-mcp %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default: per-user config directory)")

	// Use PersistentPreRunE to set verbose mode before any command executes
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}

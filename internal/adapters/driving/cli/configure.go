package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/outlook-mcp/internal/adapters/driven/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write the configuration file",
	Long: `Point outlook-mcp at an Azure app registration.

The registration needs delegated Microsoft Graph permissions (User.Read,
Mail.ReadWrite, Mail.Send, Calendars.ReadWrite) and a redirect URI of
http://localhost:8400/callback.

Values can be passed as flags; anything missing is prompted for. The
client secret is only needed for confidential clients and is read without
echo.`,
	RunE: runConfigure,
}

// Flags for configure.
var (
	configureClientID string
	configureTenantID string
	configureAccount  string
	configureSecret   bool
)

func init() {
	configureCmd.Flags().StringVar(&configureClientID, "client-id", "", "application (client) id of the app registration")
	configureCmd.Flags().StringVar(&configureTenantID, "tenant-id", "", "directory (tenant) id, or 'common' for any account")
	configureCmd.Flags().StringVar(&configureAccount, "account", "", "label for the stored credentials")
	configureCmd.Flags().BoolVar(&configureSecret, "client-secret", false, "prompt for a client secret (confidential clients only)")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	store, err := config.NewStore(configPath)
	if err != nil {
		return err
	}

	cfg, err := store.Load()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cfg.Auth.ClientID, err = resolveValue(cmd, reader, "Client ID", configureClientID, cfg.Auth.ClientID)
	if err != nil {
		return err
	}
	if cfg.Auth.ClientID == "" {
		return errors.New("a client id is required")
	}

	cfg.Auth.TenantID, err = resolveValue(cmd, reader, "Tenant ID", configureTenantID, cfg.Auth.TenantID)
	if err != nil {
		return err
	}

	cfg.Auth.Account, err = resolveValue(cmd, reader, "Account label", configureAccount, cfg.Auth.Account)
	if err != nil {
		return err
	}

	if configureSecret {
		secret, err := readSecret(cmd)
		if err != nil {
			return err
		}
		cfg.Auth.ClientSecret = secret
	}

	if err := store.Save(cfg); err != nil {
		return err
	}

	cmd.Printf("Configuration written to %s\n", store.Path())
	return nil
}

// resolveValue picks the flag value when given, otherwise prompts with
// the current value as the default.
func resolveValue(cmd *cobra.Command, reader *bufio.Reader, label, flagValue, current string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	if current != "" {
		cmd.Printf("%s [%s]: ", label, current)
	} else {
		cmd.Printf("%s: ", label)
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return current, nil
	}
	return line, nil
}

// readSecret reads the client secret without echoing it. When stdin is
// not a terminal (tests, pipes) it falls back to a plain line read.
func readSecret(cmd *cobra.Command) (string, error) {
	cmd.Print("Client secret: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("read client secret: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read client secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/outlook-mcp/internal/core/domain"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to a Microsoft account",
	Long: `Sign in through the browser using the configured app registration.

A sign-in URL is printed; completing it in the browser redirects back to a
local callback and the resulting tokens are stored for future runs.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored credentials",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Fetch the signed-in user's profile from Microsoft Graph.

This exercises the full request pipeline, so it doubles as a connectivity
check.`,
	RunE: runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = a.provider.Login(cmd.Context(), func(authURL string) {
		cmd.Println("Open the following URL in your browser to sign in:")
		cmd.Println()
		cmd.Printf("  %s\n", authURL)
		cmd.Println()
		cmd.Println("Waiting for sign-in to complete...")
	})
	if err != nil {
		return err
	}

	cmd.Printf("Signed in. Credentials stored for account %q.\n", a.cfg.Auth.Account)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.provider.Logout(); err != nil {
		return err
	}

	cmd.Printf("Removed credentials for account %q.\n", a.cfg.Auth.Account)
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.graphClient().GetMe(cmd.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			cmd.Println("Not signed in. Run 'outlook-mcp login' first.")
			return nil
		}
		return err
	}

	cmd.Printf("%s (%s)\n", user.DisplayName, user.Email())
	return nil
}

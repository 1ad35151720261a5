package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/qobuz-grabber/internal/app"
)

var (
	//nolint:gochecknoglobals // Cobra commands are declared globally.
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Authentication management commands",
		Long: `Manage authentication for Qobuz.

Use 'auth login' to log in via browser and automatically extract your user auth token.`,
	}

	//nolint:gochecknoglobals // Cobra commands are declared globally.
	authLoginCmd = &cobra.Command{
		Use:   "login",
		Short: "Login to Qobuz and extract the user auth token",
		Long: `Opens a browser window for you to log in to the Qobuz web player.

The login process:
1. Browser opens at https://play.qobuz.com/login
2. Log in with your e-mail and password, or a sign-in provider
3. Wait for the player home page to open

The token the player stores after login is saved to the configuration
file as user_auth_token. You can then download music:
qobuz-grabber https://play.qobuz.com/album/0060254735180`,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteAuthLoginCommand(cmd.Context(), appConfig)
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	authCmd.AddCommand(authLoginCmd)
	rootCmd.AddCommand(authCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/qobuz-grabber/internal/app"
)

// defaultHistoryLimit is the number of runs printed by default.
const defaultHistoryLimit = 20

//nolint:gochecknoglobals // Cobra commands are declared globally.
var historyCmd = &cobra.Command{
	Use:              "history",
	Short:            "Show the latest runs recorded in the history database",
	Args:             cobra.NoArgs,
	PersistentPreRun: initConfig,
	Run: func(cmd *cobra.Command, _ []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		app.ExecuteHistoryCommand(cmd.Context(), appConfig, limit)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	historyCmd.Flags().IntP("limit", "n", defaultHistoryLimit, "number of runs to show.")
	rootCmd.AddCommand(historyCmd)
}

// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "team-metrics",
	Short: "Tracks GitHub contributions of a team over time.",
	Long: `team-metrics records periodic snapshots of each team member's cumulative
contributions (commits, PRs opened, PRs merged, reviews) to a single GitHub repository,
and serves them as a JSON API with team summaries and time series.

GitHub access is configured with GITHUB_TOKEN, REPO_OWNER and REPO_NAME.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
}

package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verifies GitHub credentials and repository access",
	Long:  `Runs a GraphQL query as the configured token and reports the viewer and the tracked repository as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp(cmd)
		defer a.Close()

		if !a.cfg.GitHub.Configured() {
			a.fail("GitHub is not configured", errors.New("GITHUB_TOKEN, REPO_OWNER and REPO_NAME must be set"))
		}
		report, err := a.github.CheckAccess(context.Background(), a.cfg.GitHub.Owner, a.cfg.GitHub.Repo)
		if err != nil {
			a.fail("Access check failed", err)
		}
		if err := printJSON(report); err != nil {
			a.fail("Failed to print access report", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Records a metrics snapshot for every active employee",
	Long: `Fetches each active employee's cumulative contributions from GitHub and stores one snapshot per employee.
Nothing is recorded when GITHUB_TOKEN, REPO_OWNER or REPO_NAME is unset.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp(cmd)
		defer a.Close()

		created, err := a.snapshots.UpdateAll(context.Background())
		if err != nil {
			a.fail("Failed to update metrics", err)
		}
		fmt.Printf("Updated metrics for %d employee(s).\n", len(created))
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

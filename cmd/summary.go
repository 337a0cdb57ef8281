package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/team-metrics/internal/domain"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Outputs the team dashboard as JSON",
	Long:  `Outputs the team summary, the team time series and the roster in JSON format. With --employee, outputs that employee's dashboard instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := mustApp(cmd)
		defer a.Close()

		employeeID, _ := cmd.Flags().GetString("employee")
		var result interface{}
		if employeeID != "" {
			id, err := domain.ParseID(employeeID)
			if err != nil {
				a.fail("Invalid --employee", err)
			}
			detail, err := a.dashboard.EmployeeDetail(ctx, id)
			if err != nil {
				a.fail("Failed to build employee dashboard", err)
			}
			result = detail
		} else {
			team, err := a.dashboard.Team(ctx)
			if err != nil {
				a.fail("Failed to build team dashboard", err)
			}
			result = team
		}

		if err := printJSON(result); err != nil {
			a.fail("Failed to print dashboard", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringP("employee", "e", "", "Employee id to show instead of the whole team")
}

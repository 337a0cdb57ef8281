package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/team-metrics/internal/domain"
	"github.com/naka-gawa/team-metrics/internal/usecase"
)

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Manages the tracked team members",
}

var employeeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Registers an employee",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp(cmd)
		defer a.Close()

		name, _ := cmd.Flags().GetString("name")
		username, _ := cmd.Flags().GetString("username")
		inactive, _ := cmd.Flags().GetBool("inactive")

		employee, err := a.employees.Register(context.Background(), usecase.EmployeeInput{
			Name:           name,
			GitHubUsername: username,
			Active:         !inactive,
		})
		if err != nil {
			a.fail("Failed to add employee", err)
		}
		if err := printJSON(employee); err != nil {
			a.fail("Failed to print employee", err)
		}
	},
}

var employeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists employees as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp(cmd)
		defer a.Close()

		var filter domain.EmployeeFilter
		if raw, _ := cmd.Flags().GetString("active"); raw != "" {
			active, err := strconv.ParseBool(raw)
			if err != nil {
				a.fail("Invalid --active", err)
			}
			filter.Active = &active
		}

		employees, err := a.employees.List(context.Background(), filter)
		if err != nil {
			a.fail("Failed to list employees", err)
		}
		if err := printJSON(employees); err != nil {
			a.fail("Failed to print employees", err)
		}
	},
}

var employeeEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edits an employee; flags that are not given keep their value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := mustApp(cmd)
		defer a.Close()

		id, err := domain.ParseID(args[0])
		if err != nil {
			a.fail("Invalid employee id", err)
		}
		current, err := a.employees.Get(ctx, id)
		if err != nil {
			a.fail("Failed to load employee", err)
		}

		in := usecase.EmployeeInput{
			Name:           current.Name,
			GitHubUsername: current.GitHubUsername,
			Active:         current.Active,
		}
		if cmd.Flags().Changed("name") {
			in.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("username") {
			in.GitHubUsername, _ = cmd.Flags().GetString("username")
		}
		if cmd.Flags().Changed("active") {
			in.Active, _ = cmd.Flags().GetBool("active")
		}

		employee, err := a.employees.Edit(ctx, id, in)
		if err != nil {
			a.fail("Failed to edit employee", err)
		}
		if err := printJSON(employee); err != nil {
			a.fail("Failed to print employee", err)
		}
	},
}

var employeeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Deletes an employee and all of their snapshots",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp(cmd)
		defer a.Close()

		id, err := domain.ParseID(args[0])
		if err != nil {
			a.fail("Invalid employee id", err)
		}
		if err := a.employees.Delete(context.Background(), id); err != nil {
			a.fail("Failed to delete employee", err)
		}
		fmt.Printf("Deleted employee %s.\n", id)
	},
}

func init() {
	rootCmd.AddCommand(employeeCmd)
	employeeCmd.AddCommand(employeeAddCmd, employeeListCmd, employeeEditCmd, employeeDeleteCmd)

	employeeAddCmd.Flags().StringP("name", "n", "", "Display name (required)")
	employeeAddCmd.Flags().StringP("username", "u", "", "GitHub username (required)")
	employeeAddCmd.Flags().Bool("inactive", false, "Register without scheduling metric updates")
	employeeAddCmd.MarkFlagRequired("name")
	employeeAddCmd.MarkFlagRequired("username")

	employeeListCmd.Flags().String("active", "", "Filter by active flag (true|false)")

	employeeEditCmd.Flags().StringP("name", "n", "", "New display name")
	employeeEditCmd.Flags().StringP("username", "u", "", "New GitHub username")
	employeeEditCmd.Flags().Bool("active", true, "Whether the employee receives metric updates")
}

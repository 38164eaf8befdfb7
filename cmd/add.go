package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var (
		name string
		deps string
	)

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a milestone to a project",
		Long: `Add a new milestone with an optional initial set of dependencies. The
dependencies are validated the same way as for set-deps.

Examples:
  milestones add 5 -p 7 --name "Grid connection" --deps 3,4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireProject(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			initial, err := parseIDList(deps)
			if err != nil {
				return err
			}
			env, err := setup(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.service.AddMilestone(cmd.Context(), projectID, id, name, initial); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added milestone %d to project %d\n", id, projectID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Milestone name")
	cmd.Flags().StringVar(&deps, "deps", "", "Comma separated milestone ids")
	return cmd
}

func init() {
	rootCmd.AddCommand(newAddCmd())
}

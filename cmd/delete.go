package cmd

import (
	"fmt"

	"milestones/internal/dependency"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a milestone from a project",
		Long: `Delete a milestone. A milestone that other milestones still depend on is
not deleted unless --force is given; with --force it is first removed from
the dependencies of every milestone that references it.

Examples:
  milestones delete 5 -p 7
  milestones delete 3 -p 7 --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireProject(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			env, err := setup(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			detached, err := env.service.Delete(cmd.Context(), projectID, id, force)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deleted milestone %d from project %d\n", id, projectID)
			if len(detached) > 0 {
				fmt.Fprintf(out, "Removed it from the dependencies of milestones %s\n", dependency.JoinIDs(detached))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Detach dependents instead of refusing the delete")
	return cmd
}

func init() {
	rootCmd.AddCommand(newDeleteCmd())
}

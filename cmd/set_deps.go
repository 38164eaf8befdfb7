package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSetDepsCmd() *cobra.Command {
	var deps string

	cmd := &cobra.Command{
		Use:   "set-deps <id>",
		Short: "Replace the dependencies of a milestone",
		Long: `Replace the full dependency set of an existing milestone. The change is
refused if the milestone would depend on itself, on a milestone that does not
exist in the project, or if it would close a dependency cycle.

Pass an empty list to remove all dependencies.

Exits with code 2 if the change is rejected.

Examples:
  milestones set-deps 4 -p 7 --deps 1,2
  milestones set-deps 4 -p 7 --deps ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireProject(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			proposed, err := parseIDList(deps)
			if err != nil {
				return err
			}
			env, err := setup(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.service.SetDependencies(cmd.Context(), projectID, id, proposed); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Milestone %d now depends on [%s]\n", id, joinSorted(proposed))
			return nil
		},
	}

	cmd.Flags().StringVar(&deps, "deps", "", "Comma separated milestone ids")
	_ = cmd.MarkFlagRequired("deps")
	return cmd
}

func init() {
	rootCmd.AddCommand(newSetDepsCmd())
}

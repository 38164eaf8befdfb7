package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var deps string

	cmd := &cobra.Command{
		Use:   "check <id>",
		Short: "Validate a dependency change without storing it",
		Long: `Check whether a milestone may depend on the given milestones. The
change is checked exactly as set-deps would check it, but nothing is written.

Exits with code 2 if the change would be rejected.

Examples:
  milestones check 4 -p 7 --deps 1,2
  milestones check 1 -p 7 --deps 3`,
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

			if err := env.service.Check(cmd.Context(), projectID, id, proposed); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dependencies [%s] are valid for milestone %d\n", joinSorted(proposed), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&deps, "deps", "", "Comma separated milestone ids")
	_ = cmd.MarkFlagRequired("deps")
	return cmd
}

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newDependentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dependents <id>",
		Short: "List the milestones that directly depend on a milestone",
		Long: `List the milestones whose dependencies include the given milestone.
Only direct dependents are listed, not milestones that depend on it through
other milestones.

Examples:
  milestones dependents 3 -p 7`,
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

			dependents, err := env.service.Dependents(cmd.Context(), projectID, id)
			if err != nil {
				return err
			}
			records, err := env.service.Milestones(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			info := indexRecords(records)

			v := view{
				header: table.Row{"ID", "NAME", "DEPENDS ON"},
				empty:  fmt.Sprintf("No milestones depend on milestone %d", id),
			}
			data := make([]milestoneInfo, 0, len(dependents))
			for _, d := range dependents {
				m := info[d]
				data = append(data, m)
				v.rows = append(v.rows, table.Row{d, m.Name, formatIDs(m.Dependencies)})
			}
			v.data = data
			return render(cmd.OutOrStdout(), v)
		},
	}
}

func init() {
	rootCmd.AddCommand(newDependentsCmd())
}

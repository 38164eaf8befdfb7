package cmd

import (
	"context"
	"fmt"
	"io"

	"milestones/internal/milestone"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type orderEntry struct {
	Position      int `json:"position" yaml:"position"`
	milestoneInfo `yaml:",inline"`
}

type levelEntry struct {
	Level      int             `json:"level" yaml:"level"`
	Milestones []milestoneInfo `json:"milestones" yaml:"milestones"`
}

func newOrderCmd() *cobra.Command {
	var levels bool

	cmd := &cobra.Command{
		Use:   "order",
		Short: "List a project's milestones in execution order",
		Long: `List a project's milestones so that every milestone comes after all of
its dependencies. Milestones without an ordering constraint between them are
listed by ascending id.

With --levels, milestones are grouped into waves: each wave only depends on
earlier waves, so the milestones inside one wave can proceed in parallel.

Exits with code 3 if the stored graph already contains a cycle.

Examples:
  milestones order -p 7
  milestones order -p 7 --levels -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireProject(cmd); err != nil {
				return err
			}
			env, err := setup(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			return renderOrder(cmd.Context(), cmd.OutOrStdout(), env.service, levels)
		},
	}

	cmd.Flags().BoolVar(&levels, "levels", false, "Group milestones into waves of independent milestones")
	return cmd
}

// renderOrder prints the project's execution order, or its waves when levels
// is set.
func renderOrder(ctx context.Context, w io.Writer, svc *milestone.Service, levels bool) error {
	records, err := svc.Milestones(ctx, projectID)
	if err != nil {
		return err
	}
	info := indexRecords(records)
	empty := fmt.Sprintf("No milestones in project %d", projectID)

	if levels {
		waves, err := svc.Levels(ctx, projectID)
		if err != nil {
			return err
		}
		v := view{header: table.Row{"LEVEL", "ID", "NAME", "DEPENDS ON"}, empty: empty}
		data := make([]levelEntry, 0, len(waves))
		for i, wave := range waves {
			entry := levelEntry{Level: i + 1}
			for _, id := range wave {
				m := info[id]
				entry.Milestones = append(entry.Milestones, m)
				v.rows = append(v.rows, table.Row{i + 1, id, m.Name, formatIDs(m.Dependencies)})
			}
			data = append(data, entry)
		}
		v.data = data
		return render(w, v)
	}

	order, err := svc.Order(ctx, projectID)
	if err != nil {
		return err
	}
	v := view{header: table.Row{"#", "ID", "NAME", "DEPENDS ON"}, empty: empty}
	data := make([]orderEntry, 0, len(order))
	for i, id := range order {
		m := info[id]
		data = append(data, orderEntry{Position: i + 1, milestoneInfo: m})
		v.rows = append(v.rows, table.Row{i + 1, id, m.Name, formatIDs(m.Dependencies)})
	}
	v.data = data
	return render(w, v)
}

func init() {
	rootCmd.AddCommand(newOrderCmd())
}

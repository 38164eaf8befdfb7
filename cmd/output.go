package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"milestones/internal/dependency"
	"milestones/internal/milestone"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// view is something a command can print: a table for humans and a plain
// value for json and yaml output.
type view struct {
	header table.Row
	rows   []table.Row
	data   interface{}
	// empty is printed instead of a table without rows.
	empty string
}

func render(w io.Writer, v view) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v.data)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v.data); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		if len(v.rows) == 0 && v.empty != "" {
			_, err := fmt.Fprintln(w, v.empty)
			return err
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(v.header)
		t.AppendRows(v.rows)
		t.Render()
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use table, json or yaml)", outputFormat)
	}
}

// milestoneInfo is the structured form of one milestone in command output.
type milestoneInfo struct {
	ID           dependency.MilestoneID   `json:"id" yaml:"id"`
	Name         string                   `json:"name,omitempty" yaml:"name,omitempty"`
	Dependencies []dependency.MilestoneID `json:"dependencies" yaml:"dependencies"`
}

// indexRecords maps milestone ids to their parsed rows.
func indexRecords(records []milestone.Record) map[dependency.MilestoneID]milestoneInfo {
	out := make(map[dependency.MilestoneID]milestoneInfo, len(records))
	for _, r := range records {
		out[r.ID] = milestoneInfo{
			ID:           r.ID,
			Name:         r.Name,
			Dependencies: dependency.Parse(r.Dependencies).Sorted(),
		}
	}
	return out
}

func formatIDs(ids []dependency.MilestoneID) string {
	if len(ids) == 0 {
		return "-"
	}
	return dependency.JoinIDs(ids)
}

// joinSorted prints ids as a deduplicated ascending list.
func joinSorted(ids []dependency.MilestoneID) string {
	return dependency.JoinIDs(dependency.NewSet(ids...).Sorted())
}

package milestone

import (
	"context"
	"sort"

	"milestones/internal/dependency"
	"milestones/pkg/logging"
)

// Record is a persisted milestone row. Dependencies holds the raw serialized
// dependency field exactly as stored, which may be corrupt.
type Record struct {
	ID           dependency.MilestoneID `yaml:"id" json:"id"`
	Name         string                 `yaml:"name,omitempty" json:"name,omitempty"`
	Dependencies string                 `yaml:"dependencies,omitempty" json:"dependencies"`
}

// Store persists milestone rows per project.
type Store interface {
	// Load returns a read-only snapshot of a project's milestones ordered by
	// id. Unknown projects have no milestones.
	Load(ctx context.Context, projectID int64) ([]Record, error)

	// Update runs fn with exclusive access to one project's milestones. No
	// other Update for the same project can interleave with fn. Writes made
	// through the Tx become visible atomically when fn returns nil and are
	// discarded when it returns an error.
	Update(ctx context.Context, projectID int64, fn func(ctx context.Context, tx Tx) error) error

	Close() error
}

// Tx is the view of a project handed to Store.Update.
type Tx interface {
	// Milestones returns the project's rows as seen inside the transaction,
	// ordered by id.
	Milestones(ctx context.Context) ([]Record, error)
	// Put inserts or replaces a row.
	Put(ctx context.Context, r Record) error
	// SetDependencies replaces the raw dependency field of an existing row.
	SetDependencies(ctx context.Context, id dependency.MilestoneID, raw string) error
	// Delete removes a row.
	Delete(ctx context.Context, id dependency.MilestoneID) error
}

// snapshot converts rows into the engine's view. Malformed dependency fields
// are read as empty sets and reported once per row.
func snapshot(projectID int64, records []Record) []dependency.Milestone {
	out := make([]dependency.Milestone, 0, len(records))
	for _, r := range records {
		deps, err := dependency.ParseStrict(r.Dependencies)
		if err != nil {
			logging.Warn("Service", "Project %d milestone %d: %v", projectID, r.ID, err)
		}
		out = append(out, dependency.Milestone{ID: r.ID, Dependencies: deps})
	}
	return out
}

func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
}

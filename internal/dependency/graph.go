package dependency

import "sort"

// MilestoneID is the identifier of a milestone. IDs are only unique within a
// single project.
type MilestoneID int64

// Set is an unordered set of milestone IDs. Order and duplicates in the
// persisted encoding carry no meaning, so the engine always works on sets.
type Set map[MilestoneID]struct{}

// NewSet returns a set holding the given ids.
func NewSet(ids ...MilestoneID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set. A nil set contains nothing.
func (s Set) Contains(id MilestoneID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the ids in ascending order. The result is never nil.
func (s Set) Sorted() []MilestoneID {
	out := make([]MilestoneID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Milestone is the engine's view of a milestone: its id and the set of
// milestones that must complete before it.
type Milestone struct {
	ID           MilestoneID
	Dependencies Set
}

// FromRaw builds a Milestone from the persisted, serialized dependency field.
// Malformed encodings become an empty dependency set.
func FromRaw(id MilestoneID, raw any) Milestone {
	return Milestone{ID: id, Dependencies: Parse(raw)}
}

// Graph indexes one project's milestone snapshot. An edge A -> B means A
// depends on B.
//
// A Graph is not modified after New returns, so concurrent readers need no
// locking. Every query allocates its own working state.
type Graph struct {
	nodes map[MilestoneID]Set
	ids   []MilestoneID
}

// New builds a graph from a snapshot. If the same id appears more than once
// the last occurrence wins.
func New(milestones ...Milestone) *Graph {
	g := &Graph{nodes: make(map[MilestoneID]Set, len(milestones))}
	for _, m := range milestones {
		// Copy to avoid external mutations
		deps := make(Set, len(m.Dependencies))
		for id := range m.Dependencies {
			deps[id] = struct{}{}
		}
		g.nodes[m.ID] = deps
	}
	g.ids = make([]MilestoneID, 0, len(g.nodes))
	for id := range g.nodes {
		g.ids = append(g.ids, id)
	}
	sort.Slice(g.ids, func(i, j int) bool { return g.ids[i] < g.ids[j] })
	return g
}

// Len returns the number of milestones in the graph.
func (g *Graph) Len() int {
	return len(g.ids)
}

// Has reports whether id belongs to the snapshot.
func (g *Graph) Has(id MilestoneID) bool {
	_, ok := g.nodes[id]
	return ok
}

// IDs returns the set of all milestone ids in the snapshot.
func (g *Graph) IDs() Set {
	return NewSet(g.ids...)
}

// Dependencies returns the persisted dependency ids of the given milestone in
// ascending order, or nil if the milestone is unknown.
func (g *Graph) Dependencies(id MilestoneID) []MilestoneID {
	deps, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return deps.Sorted()
}

// Dependents returns the ids of all milestones whose persisted dependency set
// directly contains target. Milestones that only reach target transitively
// are not included.
func (g *Graph) Dependents(target MilestoneID) []MilestoneID {
	res := []MilestoneID{}
	for _, id := range g.ids {
		if g.nodes[id].Contains(target) {
			res = append(res, id)
		}
	}
	return res
}

// Dependents is the snapshot form of Graph.Dependents.
func Dependents(target MilestoneID, milestones []Milestone) []MilestoneID {
	return New(milestones...).Dependents(target)
}

package dependency

import (
	"container/heap"
	"sort"
)

// idHeap is a min-heap of milestone ids. It gives Kahn's algorithm a
// deterministic tie-break among milestones that become ready together.
type idHeap []MilestoneID

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(MilestoneID)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopologicalOrder returns the milestones of the snapshot ordered so that
// every milestone comes after all of its dependencies.
func TopologicalOrder(milestones []Milestone) []MilestoneID {
	return New(milestones...).TopologicalSort()
}

// inDegrees counts, for every milestone, the dependencies that are part of
// the snapshot, and builds the reverse edges used to release dependents.
// References to unknown ids are ignored here; ValidateExistence reports them.
func (g *Graph) inDegrees() (map[MilestoneID]int, map[MilestoneID][]MilestoneID) {
	inDegree := make(map[MilestoneID]int, len(g.ids))
	dependents := make(map[MilestoneID][]MilestoneID, len(g.ids))
	for _, id := range g.ids {
		inDegree[id] = 0
		for _, dep := range g.Dependencies(id) {
			if !g.Has(dep) {
				continue
			}
			inDegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}
	return inDegree, dependents
}

// TopologicalSort orders the graph with Kahn's algorithm, breaking ties by
// ascending id.
//
// If the persisted graph contains a cycle, fewer milestones can be placed than
// the graph holds. A partial order would be misleading, so an empty slice is
// returned instead; callers should treat that as data corruption whenever the
// graph itself is non-empty.
func (g *Graph) TopologicalSort() []MilestoneID {
	order, err := g.Order()
	if err != nil {
		return []MilestoneID{}
	}
	return order
}

// Order is TopologicalSort with the corruption signal returned as a
// *CorruptedGraphError instead of an empty result.
func (g *Graph) Order() ([]MilestoneID, error) {
	inDegree, dependents := g.inDegrees()

	ready := &idHeap{}
	for _, id := range g.ids {
		if inDegree[id] == 0 {
			*ready = append(*ready, id)
		}
	}
	heap.Init(ready)

	order := make([]MilestoneID, 0, len(g.ids))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(MilestoneID)
		order = append(order, id)
		for _, d := range dependents[id] {
			inDegree[d]--
			if inDegree[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}

	if len(order) < len(g.ids) {
		return nil, &CorruptedGraphError{Placed: len(order), Total: len(g.ids)}
	}
	return order, nil
}

// Levels groups the graph into waves: the first wave holds milestones with no
// dependencies, and each following wave holds milestones whose dependencies
// all sit in earlier waves. Milestones in one wave are independent of each
// other. Each wave is sorted by id. Levels returns nil if the graph contains
// a cycle.
func (g *Graph) Levels() [][]MilestoneID {
	inDegree, dependents := g.inDegrees()

	var current []MilestoneID
	for _, id := range g.ids {
		if inDegree[id] == 0 {
			current = append(current, id)
		}
	}

	levels := [][]MilestoneID{}
	placed := 0
	for len(current) > 0 {
		levels = append(levels, current)
		placed += len(current)

		var next []MilestoneID
		for _, id := range current {
			for _, d := range dependents[id] {
				inDegree[d]--
				if inDegree[d] == 0 {
					next = append(next, d)
				}
			}
		}
		sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })
		current = next
	}

	if placed < len(g.ids) {
		return nil
	}
	return levels
}

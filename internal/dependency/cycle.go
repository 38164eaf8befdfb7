package dependency

// frame is one entry of the explicit DFS stack: the node being explored and
// the position of the next child to visit.
type frame struct {
	id   MilestoneID
	deps []MilestoneID
	next int
}

// DetectCycle reports whether replacing the dependency set of edited with
// proposed would create a cycle anywhere in the project's graph.
//
// Precondition: the persisted graph is already acyclic. Nodes that were fully
// explored without finding a cycle are not explored again, so a cycle that
// exists in the persisted data and does not pass through edited may go
// unreported. Use TopologicalOrder to detect that kind of corruption.
func DetectCycle(milestones []Milestone, edited MilestoneID, proposed Set) bool {
	return New(milestones...).WouldCycle(edited, proposed)
}

// WouldCycle is the Graph form of DetectCycle.
func (g *Graph) WouldCycle(edited MilestoneID, proposed Set) bool {
	_, found := g.CyclePath(edited, proposed)
	return found
}

// CyclePath runs the same search as WouldCycle and, when a cycle is found,
// also returns it as a path that starts and ends at the same milestone, for
// example [1 3 2 1].
//
// The search is rooted at edited since any new cycle has to use one of its
// edges. It uses an explicit stack so long dependency chains cannot exhaust
// the goroutine stack.
func (g *Graph) CyclePath(edited MilestoneID, proposed Set) ([]MilestoneID, bool) {
	visited := make(map[MilestoneID]bool)
	onStack := make(map[MilestoneID]bool)

	children := func(id MilestoneID) []MilestoneID {
		if id == edited {
			return proposed.Sorted()
		}
		return g.Dependencies(id)
	}

	stack := []frame{{id: edited, deps: children(edited)}}
	visited[edited] = true
	onStack[edited] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.deps) {
			delete(onStack, top.id)
			stack = stack[:len(stack)-1]
			continue
		}

		child := top.deps[top.next]
		top.next++

		if onStack[child] {
			return cycleFrom(stack, child), true
		}
		if visited[child] {
			continue
		}

		visited[child] = true
		onStack[child] = true
		stack = append(stack, frame{id: child, deps: children(child)})
	}
	return nil, false
}

// cycleFrom extracts the cycle closed by an edge to child from the active
// path.
func cycleFrom(stack []frame, child MilestoneID) []MilestoneID {
	start := 0
	for i := range stack {
		if stack[i].id == child {
			start = i
			break
		}
	}
	path := make([]MilestoneID, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.id)
	}
	return append(path, child)
}

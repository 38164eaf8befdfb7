package dependency

// ExistenceResult is the outcome of ValidateExistence.
type ExistenceResult struct {
	Valid      bool
	InvalidIDs []MilestoneID
}

// ValidateSelfDependency returns false if id appears in its own candidate
// dependency set.
func ValidateSelfDependency(id MilestoneID, deps Set) bool {
	return !deps.Contains(id)
}

// ValidateExistence checks that every id in deps belongs to the project.
// InvalidIDs lists the offending ids in ascending order and is empty, not
// nil, when the set is valid.
func ValidateExistence(deps Set, valid Set) ExistenceResult {
	invalid := []MilestoneID{}
	for _, id := range deps.Sorted() {
		if !valid.Contains(id) {
			invalid = append(invalid, id)
		}
	}
	return ExistenceResult{Valid: len(invalid) == 0, InvalidIDs: invalid}
}

// ValidateEdit runs every structural check that must pass before a proposed
// dependency set for edited is persisted: self-dependency, existence against
// the snapshot, and cycle detection, in that order. It returns the error of
// the first rule that fails, or nil.
//
// The snapshot must be the one the caller will write against. Callers are
// expected to hold a per-project lock or serializable transaction across
// ValidateEdit and the write.
func ValidateEdit(milestones []Milestone, edited MilestoneID, proposed Set) error {
	return New(milestones...).ValidateEdit(edited, proposed)
}

// ValidateEdit is the Graph form of the package-level ValidateEdit.
func (g *Graph) ValidateEdit(edited MilestoneID, proposed Set) error {
	if !ValidateSelfDependency(edited, proposed) {
		return &SelfDependencyError{ID: edited}
	}
	if res := ValidateExistence(proposed, g.IDs()); !res.Valid {
		return &UnknownReferenceError{IDs: res.InvalidIDs}
	}
	if path, found := g.CyclePath(edited, proposed); found {
		return &CircularDependencyError{ID: edited, Path: path}
	}
	return nil
}

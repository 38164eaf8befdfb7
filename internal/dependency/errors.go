package dependency

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const maxRawInError = 64

// MalformedEncodingError describes a persisted dependency field that is not a
// clean list of integers. Parse never returns it; ParseStrict does, so callers
// can log corrupt rows while still reading them as having no dependencies.
type MalformedEncodingError struct {
	Raw    string
	Reason string
}

func (e *MalformedEncodingError) Error() string {
	raw := e.Raw
	if len(raw) > maxRawInError {
		raw = raw[:maxRawInError-3] + "..."
	}
	return fmt.Sprintf("malformed dependency encoding %q: %s", raw, e.Reason)
}

// SelfDependencyError rejects an edit whose dependency set contains the
// milestone's own id.
type SelfDependencyError struct {
	ID MilestoneID
}

func (e *SelfDependencyError) Error() string {
	return fmt.Sprintf("milestone %d cannot depend on itself", e.ID)
}

// UnknownReferenceError rejects an edit that references milestones which do
// not belong to the project.
type UnknownReferenceError struct {
	IDs []MilestoneID
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("dependencies reference unknown milestones: %s", JoinIDs(e.IDs))
}

// CircularDependencyError rejects an edit that would close a cycle.
type CircularDependencyError struct {
	ID   MilestoneID
	Path []MilestoneID
}

func (e *CircularDependencyError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("changing dependencies of milestone %d would create a circular dependency", e.ID)
	}
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return fmt.Sprintf("changing dependencies of milestone %d would create a circular dependency (%s)",
		e.ID, strings.Join(parts, " -> "))
}

// CorruptedGraphError signals that the persisted graph already contains a
// cycle: the topological order placed fewer milestones than exist.
type CorruptedGraphError struct {
	Placed int
	Total  int
}

func (e *CorruptedGraphError) Error() string {
	return fmt.Sprintf("persisted dependency graph is corrupted: ordered %d of %d milestones", e.Placed, e.Total)
}

// IsValidationError reports whether err rejects an edit: a self-dependency,
// an unknown reference or a circular dependency.
func IsValidationError(err error) bool {
	var self *SelfDependencyError
	var unknown *UnknownReferenceError
	var cycle *CircularDependencyError
	return errors.As(err, &self) || errors.As(err, &unknown) || errors.As(err, &cycle)
}

// JoinIDs formats ids as a comma separated list.
func JoinIDs(ids []MilestoneID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ", ")
}

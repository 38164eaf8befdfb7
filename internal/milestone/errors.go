package milestone

import (
	"errors"
	"fmt"

	"milestones/internal/dependency"
)

// NotFoundError reports a milestone that does not exist in the project.
type NotFoundError struct {
	ProjectID int64
	ID        dependency.MilestoneID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("milestone %d not found in project %d", e.ID, e.ProjectID)
}

// DuplicateError reports an attempt to add a milestone whose id is taken.
type DuplicateError struct {
	ProjectID int64
	ID        dependency.MilestoneID
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("milestone %d already exists in project %d", e.ID, e.ProjectID)
}

// LimitError rejects an edit that would exceed a configured size limit.
type LimitError struct {
	Limit string
	Max   int
	Got   int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit exceeded: %d > %d", e.Limit, e.Got, e.Max)
}

// HasDependentsError refuses to delete a milestone other milestones still
// depend on.
type HasDependentsError struct {
	ID         dependency.MilestoneID
	Dependents []dependency.MilestoneID
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("milestone %d is required by milestones %s", e.ID, dependency.JoinIDs(e.Dependents))
}

// IsRejected reports whether err is a deterministic refusal of the requested
// change, as opposed to a storage failure. Rejections reproduce on retry
// until the input changes.
func IsRejected(err error) bool {
	if dependency.IsValidationError(err) {
		return true
	}
	var limit *LimitError
	var dependents *HasDependentsError
	var duplicate *DuplicateError
	return errors.As(err, &limit) || errors.As(err, &dependents) || errors.As(err, &duplicate)
}

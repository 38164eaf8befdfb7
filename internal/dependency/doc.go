// Package dependency validates and orders the milestone dependency graph of a
// solar-installation project.
//
// A project's milestones must form a directed acyclic graph: every milestone
// lists the milestones that have to finish before it can start. This package
// enforces that property for proposed edits and derives a legal execution
// order from the committed graph. It reads no database and holds no state;
// every function works on a snapshot handed in by the caller.
//
// # Core Concepts
//
// Milestone: an id plus the Set of ids it depends on.
//
// Graph: an immutable index over one project's snapshot. An edge A -> B means
// "A depends on B", which is the reverse of execution order.
//
// # Operations
//
// Parse: normalize the persisted dependency field (normally a JSON array of
// integers) into a Set
//   - Never fails; corrupt or legacy values read as "no dependencies"
//   - Non-integer list elements are dropped
//
// ValidateSelfDependency / ValidateExistence: structural checks on a
// candidate set
//
// DetectCycle: simulate a proposed edit and report whether any cycle would
// result
//
// Dependents: one-hop reverse lookup, e.g. to warn before deleting a
// milestone
//
// TopologicalOrder: Kahn's algorithm with ascending-id tie-break; an empty
// result means the persisted graph is already cyclic
//
// # Usage Example
//
//	snapshot := []dependency.Milestone{
//	    dependency.FromRaw(1, `[]`),
//	    dependency.FromRaw(2, `[1]`),
//	    dependency.FromRaw(3, `[2]`),
//	}
//
//	// Would making 1 depend on 3 be legal?
//	err := dependency.ValidateEdit(snapshot, 1, dependency.NewSet(3))
//	// err is a *CircularDependencyError: 1 -> 3 -> 2 -> 1
//
//	order := dependency.TopologicalOrder(snapshot)
//	// [1 2 3]
//
// # Concurrency
//
// All functions are safe for concurrent use. Working sets are allocated per
// call and a Graph is never modified after construction.
//
// The engine answers "is this edit valid against this snapshot". Between the
// snapshot read and the write another edit could change the graph, so
// validation and persistence of one project's edits must happen inside a
// single serializable transaction or under a per-project lock. The milestone
// package provides stores that do this.
//
// # Error Handling
//
// Edits are rejected with *SelfDependencyError, *UnknownReferenceError or
// *CircularDependencyError. None of them are transient; retrying the same
// input reproduces the same result.
package dependency

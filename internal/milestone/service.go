package milestone

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"milestones/internal/dependency"
	"milestones/pkg/logging"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Options configures a Service. Zero limits are disabled.
type Options struct {
	MaxDependencies int
	MaxMilestones   int
	// CacheProjects is the number of project graphs kept for read-only
	// queries. Zero disables the cache.
	CacheProjects int
}

// Service is the mutation and query layer around the dependency engine.
//
// Every write loads the project's snapshot, validates the edit and persists
// it inside one Store.Update call, so no other writer can change the graph
// between the check and the write. Reads (Order, Levels, Dependents) may be
// served from a cache that is invalidated by this Service's own writes and by
// Invalidate; writes never use the cache.
type Service struct {
	store Store
	opts  Options

	cache *lru.Cache[int64, *dependency.Graph]
	loads singleflight.Group
	// generation is bumped on every invalidation so a load that started
	// before a write cannot put its stale graph into the cache.
	generation atomic.Uint64
}

// NewService creates a Service on top of store.
func NewService(store Store, opts Options) (*Service, error) {
	s := &Service{store: store, opts: opts}
	if opts.CacheProjects > 0 {
		cache, err := lru.New[int64, *dependency.Graph](opts.CacheProjects)
		if err != nil {
			return nil, fmt.Errorf("creating graph cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Invalidate drops the cached graph of one project.
func (s *Service) Invalidate(projectID int64) {
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Remove(projectID)
	}
}

// InvalidateAll drops every cached graph, e.g. after the backing file was
// edited outside this process.
func (s *Service) InvalidateAll() {
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Purge()
	}
}

// Milestones returns the project's rows.
func (s *Service) Milestones(ctx context.Context, projectID int64) ([]Record, error) {
	return s.store.Load(ctx, projectID)
}

// graph returns the project's graph for read-only queries. Concurrent
// requests for the same uncached project share one load.
func (s *Service) graph(ctx context.Context, projectID int64) (*dependency.Graph, error) {
	if s.cache != nil {
		if g, ok := s.cache.Get(projectID); ok {
			return g, nil
		}
	}

	// The load is shared by every caller waiting on this project, so it must
	// not fail because the first caller gave up.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loads.Do(strconv.FormatInt(projectID, 10), func() (interface{}, error) {
		gen := s.generation.Load()
		records, err := s.store.Load(loadCtx, projectID)
		if err != nil {
			return nil, err
		}
		g := dependency.New(snapshot(projectID, records)...)
		if s.cache != nil && s.generation.Load() == gen {
			s.cache.Add(projectID, g)
		}
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dependency.Graph), nil
}

// Order returns the project's milestones in an order that respects every
// dependency. A *dependency.CorruptedGraphError means the stored graph
// already contains a cycle; no partial order is returned in that case.
func (s *Service) Order(ctx context.Context, projectID int64) ([]dependency.MilestoneID, error) {
	g, err := s.graph(ctx, projectID)
	if err != nil {
		return nil, err
	}
	order, err := g.Order()
	if err != nil {
		logging.Error("Service", err, "Project %d has a cyclic dependency graph in storage", projectID)
		return nil, err
	}
	return order, nil
}

// Levels groups the project's milestones into waves of mutually independent
// milestones.
func (s *Service) Levels(ctx context.Context, projectID int64) ([][]dependency.MilestoneID, error) {
	g, err := s.graph(ctx, projectID)
	if err != nil {
		return nil, err
	}
	levels := g.Levels()
	if levels == nil {
		_, err := g.Order()
		logging.Error("Service", err, "Project %d has a cyclic dependency graph in storage", projectID)
		return nil, err
	}
	return levels, nil
}

// Dependents returns the milestones that directly depend on id.
func (s *Service) Dependents(ctx context.Context, projectID int64, id dependency.MilestoneID) ([]dependency.MilestoneID, error) {
	g, err := s.graph(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !g.Has(id) {
		return nil, &NotFoundError{ProjectID: projectID, ID: id}
	}
	return g.Dependents(id), nil
}

// validate applies the size limits and the engine's structural checks to a
// proposed dependency set for id.
func (s *Service) validate(g *dependency.Graph, id dependency.MilestoneID, proposed dependency.Set) error {
	if s.opts.MaxDependencies > 0 && proposed.Len() > s.opts.MaxDependencies {
		return &LimitError{Limit: "dependencies per milestone", Max: s.opts.MaxDependencies, Got: proposed.Len()}
	}
	return g.ValidateEdit(id, proposed)
}

// Check validates a proposed dependency set without writing it.
func (s *Service) Check(ctx context.Context, projectID int64, id dependency.MilestoneID, proposed []dependency.MilestoneID) error {
	records, err := s.store.Load(ctx, projectID)
	if err != nil {
		return err
	}
	g := dependency.New(snapshot(projectID, records)...)
	if !g.Has(id) {
		return &NotFoundError{ProjectID: projectID, ID: id}
	}
	return s.validate(g, id, dependency.NewSet(proposed...))
}

// SetDependencies validates and stores a new dependency set for an existing
// milestone.
func (s *Service) SetDependencies(ctx context.Context, projectID int64, id dependency.MilestoneID, proposed []dependency.MilestoneID) error {
	editID := uuid.NewString()
	deps := dependency.NewSet(proposed...)

	err := s.store.Update(ctx, projectID, func(ctx context.Context, tx Tx) error {
		records, err := tx.Milestones(ctx)
		if err != nil {
			return err
		}
		g := dependency.New(snapshot(projectID, records)...)
		if !g.Has(id) {
			return &NotFoundError{ProjectID: projectID, ID: id}
		}
		if err := s.validate(g, id, deps); err != nil {
			return err
		}
		return tx.SetDependencies(ctx, id, dependency.Encode(deps))
	})
	s.logOutcome(err, editID, "set dependencies of milestone %d in project %d to [%s]", id, projectID, dependency.JoinIDs(deps.Sorted()))
	if err == nil {
		s.Invalidate(projectID)
	}
	return err
}

// AddMilestone stores a new milestone after validating its dependencies.
func (s *Service) AddMilestone(ctx context.Context, projectID int64, id dependency.MilestoneID, name string, deps []dependency.MilestoneID) error {
	editID := uuid.NewString()
	set := dependency.NewSet(deps...)

	err := s.store.Update(ctx, projectID, func(ctx context.Context, tx Tx) error {
		records, err := tx.Milestones(ctx)
		if err != nil {
			return err
		}
		if s.opts.MaxMilestones > 0 && len(records)+1 > s.opts.MaxMilestones {
			return &LimitError{Limit: "milestones per project", Max: s.opts.MaxMilestones, Got: len(records) + 1}
		}
		g := dependency.New(snapshot(projectID, records)...)
		if g.Has(id) {
			return &DuplicateError{ProjectID: projectID, ID: id}
		}
		if err := s.validate(g, id, set); err != nil {
			return err
		}
		return tx.Put(ctx, Record{ID: id, Name: name, Dependencies: dependency.Encode(set)})
	})
	s.logOutcome(err, editID, "add milestone %d (%q) to project %d", id, name, projectID)
	if err == nil {
		s.Invalidate(projectID)
	}
	return err
}

// Delete removes a milestone. If other milestones depend on it directly the
// delete is refused with a *HasDependentsError, unless force is set, in which
// case id is removed from each dependent's set in the same transaction. The
// returned slice lists the dependents that were detached.
func (s *Service) Delete(ctx context.Context, projectID int64, id dependency.MilestoneID, force bool) ([]dependency.MilestoneID, error) {
	editID := uuid.NewString()
	var detached []dependency.MilestoneID

	err := s.store.Update(ctx, projectID, func(ctx context.Context, tx Tx) error {
		detached = nil
		records, err := tx.Milestones(ctx)
		if err != nil {
			return err
		}
		milestones := snapshot(projectID, records)
		g := dependency.New(milestones...)
		if !g.Has(id) {
			return &NotFoundError{ProjectID: projectID, ID: id}
		}

		var dependents []dependency.MilestoneID
		for _, d := range g.Dependents(id) {
			if d != id {
				dependents = append(dependents, d)
			}
		}
		if len(dependents) > 0 && !force {
			return &HasDependentsError{ID: id, Dependents: dependents}
		}

		for _, m := range milestones {
			if m.ID == id || !m.Dependencies.Contains(id) {
				continue
			}
			remaining := dependency.NewSet()
			for dep := range m.Dependencies {
				if dep != id {
					remaining[dep] = struct{}{}
				}
			}
			if err := tx.SetDependencies(ctx, m.ID, dependency.Encode(remaining)); err != nil {
				return err
			}
			detached = append(detached, m.ID)
		}
		return tx.Delete(ctx, id)
	})
	s.logOutcome(err, editID, "delete milestone %d from project %d (force=%t)", id, projectID, force)
	if err != nil {
		return nil, err
	}
	s.Invalidate(projectID)
	return dependency.NewSet(detached...).Sorted(), nil
}

func (s *Service) logOutcome(err error, editID string, format string, args ...interface{}) {
	action := fmt.Sprintf(format, args...)
	switch {
	case err == nil:
		logging.Info("Service", "Edit %s: %s", editID, action)
	case IsRejected(err):
		logging.Info("Service", "Edit %s rejected: %s: %v", editID, action, err)
	default:
		logging.Error("Service", err, "Edit %s failed: %s", editID, action)
	}
}

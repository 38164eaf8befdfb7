package milestone

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"milestones/internal/dependency"
	"milestones/pkg/logging"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// lockRetryDelay is how often a blocked writer retries the file lock.
const lockRetryDelay = 10 * time.Millisecond

type projectRows map[dependency.MilestoneID]Record

// MemoryStore keeps projects in memory, optionally mirrored to a YAML file.
//
// Without a file, updates to one project are serialized by a per-project
// mutex and updates to different projects run in parallel.
//
// With a file, every Update holds an exclusive lock on "<path>.lock" and
// re-reads the file before fn runs, so processes sharing the file never
// validate against rows another process has already replaced. Load serves
// the rows read by the last Update or Reload.
type MemoryStore struct {
	path string

	// fileMu serializes file access inside the process; fileLock excludes
	// other processes.
	fileMu   sync.Mutex
	fileLock *flock.Flock

	mu       sync.RWMutex
	projects map[int64]projectRows

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// projectsFile is the on-disk layout of a file-backed store.
type projectsFile struct {
	Projects []projectEntry `yaml:"projects"`
}

type projectEntry struct {
	ID         int64    `yaml:"id"`
	Milestones []Record `yaml:"milestones"`
}

// NewMemoryStore returns an empty store that lives only in memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[int64]projectRows),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// NewFileStore returns a store backed by the YAML file at path. A missing
// file is treated as an empty store and created on the first commit.
func NewFileStore(path string) (*MemoryStore, error) {
	s := NewMemoryStore()
	s.path = path
	s.fileLock = flock.New(path + ".lock")
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file, or "" for a memory-only store.
func (s *MemoryStore) Path() string {
	return s.path
}

// Reload replaces the in-memory state with the backing file's contents.
// It is a no-op for memory-only stores.
func (s *MemoryStore) Reload() error {
	if s.path == "" {
		return nil
	}
	unlock, err := s.lockFile(context.Background())
	if err != nil {
		return err
	}
	defer unlock()
	return s.readFileLocked()
}

// lockFile takes the in-process and the cross-process lock on the backing
// file. The returned func releases both.
func (s *MemoryStore) lockFile(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", s.path, err)
	}

	s.fileMu.Lock()
	locked, err := s.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err == nil && !locked {
		err = ctx.Err()
	}
	if err != nil {
		s.fileMu.Unlock()
		return nil, fmt.Errorf("locking %s: %w", s.fileLock.Path(), err)
	}

	return func() {
		if err := s.fileLock.Unlock(); err != nil {
			logging.Warn("FileStore", "Failed to release %s: %v", s.fileLock.Path(), err)
		}
		s.fileMu.Unlock()
	}, nil
}

// readFileLocked loads the backing file into memory. The caller holds the
// file lock.
func (s *MemoryStore) readFileLocked() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Debug("FileStore", "No projects file at %s, starting empty", s.path)
		s.mu.Lock()
		s.projects = make(map[int64]projectRows)
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading projects file %s: %w", s.path, err)
	}

	var file projectsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing projects file %s: %w", s.path, err)
	}

	projects := make(map[int64]projectRows, len(file.Projects))
	for _, p := range file.Projects {
		rows := make(projectRows, len(p.Milestones))
		for _, r := range p.Milestones {
			rows[r.ID] = r
		}
		projects[p.ID] = rows
	}

	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
	logging.Debug("FileStore", "Loaded %d project(s) from %s", len(projects), s.path)
	return nil
}

func (s *MemoryStore) projectLock(projectID int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[projectID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[projectID] = l
	}
	return l
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, projectID int64) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rowsToRecords(s.projects[projectID]), nil
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, projectID int64, fn func(ctx context.Context, tx Tx) error) error {
	if s.path == "" {
		lock := s.projectLock(projectID)
		lock.Lock()
		defer lock.Unlock()

		if err := ctx.Err(); err != nil {
			return err
		}
	} else {
		unlock, err := s.lockFile(ctx)
		if err != nil {
			return err
		}
		defer unlock()

		if err := s.readFileLocked(); err != nil {
			return err
		}
	}

	s.mu.RLock()
	staged := make(projectRows, len(s.projects[projectID]))
	for id, r := range s.projects[projectID] {
		staged[id] = r
	}
	s.mu.RUnlock()

	tx := &memoryTx{projectID: projectID, rows: staged}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	previous, existed := s.projects[projectID]
	s.projects[projectID] = staged
	if err := s.saveLocked(); err != nil {
		if existed {
			s.projects[projectID] = previous
		} else {
			delete(s.projects, projectID)
		}
		return err
	}
	return nil
}

// saveLocked writes every project to the backing file. The caller holds
// s.mu and, for file stores, the file lock. The file is replaced atomically
// through a rename.
func (s *MemoryStore) saveLocked() error {
	if s.path == "" {
		return nil
	}

	ids := make([]int64, 0, len(s.projects))
	for id := range s.projects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	file := projectsFile{Projects: make([]projectEntry, 0, len(ids))}
	for _, id := range ids {
		file.Projects = append(file.Projects, projectEntry{ID: id, Milestones: rowsToRecords(s.projects[id])})
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encoding projects file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", s.path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".projects-*.yaml")
	if err != nil {
		return fmt.Errorf("writing projects file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing projects file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing projects file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing projects file %s: %w", s.path, err)
	}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

func rowsToRecords(rows projectRows) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r)
	}
	sortRecords(out)
	return out
}

// memoryTx stages writes on a private copy of one project's rows.
type memoryTx struct {
	projectID int64
	rows      projectRows
	dirty     bool
}

func (t *memoryTx) Milestones(ctx context.Context) ([]Record, error) {
	return rowsToRecords(t.rows), nil
}

func (t *memoryTx) Put(ctx context.Context, r Record) error {
	t.rows[r.ID] = r
	t.dirty = true
	return nil
}

func (t *memoryTx) SetDependencies(ctx context.Context, id dependency.MilestoneID, raw string) error {
	r, ok := t.rows[id]
	if !ok {
		return &NotFoundError{ProjectID: t.projectID, ID: id}
	}
	r.Dependencies = raw
	t.rows[id] = r
	t.dirty = true
	return nil
}

func (t *memoryTx) Delete(ctx context.Context, id dependency.MilestoneID) error {
	if _, ok := t.rows[id]; !ok {
		return &NotFoundError{ProjectID: t.projectID, ID: id}
	}
	delete(t.rows, id)
	t.dirty = true
	return nil
}

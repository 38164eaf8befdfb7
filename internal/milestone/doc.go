// Package milestone is the mutation and query layer around the dependency
// engine in internal/dependency.
//
// The engine answers whether an edit is valid against a snapshot. This
// package makes that answer hold at write time: every write loads the
// project's milestones, validates the edit and persists it inside a single
// Store.Update, which gives the callback exclusive access to the project.
//
// Stores:
//   - MemoryStore: per-project mutex, optionally mirrored to a YAML file
//     (NewFileStore). A file-backed store locks "<path>.lock" and re-reads
//     the file for every Update, so several processes can share it.
//     FileWatcher reloads it when the file changes on disk.
//   - PostgresStore: SERIALIZABLE transaction plus pg_advisory_xact_lock on
//     the project id.
//
// Read-only queries (Order, Levels, Dependents) are served from an LRU cache
// of project graphs. The cache is dropped on every write made through the
// Service; writes always validate against a fresh snapshot.
package milestone

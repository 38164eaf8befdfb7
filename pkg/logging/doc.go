// Package logging provides subsystem-tagged structured logging on top of
// Go's log/slog.
//
// Every entry carries a subsystem attribute ("Service", "PostgresStore",
// "ConfigLoader", ...) so output can be filtered per component. Errors are
// passed separately from the message and end up in an "error" attribute.
//
//	logging.Init(logging.LevelInfo, logging.FormatText, os.Stderr)
//
//	logging.Info("Service", "Updated dependencies of milestone %d", id)
//	logging.Warn("Service", "Milestone %d has a malformed dependency field", id)
//	logging.Error("PostgresStore", err, "Failed to commit project %d", projectID)
//
// Before Init is called only warnings and errors are written, to stderr.
//
// The milestone graph engine in internal/dependency does not log; callers
// decide what is worth reporting.
package logging

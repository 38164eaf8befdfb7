package milestone

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"milestones/internal/dependency"
	"milestones/pkg/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The dependency column is TEXT rather than JSONB on purpose: rows written by
// older clients may hold values that are not valid JSON, and those must
// still load.
const milestonesSchema = `
CREATE TABLE IF NOT EXISTS milestones (
	project_id   BIGINT NOT NULL,
	id           BIGINT NOT NULL,
	name         TEXT   NOT NULL DEFAULT '',
	dependencies TEXT   NOT NULL DEFAULT '[]',
	PRIMARY KEY (project_id, id)
)`

// serializationFailure is the SQLSTATE PostgreSQL reports when a
// SERIALIZABLE transaction cannot be committed.
const serializationFailure = "40001"

const maxSerializationRetries = 3

// PostgresStore keeps milestone rows in PostgreSQL.
//
// Update runs inside a SERIALIZABLE transaction and first takes a
// transaction-scoped advisory lock keyed by the project id, which queues the
// writers of one project. The transaction snapshot is taken by that first
// statement, so a writer that waited on the lock may read rows older than the
// previous commit; PostgreSQL then aborts it with a serialization failure and
// Update runs it again against current data.
type PostgresStore struct {
	pool *pgxpool.Pool

	schemaOnce sync.Once
	schemaErr  error
}

// NewPostgresStore connects to dsn and verifies the connection.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		if _, err := s.pool.Exec(ctx, milestonesSchema); err != nil {
			s.schemaErr = fmt.Errorf("creating milestones table: %w", err)
		}
	})
	return s.schemaErr
}

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context, projectID int64) ([]Record, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return queryRecords(ctx, s.pool, projectID)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryRecords(ctx context.Context, q querier, projectID int64) ([]Record, error) {
	rows, err := q.Query(ctx,
		`SELECT id, name, dependencies FROM milestones WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading milestones of project %d: %w", projectID, err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var (
			id   int64
			name string
			deps string
		)
		if err := row.Scan(&id, &name, &deps); err != nil {
			return Record{}, err
		}
		return Record{ID: dependency.MilestoneID(id), Name: name, Dependencies: deps}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading milestones of project %d: %w", projectID, err)
	}
	return records, nil
}

// Update implements Store. A transaction aborted by a serialization failure
// is retried a few times; fn must therefore read everything it needs through
// the Tx it is given.
func (s *PostgresStore) Update(ctx context.Context, projectID int64, fn func(ctx context.Context, tx Tx) error) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	var err error
	for attempt := 1; attempt <= maxSerializationRetries; attempt++ {
		err = s.update(ctx, projectID, fn)
		if !isSerializationFailure(err) {
			return err
		}
		logging.Debug("PostgresStore", "Serialization failure on project %d (attempt %d/%d)", projectID, attempt, maxSerializationRetries)
	}
	return err
}

func (s *PostgresStore) update(ctx context.Context, projectID int64, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, projectID); err != nil {
		return fmt.Errorf("locking project %d: %w", projectID, err)
	}

	if err := fn(ctx, &postgresTx{tx: tx, projectID: projectID}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing project %d: %w", projectID, err)
	}
	return nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == serializationFailure
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type postgresTx struct {
	tx        pgx.Tx
	projectID int64
}

func (t *postgresTx) Milestones(ctx context.Context) ([]Record, error) {
	return queryRecords(ctx, t.tx, t.projectID)
}

func (t *postgresTx) Put(ctx context.Context, r Record) error {
	deps := r.Dependencies
	if deps == "" {
		deps = "[]"
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO milestones (project_id, id, name, dependencies)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, id) DO UPDATE
		SET name = EXCLUDED.name, dependencies = EXCLUDED.dependencies`,
		t.projectID, int64(r.ID), r.Name, deps)
	if err != nil {
		return fmt.Errorf("writing milestone %d: %w", r.ID, err)
	}
	return nil
}

func (t *postgresTx) SetDependencies(ctx context.Context, id dependency.MilestoneID, raw string) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE milestones SET dependencies = $3 WHERE project_id = $1 AND id = $2`,
		t.projectID, int64(id), raw)
	if err != nil {
		return fmt.Errorf("updating dependencies of milestone %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{ProjectID: t.projectID, ID: id}
	}
	return nil
}

func (t *postgresTx) Delete(ctx context.Context, id dependency.MilestoneID) error {
	tag, err := t.tx.Exec(ctx,
		`DELETE FROM milestones WHERE project_id = $1 AND id = $2`, t.projectID, int64(id))
	if err != nil {
		return fmt.Errorf("deleting milestone %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{ProjectID: t.projectID, ID: id}
	}
	return nil
}

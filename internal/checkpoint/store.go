// Package checkpoint persists per-node run state in SQLite. The store
// is the durability boundary for resumable runs: the graph engine
// writes a row after every node and reads the latest ok row on resume.
package checkpoint

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes. Old databases must
// be deleted after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrNotFound indicates no checkpoint matched the query.
var ErrNotFound = errors.New("checkpoint not found")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store manages checkpoint persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the checkpoint database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Put appends one checkpoint row and returns it with the assigned id.
func (s *Store) Put(ctx context.Context, runID, node string, status Status, payload any) (*Checkpoint, error) {
	ctx = ensureContext(ctx)
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	now := time.Now().UTC()

	var res sql.Result
	if err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO checkpoints (run_id, node, status, payload, created_at)
             VALUES (?, ?, ?, ?, ?)`,
			runID, node, string(status), string(encoded), now.Format(time.RFC3339Nano),
		)
		return execErr
	}); err != nil {
		return nil, fmt.Errorf("insert checkpoint: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Checkpoint{
		ID:        id,
		RunID:     runID,
		Node:      node,
		Status:    status,
		Payload:   json.RawMessage(encoded),
		CreatedAt: now,
	}, nil
}

// LatestOK returns the newest ok checkpoint for the run, or ErrNotFound
// when the run has none.
func (s *Store) LatestOK(ctx context.Context, runID string) (*Checkpoint, error) {
	query, args, err := selectCheckpoints().
		Where(sq.Eq{"run_id": runID, "status": string(StatusOK)}).
		OrderBy("id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.queryWithRetry(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ListRun returns every checkpoint for the run in append order.
func (s *Store) ListRun(ctx context.Context, runID string) ([]Checkpoint, error) {
	query, args, err := selectCheckpoints().
		Where(sq.Eq{"run_id": runID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.queryWithRetry(ctx, query, args...)
}

// Runs summarizes every known run, newest activity first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	ctx = ensureContext(ctx)
	query := `SELECT run_id, COUNT(1), MAX(id) FROM checkpoints GROUP BY run_id ORDER BY MAX(id) DESC`

	type runRow struct {
		runID string
		count int
		maxID int64
	}
	var runRows []runRow
	if err := retryOnBusy(ctx, func() error {
		rows, queryErr := s.db.QueryContext(ctx, query)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		runRows = runRows[:0]
		for rows.Next() {
			var row runRow
			if scanErr := rows.Scan(&row.runID, &row.count, &row.maxID); scanErr != nil {
				return scanErr
			}
			runRows = append(runRows, row)
		}
		return rows.Err()
	}); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	summaries := make([]RunSummary, 0, len(runRows))
	for _, row := range runRows {
		last, err := s.byID(ctx, row.maxID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, RunSummary{
			RunID:       row.runID,
			Checkpoints: row.count,
			LastNode:    last.Node,
			LastStatus:  last.Status,
			UpdatedAt:   last.CreatedAt,
		})
	}
	return summaries, nil
}

func (s *Store) byID(ctx context.Context, id int64) (*Checkpoint, error) {
	query, args, err := selectCheckpoints().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.queryWithRetry(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func selectCheckpoints() sq.SelectBuilder {
	return sq.Select("id", "run_id", "node", "status", "payload", "created_at").
		From("checkpoints")
}

func (s *Store) queryWithRetry(ctx context.Context, query string, args ...any) ([]Checkpoint, error) {
	ctx = ensureContext(ctx)
	var checkpoints []Checkpoint
	if err := retryOnBusy(ctx, func() error {
		rows, queryErr := s.db.QueryContext(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		checkpoints = checkpoints[:0]
		for rows.Next() {
			cp, scanErr := scanCheckpoint(rows)
			if scanErr != nil {
				return scanErr
			}
			checkpoints = append(checkpoints, cp)
		}
		return rows.Err()
	}); err != nil {
		return nil, fmt.Errorf("query checkpoints: %w", err)
	}
	return checkpoints, nil
}

func scanCheckpoint(rows *sql.Rows) (Checkpoint, error) {
	var (
		cp        Checkpoint
		status    string
		payload   string
		createdAt string
	)
	if err := rows.Scan(&cp.ID, &cp.RunID, &cp.Node, &status, &payload, &createdAt); err != nil {
		return Checkpoint{}, err
	}
	cp.Status = Status(status)
	if payload != "" {
		cp.Payload = json.RawMessage(payload)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		cp.CreatedAt = parsed
	}
	return cp, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete the database to recreate)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Package jobstore keeps a SQLite log of pipeline runs and their state
// transitions.
package jobstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/forPelevin/mediashop/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    job_id      TEXT PRIMARY KEY,
    kind        TEXT NOT NULL,
    medium      TEXT NOT NULL,
    state       TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    output      TEXT NOT NULL DEFAULT '',
    started_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    transitions INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_jobs_started_at ON jobs(started_at);
`

type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens jobs.db under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure job store dir: %w", err)
	}
	dbPath := filepath.Join(dir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string { return s.path }

// Record upserts the job row with the event's state.
func (s *Store) Record(ctx context.Context, ev types.JobEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	ts := at.UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO jobs (job_id, kind, medium, state, error, output, started_at, updated_at, transitions)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)
ON CONFLICT(job_id) DO UPDATE SET
    state = excluded.state,
    error = CASE WHEN excluded.error != '' THEN excluded.error ELSE jobs.error END,
    output = CASE WHEN excluded.output != '' THEN excluded.output ELSE jobs.output END,
    updated_at = excluded.updated_at,
    transitions = jobs.transitions + 1`,
		ev.JobID, string(ev.Kind), string(ev.Medium), string(ev.State), ev.Error, ev.Output, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("record job %s: %w", ev.JobID, err)
	}
	return nil
}

// List returns the most recently started jobs first.
func (s *Store) List(ctx context.Context, limit int) ([]types.JobRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT job_id, kind, medium, state, error, output, started_at, updated_at, transitions
FROM jobs ORDER BY started_at DESC, job_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []types.JobRecord
	for rows.Next() {
		var (
			r                types.JobRecord
			kind, medium, st string
			started, updated string
		)
		if err := rows.Scan(&r.JobID, &kind, &medium, &st, &r.Error, &r.Output, &started, &updated, &r.Transitions); err != nil {
			return nil, err
		}
		r.Kind, r.Medium, r.State = types.JobKind(kind), types.Medium(medium), types.JobState(st)
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, r)
	}
	return out, rows.Err()
}

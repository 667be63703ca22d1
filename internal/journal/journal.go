// Package journal keeps a local ledger of CLI runs in SQLite: what was
// asked, how many rows came back, how long it took. It records run metadata
// only, never result data.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one journal entry.
type Run struct {
	ID        string
	Command   string
	Args      string
	Rows      int
	Duration  time.Duration
	StartedAt time.Time
}

// Journal is an append-only run ledger. One Journal per process is expected.
type Journal struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    command     TEXT NOT NULL,
    args        TEXT NOT NULL,
    row_count   INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    started_at  TEXT NOT NULL
)`

// Open opens (creating if needed) the journal database at path, including
// parent directories.
func Open(ctx context.Context, path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal: empty path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("journal: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: ensure schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// Append records one run. A zero ID gets a fresh UUID; a zero StartedAt gets
// the current time.
func (j *Journal) Append(ctx context.Context, r Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, args, row_count, duration_ms, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Command, r.Args, r.Rows, r.Duration.Milliseconds(),
		r.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("journal: append run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first. limit <= 0 defaults to 20.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, command, args, row_count, duration_ms, started_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var durMs int64
		var started string
		if err := rows.Scan(&r.ID, &r.Command, &r.Args, &r.Rows, &durMs, &started); err != nil {
			return nil, fmt.Errorf("journal: scan run: %w", err)
		}
		r.Duration = time.Duration(durMs) * time.Millisecond
		if ts, perr := time.Parse(time.RFC3339Nano, started); perr == nil {
			r.StartedAt = ts
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

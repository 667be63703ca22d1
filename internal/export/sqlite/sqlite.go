// Package sqlite implements the sqlite export sink on modernc.org/sqlite
// (pure Go, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/johnwroge/Materials-Research/internal/export"
	"github.com/johnwroge/Materials-Research/internal/normalize"
)

func init() {
	export.Register("sqlite", New)
}

// Sink appends a table into a SQLite database, creating the target table on
// first use. Column names are sanitized (dots are not identifier-safe);
// affinities come from the data.
type Sink struct {
	db    *sql.DB
	table string
}

func New(ctx context.Context, cfg export.Config) (export.Sink, error) {
	db, err := sql.Open("sqlite", cfg.Dest)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Dest, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Sink{db: db, table: cfg.Table}, nil
}

func (s *Sink) Close() error { return s.db.Close() }

func (s *Sink) Write(ctx context.Context, t *normalize.Table) error {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = export.ColumnName(c)
	}

	if err := s.ensureTable(ctx, cols, export.InferColumnKinds(t)); err != nil {
		return err
	}
	if len(t.Rows) == 0 {
		return nil
	}

	// One multi-row INSERT per call; result tables are interactive-query
	// sized, not bulk-load sized.
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(s.table))
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(t.Rows)*len(cols))
	ph := "(" + strings.TrimRight(strings.Repeat("?,", len(cols)), ",") + ")"
	for i, row := range t.Rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ph)
		for _, v := range row {
			args = append(args, export.DBValue(v))
		}
	}

	if _, err := s.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("sqlite: insert into %s: %w", s.table, err)
	}
	return nil
}

func (s *Sink) ensureTable(ctx context.Context, cols []string, kinds []export.Kind) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(sqlIdent(s.table))
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
		b.WriteString(" ")
		b.WriteString(typeName(kinds[i]))
	}
	b.WriteString(")")

	if _, err := s.db.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", s.table, err)
	}
	return nil
}

func typeName(k export.Kind) string {
	switch k {
	case export.KindInteger:
		return "INTEGER"
	case export.KindReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

func sqlIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

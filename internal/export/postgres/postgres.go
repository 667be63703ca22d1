// Package postgres implements the postgres export sink on pgx.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/johnwroge/Materials-Research/internal/export"
	"github.com/johnwroge/Materials-Research/internal/normalize"
)

func init() {
	export.Register("postgres", New)
}

// Sink appends a table into a Postgres database, creating the target table
// on first use. Same semantics as the sqlite sink; only the dialect differs.
type Sink struct {
	pool  *pgxpool.Pool
	table string
}

func New(ctx context.Context, cfg export.Config) (export.Sink, error) {
	pool, err := pgxpool.New(ctx, cfg.Dest)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return &Sink{pool: pool, table: cfg.Table}, nil
}

func (s *Sink) Close() error {
	s.pool.Close()
	return nil
}

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

	sql, args := buildInsertSQL(s.table, cols, t.Rows)
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("postgres: insert into %s: %w", s.table, err)
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

	if _, err := s.pool.Exec(ctx, b.String()); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", s.table, err)
	}
	return nil
}

func buildInsertSQL(table string, cols []string, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(cols))
	n := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
			args = append(args, export.DBValue(v))
		}
		b.WriteString(")")
	}

	return b.String(), args
}

func typeName(k export.Kind) string {
	switch k {
	case export.KindInteger:
		return "BIGINT"
	case export.KindReal:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

func sqlIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Package mssql implements the mssql export sink on microsoft/go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/johnwroge/Materials-Research/internal/export"
	"github.com/johnwroge/Materials-Research/internal/normalize"
)

func init() {
	export.Register("mssql", New)
}

// Sink appends a table into a SQL Server database. Same semantics as the
// other database sinks; identifiers are bracket-quoted and table existence
// is checked via OBJECT_ID (SQL Server has no CREATE TABLE IF NOT EXISTS).
type Sink struct {
	db    *sql.DB
	table string
}

func New(ctx context.Context, cfg export.Config) (export.Sink, error) {
	db, err := sql.Open("sqlserver", cfg.Dest)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
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
	n := 1
	for i, row := range t.Rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "@p%d", n)
			n++
			args = append(args, export.DBValue(v))
		}
		b.WriteString(")")
	}

	if _, err := s.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("mssql: insert into %s: %w", s.table, err)
	}
	return nil
}

func (s *Sink) ensureTable(ctx context.Context, cols []string, kinds []export.Kind) error {
	var b strings.Builder
	fmt.Fprintf(&b, "IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE ", strings.ReplaceAll(s.table, "'", "''"))
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
		return fmt.Errorf("mssql: create table %s: %w", s.table, err)
	}
	return nil
}

func typeName(k export.Kind) string {
	switch k {
	case export.KindInteger:
		return "BIGINT"
	case export.KindReal:
		return "FLOAT"
	default:
		return "NVARCHAR(MAX)"
	}
}

func sqlIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

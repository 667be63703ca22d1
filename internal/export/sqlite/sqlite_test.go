package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/johnwroge/Materials-Research/internal/export"
	"github.com/johnwroge/Materials-Research/internal/normalize"
)

func TestWrite_CreatesTableAndInserts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.db")

	sink, err := New(ctx, export.Config{Kind: "sqlite", Dest: path, Table: "materials"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tbl := &normalize.Table{
		Columns: []string{"material_id", "band_gap", "elasticity.K_VRH"},
		Rows: [][]any{
			{"mp-1", json.Number("1.2"), json.Number("120")},
			{"mp-2", nil, json.Number("95")},
		},
	}
	if err := sink.Write(ctx, tbl); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "materials"`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("row count = %d, want 2", n)
	}

	// Dotted column names must arrive sanitized.
	var k sql.NullFloat64
	err = db.QueryRowContext(ctx,
		`SELECT "elasticity_k_vrh" FROM "materials" WHERE "material_id" = 'mp-2'`).Scan(&k)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !k.Valid || k.Float64 != 95 {
		t.Fatalf("elasticity_k_vrh = %+v, want 95", k)
	}

	var gap sql.NullFloat64
	err = db.QueryRowContext(ctx,
		`SELECT "band_gap" FROM "materials" WHERE "material_id" = 'mp-2'`).Scan(&gap)
	if err != nil {
		t.Fatalf("select null: %v", err)
	}
	if gap.Valid {
		t.Fatalf("band_gap should be NULL, got %v", gap.Float64)
	}
}

func TestWrite_EmptyTableOnlyCreates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "empty.db")

	sink, err := New(ctx, export.Config{Kind: "sqlite", Dest: path, Table: "materials"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sink.Close()

	tbl := &normalize.Table{Columns: []string{"band_gap"}}
	if err := sink.Write(ctx, tbl); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var n int
	if err := sink.(*Sink).db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "materials"`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("row count = %d, want 0", n)
	}
}

package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/johnwroge/Materials-Research/internal/normalize"
)

func table(cols []string, rows [][]any) *normalize.Table {
	return &normalize.Table{Columns: cols, Rows: rows}
}

func TestPearson_PerfectPositive(t *testing.T) {
	tbl := table([]string{"x", "y"}, [][]any{
		{1.0, 2.0},
		{2.0, 4.0},
		{3.0, 6.0},
	})

	c, err := Pearson(tbl, "x", "y")
	if err != nil {
		t.Fatalf("Pearson: %v", err)
	}
	if math.Abs(c.R-1.0) > 1e-12 {
		t.Fatalf("R = %v, want 1", c.R)
	}
	if c.Samples != 3 || c.Skipped != 0 {
		t.Fatalf("samples=%d skipped=%d", c.Samples, c.Skipped)
	}
}

func TestPearson_NegativeWithJSONNumbers(t *testing.T) {
	tbl := table([]string{"band_gap", "density"}, [][]any{
		{json.Number("1.0"), json.Number("9.0")},
		{json.Number("2.0"), json.Number("6.0")},
		{json.Number("3.0"), json.Number("3.0")},
	})

	c, err := Pearson(tbl, "band_gap", "density")
	if err != nil {
		t.Fatalf("Pearson: %v", err)
	}
	if math.Abs(c.R+1.0) > 1e-12 {
		t.Fatalf("R = %v, want -1", c.R)
	}
}

func TestPearson_SkipsNullsAndText(t *testing.T) {
	tbl := table([]string{"x", "y"}, [][]any{
		{1.0, 1.0},
		{nil, 2.0},
		{"N/A", 3.0},
		{2.0, nil},
		{3.0, 3.0},
	})

	c, err := Pearson(tbl, "x", "y")
	if err != nil {
		t.Fatalf("Pearson: %v", err)
	}
	if c.Samples != 2 || c.Skipped != 3 {
		t.Fatalf("samples=%d skipped=%d, want 2/3", c.Samples, c.Skipped)
	}
}

func TestPearson_Errors(t *testing.T) {
	tbl := table([]string{"x", "y"}, [][]any{{1.0, 1.0}, {2.0, 1.0}})

	if _, err := Pearson(tbl, "missing", "y"); err == nil {
		t.Fatalf("unknown column should fail")
	}
	if _, err := Pearson(tbl, "x", "y"); err == nil {
		t.Fatalf("zero variance should fail")
	}

	one := table([]string{"x", "y"}, [][]any{{1.0, 1.0}})
	if _, err := Pearson(one, "x", "y"); err == nil {
		t.Fatalf("single sample should fail")
	}
}

package tabular

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/johnwroge/Materials-Research/internal/normalize"
)

func TestRender_IncludesHeadersAndCells(t *testing.T) {
	tbl := &normalize.Table{
		Columns: []string{"material_id", "band_gap", "elasticity.K_VRH"},
		Rows: [][]any{
			{"mp-1", json.Number("1.2"), json.Number("120")},
			{"mp-2", nil, nil},
		},
	}

	var sb strings.Builder
	Render(&sb, tbl)
	out := sb.String()

	for _, want := range []string{"material_id", "elasticity.K_VRH", "mp-1", "mp-2", "120", "N/A"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "N/A"},
		{"", "N/A"},
		{"LiFePO4", "LiFePO4"},
		{true, "Yes"},
		{false, "No"},
		{json.Number("42"), "42"},
		{json.Number("12345"), "12,345"},
		{json.Number("1.23456789"), "1.2346"},
		{1234567, "1,234,567"},
	}
	for _, c := range cases {
		if got := FormatValue(c.in); got != c.want {
			t.Fatalf("FormatValue(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCount_GroupsDigits(t *testing.T) {
	if got := Count(1234); got != "1,234" {
		t.Fatalf("Count(1234) = %q", got)
	}
}

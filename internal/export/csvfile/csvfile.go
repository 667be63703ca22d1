// Package csvfile implements the csv export sink.
package csvfile

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/johnwroge/Materials-Research/internal/export"
	"github.com/johnwroge/Materials-Research/internal/normalize"
)

func init() {
	export.Register("csv", New)
}

// Sink writes a table as a CSV file. The header keeps the requested field
// specs verbatim (dots included) so exported files match what the terminal
// shows.
type Sink struct {
	path string
}

func New(ctx context.Context, cfg export.Config) (export.Sink, error) {
	if cfg.Dest == "" {
		return nil, fmt.Errorf("csv: empty output path")
	}
	return &Sink{path: cfg.Dest}, nil
}

// Write writes the file atomically: temp file in the same directory, rename
// into place on success.
func (s *Sink) Write(ctx context.Context, t *normalize.Table) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".matproj-csv-*")
	if err != nil {
		return fmt.Errorf("csv: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	werr := writeCSV(tmp, t)
	cerr := tmp.Close()

	if werr != nil {
		_ = os.Remove(tmpName)
		return werr
	}
	if cerr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("csv: close temp file: %w", cerr)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("csv: rename into place: %w", err)
	}
	return nil
}

func (s *Sink) Close() error { return nil }

func writeCSV(f *os.File, t *normalize.Table) error {
	w := csv.NewWriter(f)

	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	cells := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			cells[i] = cellText(v)
		}
		if err := w.Write(cells); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return nil
}

// cellText renders raw values, not display formatting: no digit grouping,
// no N/A sentinel. Nulls are empty cells.
func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(v)
	}
}

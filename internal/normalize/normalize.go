// Package normalize converts raw query-client records into fixed-column
// tables. Records coming back from the Materials Project API are maps whose
// values may be scalars, nested maps, or simply absent; requested fields may
// address nested values with dotted paths ("elasticity.K_VRH") and may still
// use pre-migration names that the current API serves flat. This package
// resolves all of that into rows aligned to one column set.
package normalize

import (
	"errors"
	"strings"
)

// ErrNoFields is returned when Flatten is called with an empty field list.
// There is no sensible zero-column table, so this is a caller contract
// violation rather than a degradable condition.
var ErrNoFields = errors.New("normalize: no fields requested")

// Record is one raw result entry from the query client. Values are scalars,
// nested map[string]any, or absent.
type Record map[string]any

// Aliases maps a legacy field spec (often dotted) to the flat field name the
// current API schema serves it under. Lookups fall back to the literal field
// spec when no alias matches.
type Aliases map[string]string

// Table is an ordered tabular result set. Every row has len(Columns)
// entries, positionally aligned to Columns. Column names keep the exact
// field specs the caller requested, dots included, so display output stays
// backward compatible.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of a column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Flatten converts records into a Table with one row per record and one
// column per requested field, in the requested order.
//
// Resolution per field:
//   - plain name: direct key lookup; absent -> nil.
//   - dotted "base.nested": look up base, then nested inside it; an absent
//     base, a non-map base value, or an absent nested key all -> nil.
//   - aliased field: the alias target (a flat key) is tried first; if the
//     record does not carry it, resolution falls back to the literal field.
//     This covers API migrations that flattened previously nested fields
//     while callers still request the legacy dotted path.
//
// Missing or malformed data never fails the call; it degrades to nil so
// partial datasets stay printable and exportable. The only error condition
// is an empty field list.
func Flatten(records []Record, fields []string, aliases Aliases) (*Table, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	cols := append([]string(nil), fields...)
	rows := make([][]any, 0, len(records))

	for _, rec := range records {
		row := make([]any, len(cols))
		for i, f := range cols {
			row[i] = Resolve(rec, f, aliases)
		}
		rows = append(rows, row)
	}

	return &Table{Columns: cols, Rows: rows}, nil
}

// Resolve looks up one field in a record, applying alias fallback and dotted
// path resolution. It never fails; unresolvable fields yield nil.
func Resolve(rec Record, field string, aliases Aliases) any {
	if rec == nil {
		return nil
	}

	if target, ok := aliases[field]; ok {
		if v, ok := rec[target]; ok {
			return scalarize(v)
		}
		// Alias target absent: the record may predate the migration and
		// still carry the nested form. Fall through to the literal spec.
	}

	return scalarize(lookupPath(rec, field))
}

// lookupPath resolves a plain or dotted field spec against a record.
// A single split is intentional: the API nests at most one level
// ("elasticity.K_VRH", "spacegroup.symbol").
func lookupPath(rec Record, field string) any {
	base, nested, dotted := strings.Cut(field, ".")
	if !dotted {
		return rec[field]
	}

	bv, ok := rec[base]
	if !ok {
		return nil
	}
	m, ok := bv.(map[string]any)
	if !ok {
		return nil
	}
	return m[nested]
}

// scalarize flattens string slices into a single joined cell; everything
// else passes through untouched.
func scalarize(v any) any {
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return nil
		}
		return strings.Join(t, ", ")

	case []any:
		if len(t) == 0 {
			return nil
		}
		ss := make([]string, 0, len(t))
		for _, it := range t {
			s, ok := it.(string)
			if !ok {
				return v // mixed types; keep original
			}
			ss = append(ss, s)
		}
		return strings.Join(ss, ", ")

	default:
		return v
	}
}

package export

import (
	"github.com/johnwroge/Materials-Research/internal/normalize"
)

// Kind is a dialect-neutral column affinity inferred from the data. Backends
// map kinds to their own type names.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindReal
)

// InferColumnKinds scans a table and picks an affinity per column: integer if
// every non-nil value is integral, real if every non-nil value is numeric,
// text otherwise. All-nil columns are text.
func InferColumnKinds(t *normalize.Table) []Kind {
	kinds := make([]Kind, len(t.Columns))

	for i := range t.Columns {
		sawValue := false
		allInt := true
		allNum := true

		for _, row := range t.Rows {
			v := DBValue(row[i])
			if v == nil {
				continue
			}
			sawValue = true
			switch v.(type) {
			case int, int64:
			case float64:
				allInt = false
			default:
				allInt = false
				allNum = false
			}
		}

		switch {
		case !sawValue || !allNum:
			kinds[i] = KindText
		case allInt:
			kinds[i] = KindInteger
		default:
			kinds[i] = KindReal
		}
	}

	return kinds
}

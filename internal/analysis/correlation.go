// Package analysis computes simple statistics over normalized tables.
package analysis

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/johnwroge/Materials-Research/internal/normalize"
)

// Correlation is the result of a pairwise property comparison.
type Correlation struct {
	X, Y    string
	R       float64 // Pearson coefficient
	Samples int     // rows where both columns held numbers
	Skipped int     // rows dropped for nulls or non-numeric values
}

// Pearson computes the Pearson correlation between two columns of t. Rows
// where either value is null or non-numeric are skipped, not errors; partial
// data is the normal case here.
//
// Errors:
//   - unknown column name.
//   - fewer than two usable sample pairs.
//   - zero variance in either column (coefficient undefined).
func Pearson(t *normalize.Table, x, y string) (Correlation, error) {
	xi := t.ColumnIndex(x)
	if xi < 0 {
		return Correlation{}, fmt.Errorf("analysis: unknown column %q", x)
	}
	yi := t.ColumnIndex(y)
	if yi < 0 {
		return Correlation{}, fmt.Errorf("analysis: unknown column %q", y)
	}

	var xs, ys []float64
	skipped := 0
	for _, row := range t.Rows {
		xv, xok := numeric(row[xi])
		yv, yok := numeric(row[yi])
		if !xok || !yok {
			skipped++
			continue
		}
		xs = append(xs, xv)
		ys = append(ys, yv)
	}

	n := len(xs)
	if n < 2 {
		return Correlation{}, fmt.Errorf("analysis: need at least 2 paired samples for %q vs %q, have %d", x, y, n)
	}

	mx := mean(xs)
	my := mean(ys)

	var cov, vx, vy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return Correlation{}, fmt.Errorf("analysis: zero variance in %q or %q", x, y)
	}

	return Correlation{
		X:       x,
		Y:       y,
		R:       cov / math.Sqrt(vx*vy),
		Samples: n,
		Skipped: skipped,
	}, nil
}

func mean(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

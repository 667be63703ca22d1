// Package tabular renders normalized tables as human-readable text.
package tabular

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/johnwroge/Materials-Research/internal/normalize"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NullCell is what a missing value renders as.
const NullCell = "N/A"

var printer = message.NewPrinter(language.English)

// Render writes t to w as an aligned text table, headers first, one line
// per row. Nil cells render as NullCell.
func Render(w io.Writer, t *normalize.Table) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Columns)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = FormatValue(v)
		}
		tw.Append(cells)
	}

	tw.Render()
}

// FormatValue converts a cell value to display text.
//
// Numbers are grouped and truncated to a sane precision for reading
// ("12,345.6789"); exports use the raw values, so this is display-only.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return NullCell

	case string:
		if t == "" {
			return NullCell
		}
		return t

	case bool:
		if t {
			return "Yes"
		}
		return "No"

	case float64:
		return formatFloat(t)

	case float32:
		return formatFloat(float64(t))

	case int:
		return printer.Sprint(number.Decimal(t))

	case int64:
		return printer.Sprint(number.Decimal(t))

	case json.Number:
		return formatNumber(t)

	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(4)))
}

// formatNumber keeps integer literals verbatim (material counts, years) and
// formats anything fractional like a float.
func formatNumber(n json.Number) string {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return printer.Sprint(number.Decimal(i))
		}
		return s
	}
	f, err := n.Float64()
	if err != nil {
		return s
	}
	return formatFloat(f)
}

// Count renders an integer with digit grouping for user-facing messages.
func Count(n int) string {
	return printer.Sprint(number.Decimal(n))
}

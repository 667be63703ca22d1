package main

import (
	"context"
	"fmt"

	"github.com/johnwroge/Materials-Research/internal/analysis"
	"github.com/johnwroge/Materials-Research/internal/normalize"
	"github.com/johnwroge/Materials-Research/internal/tabular"
)

func runTrend(ctx context.Context, args []string, d deps) int {
	fs, usage := newFlagSet("trend")

	var o commonOpts
	addCommonFlags(fs, &o)
	xField := fs.String("x", "", "first property (required)")
	yField := fs.String("y", "", "second property (required)")
	limit := fs.Int("limit", 50, "maximum number of materials to sample")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(d.Stderr, parseErr(err, usage))
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(d.Stderr, "trend: expected one comma-separated element list\n\n%s", usage.String())
		return 2
	}
	if *xField == "" || *yField == "" {
		fmt.Fprintf(d.Stderr, "trend: both -x and -y are required\n\n%s", usage.String())
		return 2
	}

	elements := splitCSVArg(fs.Arg(0))
	if len(elements) == 0 {
		fmt.Fprintln(d.Stderr, "trend: element list is empty")
		return 2
	}

	fields := []string{"material_id", *xField, *yField}
	if *xField == *yField {
		fields = []string{"material_id", *xField}
	}

	client, cfg, teardown, err := setup(ctx, d, o, "trend")
	if err != nil {
		fmt.Fprintln(d.Stderr, err)
		return 2
	}
	defer teardown()

	started := d.Now()
	records, err := client.Search(ctx, elementsCriteria(elements), fields, *limit)
	if err != nil {
		fmt.Fprintf(d.Stderr, "trend search failed: %v\n", err)
		return exitCodeFor(err)
	}

	tbl, err := normalize.Flatten(records, fields, normalize.DefaultAliases)
	if err != nil {
		fmt.Fprintf(d.Stderr, "trend: %v\n", err)
		return 2
	}

	c, err := analysis.Pearson(tbl, *xField, *yField)
	if err != nil {
		fmt.Fprintf(d.Stderr, "trend: %v\n", err)
		return 1
	}

	fmt.Fprintf(d.Stdout, "Correlation between %s and %s: %.4f\n", c.X, c.Y, c.R)
	fmt.Fprintf(d.Stdout, "Samples: %s (skipped %s with missing or non-numeric values)\n",
		tabular.Count(c.Samples), tabular.Count(c.Skipped))

	recordRun(ctx, d, cfg, "trend", fs.Arg(0), tbl.Len(), started)
	return 0
}

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/johnwroge/Materials-Research/internal/normalize"
	"github.com/johnwroge/Materials-Research/internal/tabular"
)

func runStable(ctx context.Context, args []string, d deps) int {
	fs, usage := newFlagSet("stable")

	var o commonOpts
	addCommonFlags(fs, &o)
	hull := fs.Float64("hull", 0.05, "maximum energy above hull (eV/atom)")
	bandGap := fs.String("band-gap", "", "minimum band gap in eV (empty = no constraint)")
	output := fs.String("output", "", "export destination (out.csv, sqlite:out.db, postgres://...)")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(d.Stderr, parseErr(err, usage))
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(d.Stderr, "stable: expected one comma-separated element list\n\n%s", usage.String())
		return 2
	}

	elements := splitCSVArg(fs.Arg(0))
	if len(elements) == 0 {
		fmt.Fprintln(d.Stderr, "stable: element list is empty")
		return 2
	}

	criteria := elementsCriteria(elements)
	criteria["energy_above_hull"] = map[string]any{"$lte": *hull}
	if *bandGap != "" {
		min, err := strconv.ParseFloat(*bandGap, 64)
		if err != nil {
			fmt.Fprintf(d.Stderr, "stable: invalid -band-gap %q: %v\n", *bandGap, err)
			return 2
		}
		criteria["band_gap"] = map[string]any{"$gte": min}
	}

	client, cfg, teardown, err := setup(ctx, d, o, "stable")
	if err != nil {
		fmt.Fprintln(d.Stderr, err)
		return 2
	}
	defer teardown()

	started := d.Now()
	records, err := client.Search(ctx, criteria, stableFields, 0)
	if err != nil {
		fmt.Fprintf(d.Stderr, "stable search failed: %v\n", err)
		return exitCodeFor(err)
	}

	tbl, err := normalize.Flatten(records, stableFields, normalize.DefaultAliases)
	if err != nil {
		fmt.Fprintf(d.Stderr, "stable: %v\n", err)
		return 2
	}

	fmt.Fprintf(d.Stdout, "Found %s stable materials containing %s:\n",
		tabular.Count(tbl.Len()), strings.Join(elements, ", "))
	if err := showAndExport(ctx, d, tbl, *output); err != nil {
		fmt.Fprintf(d.Stderr, "export failed: %v\n", err)
		return 1
	}

	recordRun(ctx, d, cfg, "stable", fs.Arg(0), tbl.Len(), started)
	return 0
}

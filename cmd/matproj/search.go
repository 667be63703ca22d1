package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnwroge/Materials-Research/internal/normalize"
	"github.com/johnwroge/Materials-Research/internal/tabular"
)

func runSearch(ctx context.Context, args []string, d deps) int {
	fs, usage := newFlagSet("search")

	var o commonOpts
	addCommonFlags(fs, &o)
	limit := fs.Int("limit", 10, "maximum number of results")
	fieldsCSV := fs.String("fields", "", "properties to retrieve (CSV, default built-in set)")
	output := fs.String("output", "", "export destination (out.csv, sqlite:out.db, postgres://...)")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(d.Stderr, parseErr(err, usage))
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(d.Stderr, "search: expected one comma-separated element list\n\n%s", usage.String())
		return 2
	}

	elements := splitCSVArg(fs.Arg(0))
	if len(elements) == 0 {
		fmt.Fprintln(d.Stderr, "search: element list is empty")
		return 2
	}

	fields := searchFields
	if *fieldsCSV != "" {
		fields = splitCSVArg(*fieldsCSV)
	}

	client, cfg, teardown, err := setup(ctx, d, o, "search")
	if err != nil {
		fmt.Fprintln(d.Stderr, err)
		return 2
	}
	defer teardown()

	started := d.Now()
	records, err := client.Search(ctx, elementsCriteria(elements), fields, *limit)
	if err != nil {
		fmt.Fprintf(d.Stderr, "search failed: %v\n", err)
		return exitCodeFor(err)
	}

	tbl, err := normalize.Flatten(records, fields, normalize.DefaultAliases)
	if err != nil {
		fmt.Fprintf(d.Stderr, "search: %v\n", err)
		return 2
	}

	fmt.Fprintf(d.Stdout, "Found %s materials containing %s:\n",
		tabular.Count(tbl.Len()), strings.Join(elements, ", "))
	if err := showAndExport(ctx, d, tbl, *output); err != nil {
		fmt.Fprintf(d.Stderr, "export failed: %v\n", err)
		return 1
	}

	recordRun(ctx, d, cfg, "search", fs.Arg(0), tbl.Len(), started)
	return 0
}

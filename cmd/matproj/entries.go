package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/johnwroge/Materials-Research/internal/normalize"
	"github.com/johnwroge/Materials-Research/internal/tabular"
)

func runEntries(ctx context.Context, args []string, d deps) int {
	fs, usage := newFlagSet("entries")

	var o commonOpts
	addCommonFlags(fs, &o)
	output := fs.String("output", "", "export destination (out.csv, sqlite:out.db, postgres://...)")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(d.Stderr, parseErr(err, usage))
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(d.Stderr, "entries: expected one comma-separated element list\n\n%s", usage.String())
		return 2
	}

	elements := splitCSVArg(fs.Arg(0))
	if len(elements) == 0 {
		fmt.Fprintln(d.Stderr, "entries: element list is empty")
		return 2
	}

	client, cfg, teardown, err := setup(ctx, d, o, "entries")
	if err != nil {
		fmt.Fprintln(d.Stderr, err)
		return 2
	}
	defer teardown()

	started := d.Now()
	entries, err := client.Entries(ctx, elements)
	if err != nil {
		fmt.Fprintf(d.Stderr, "entries failed: %v\n", err)
		return exitCodeFor(err)
	}

	// Lowest energy per atom first, the order a phase-diagram reader expects.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EnergyPerAtom < entries[j].EnergyPerAtom
	})

	tbl := &normalize.Table{
		Columns: []string{"material_id", "formula", "energy", "energy_per_atom", "composition"},
	}
	for _, e := range entries {
		tbl.Rows = append(tbl.Rows, []any{
			e.MaterialID, e.Formula, e.Energy, e.EnergyPerAtom, formatComposition(e.Composition),
		})
	}

	fmt.Fprintf(d.Stdout, "Found %s entries in the %s system:\n",
		tabular.Count(tbl.Len()), strings.Join(elements, "-"))
	if err := showAndExport(ctx, d, tbl, *output); err != nil {
		fmt.Fprintf(d.Stderr, "export failed: %v\n", err)
		return 1
	}

	recordRun(ctx, d, cfg, "entries", fs.Arg(0), tbl.Len(), started)
	return 0
}

// formatComposition renders a composition map deterministically
// ("Fe:4 Li:4 O:16 P:4").
func formatComposition(comp map[string]float64) string {
	if len(comp) == 0 {
		return ""
	}
	keys := make([]string, 0, len(comp))
	for k := range comp {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%g", k, comp[k]))
	}
	return strings.Join(parts, " ")
}

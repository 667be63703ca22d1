package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/johnwroge/Materials-Research/internal/normalize"
	"github.com/johnwroge/Materials-Research/internal/tabular"
)

func runSummary(ctx context.Context, args []string, d deps) int {
	fs, usage := newFlagSet("summary")

	var o commonOpts
	addCommonFlags(fs, &o)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(d.Stderr, parseErr(err, usage))
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(d.Stderr, "summary: expected one material id\n\n%s", usage.String())
		return 2
	}
	id := strings.TrimSpace(fs.Arg(0))

	client, cfg, teardown, err := setup(ctx, d, o, "summary")
	if err != nil {
		fmt.Fprintln(d.Stderr, err)
		return 2
	}
	defer teardown()

	started := d.Now()
	rec, err := client.GetByID(ctx, id)
	if err != nil {
		fmt.Fprintf(d.Stderr, "summary failed: %v\n", err)
		return exitCodeFor(err)
	}

	writeSummary(d.Stdout, id, rec)
	recordRun(ctx, d, cfg, "summary", id, 1, started)
	return 0
}

// writeSummary prints the sectioned per-material report. Every field goes
// through alias-aware resolution, so records from either schema generation
// render the same way.
func writeSummary(w io.Writer, id string, rec normalize.Record) {
	get := func(field string) string {
		return tabular.FormatValue(normalize.Resolve(rec, field, normalize.DefaultAliases))
	}

	rule := strings.Repeat("=", 50)
	thin := strings.Repeat("-", 50)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Material ID: %s\n", id)
	fmt.Fprintf(w, "Formula: %s\n", get("formula"))
	fmt.Fprintf(w, "Spacegroup: %s\n", get("spacegroup.symbol"))
	fmt.Fprintf(w, "Crystal System: %s\n", get("spacegroup.crystal_system"))
	fmt.Fprintln(w, thin)

	fmt.Fprintln(w, "Thermodynamic Properties:")
	fmt.Fprintf(w, "  Formation Energy per Atom: %s eV/atom\n", get("formation_energy_per_atom"))
	fmt.Fprintf(w, "  Energy Above Hull: %s eV/atom\n", get("energy_above_hull"))
	fmt.Fprintf(w, "  Density: %s g/cm3\n", get("density"))
	fmt.Fprintln(w, thin)

	fmt.Fprintln(w, "Electronic Properties:")
	fmt.Fprintf(w, "  Band Gap: %s eV\n", get("band_gap"))
	fmt.Fprintf(w, "  Is Metal: %s\n", get("is_metal"))
	fmt.Fprintln(w, thin)

	// Mechanical block only when any elastic data exists.
	k := normalize.Resolve(rec, "elasticity.K_VRH", normalize.DefaultAliases)
	g := normalize.Resolve(rec, "elasticity.G_VRH", normalize.DefaultAliases)
	p := normalize.Resolve(rec, "elasticity.poisson_ratio", normalize.DefaultAliases)
	if k != nil || g != nil || p != nil {
		fmt.Fprintln(w, "Mechanical Properties:")
		fmt.Fprintf(w, "  Bulk Modulus (K_VRH): %s GPa\n", tabular.FormatValue(k))
		fmt.Fprintf(w, "  Shear Modulus (G_VRH): %s GPa\n", tabular.FormatValue(g))
		fmt.Fprintf(w, "  Poisson Ratio: %s\n", tabular.FormatValue(p))
	}
	fmt.Fprintln(w, rule)
}

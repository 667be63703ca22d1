// Command matproj queries the Materials Project database, prints the results
// as tables, and optionally exports them to CSV or a database.
//
// Usage:
//
//	matproj <command> [flags] [args]
//
// Commands:
//
//	search   <elements>      materials containing all given elements
//	stable   <elements>      thermodynamically stable materials
//	compare  <material_ids>  side-by-side property comparison
//	summary  <material_id>   detailed report for one material
//	entries  <elements>      computed entries for a chemical system
//	trend    <elements>      correlation between two properties
//	history                  recent runs from the local journal
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/johnwroge/Materials-Research/internal/config"
	"github.com/johnwroge/Materials-Research/internal/journal"
	"github.com/johnwroge/Materials-Research/internal/mp"

	// register all export sinks with the factory; the destination string
	// decides which one runs.
	_ "github.com/johnwroge/Materials-Research/internal/export/all"
)

// main is intentionally small: it wires real dependencies and exits with a
// code.
func main() {
	code := run(context.Background(), os.Args[1:], deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewClient: func(cfg config.Config) querier {
			return mp.New(cfg)
		},
		OpenJournal: func(ctx context.Context, path string) (runJournal, error) {
			return journal.Open(ctx, path)
		},
		Now: time.Now,
	})
	os.Exit(code)
}

// run dispatches to a subcommand and returns an exit code.
//
// Exit codes:
//   - 0: success.
//   - 1: remote query or export failure.
//   - 2: configuration/usage error.
func run(ctx context.Context, args []string, d deps) int {
	if d.Stdout == nil {
		d.Stdout = io.Discard
	}
	if d.Stderr == nil {
		d.Stderr = io.Discard
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewClient == nil {
		fmt.Fprintln(d.Stderr, "internal error: NewClient is nil")
		return 2
	}

	if len(args) == 0 {
		fmt.Fprint(d.Stderr, usageText)
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "search":
		return runSearch(ctx, rest, d)
	case "stable":
		return runStable(ctx, rest, d)
	case "compare":
		return runCompare(ctx, rest, d)
	case "summary":
		return runSummary(ctx, rest, d)
	case "entries":
		return runEntries(ctx, rest, d)
	case "trend":
		return runTrend(ctx, rest, d)
	case "history":
		return runHistory(ctx, rest, d)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(d.Stdout, usageText)
		return 0
	default:
		fmt.Fprintf(d.Stderr, "unknown command %q\n\n%s", cmd, usageText)
		return 2
	}
}

const usageText = `Usage: matproj <command> [flags] [args]

Commands:
  search   <elements>      materials containing all given elements
  stable   <elements>      thermodynamically stable materials
  compare  <material_ids>  side-by-side property comparison
  summary  <material_id>   detailed report for one material
  entries  <elements>      computed entries for a chemical system
  trend    <elements>      correlation between two properties (-x, -y)
  history                  recent runs from the local journal

Elements and material ids are comma-separated (e.g. "Li,Fe,O").
Run "matproj <command> -h" for command flags.
`

// exitCodeFor maps an error to the command's exit code: remote and export
// failures are 1, everything else (bad flags, missing config) is 2.
func exitCodeFor(err error) int {
	var re *mp.RemoteError
	if errors.As(err, &re) {
		return 1
	}
	if errors.Is(err, mp.ErrNotFound) {
		return 1
	}
	return 2
}

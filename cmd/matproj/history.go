package main

import (
	"context"
	"fmt"
	"time"

	"github.com/johnwroge/Materials-Research/internal/config"
	"github.com/johnwroge/Materials-Research/internal/normalize"
	"github.com/johnwroge/Materials-Research/internal/tabular"
)

// runHistory lists recent runs from the local journal. It needs no API key;
// everything it reads is local.
func runHistory(ctx context.Context, args []string, d deps) int {
	fs, usage := newFlagSet("history")

	n := fs.Int("n", 20, "number of runs to show")
	dbPath := fs.String("db", "", "journal database path (default from environment)")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(d.Stderr, parseErr(err, usage))
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(d.Stderr, "history: unexpected arguments\n\n%s", usage.String())
		return 2
	}

	path := *dbPath
	if path == "" {
		path = config.DefaultJournalPath()
	}
	if path == "" || d.OpenJournal == nil {
		fmt.Fprintln(d.Stderr, "history: no journal configured")
		return 2
	}

	j, err := d.OpenJournal(ctx, path)
	if err != nil {
		fmt.Fprintf(d.Stderr, "history: %v\n", err)
		return 1
	}
	defer j.Close()

	runs, err := j.Recent(ctx, *n)
	if err != nil {
		fmt.Fprintf(d.Stderr, "history: %v\n", err)
		return 1
	}

	tbl := &normalize.Table{
		Columns: []string{"started_at", "command", "args", "rows", "duration"},
	}
	for _, r := range runs {
		tbl.Rows = append(tbl.Rows, []any{
			r.StartedAt.Local().Format(time.DateTime),
			r.Command,
			r.Args,
			r.Rows,
			r.Duration.Round(time.Millisecond).String(),
		})
	}

	tabular.Render(d.Stdout, tbl)
	return 0
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/johnwroge/Materials-Research/internal/config"
	"github.com/johnwroge/Materials-Research/internal/export"
	"github.com/johnwroge/Materials-Research/internal/journal"
	"github.com/johnwroge/Materials-Research/internal/metrics"
	"github.com/johnwroge/Materials-Research/internal/metrics/datadog"
	"github.com/johnwroge/Materials-Research/internal/mp"
	"github.com/johnwroge/Materials-Research/internal/normalize"
	"github.com/johnwroge/Materials-Research/internal/tabular"
)

// querier is the slice of the mp client the commands need; tests inject a
// fake.
type querier interface {
	Search(ctx context.Context, criteria map[string]any, properties []string, limit int) ([]normalize.Record, error)
	GetByID(ctx context.Context, id string) (normalize.Record, error)
	Entries(ctx context.Context, elements []string) ([]mp.Entry, error)
}

// runJournal is the slice of the journal the commands need.
type runJournal interface {
	Append(ctx context.Context, r journal.Run) error
	Recent(ctx context.Context, limit int) ([]journal.Run, error)
	Close() error
}

// deps are external seams for testability: unit tests inject a fake client
// and journal and capture stdout/stderr.
type deps struct {
	Stdout io.Writer
	Stderr io.Writer

	NewClient   func(cfg config.Config) querier
	OpenJournal func(ctx context.Context, path string) (runJournal, error)
	Now         func() time.Time
}

// commonOpts are the flags every query command shares.
type commonOpts struct {
	apiKey         string
	metricsBackend string
	ddTags         string
	metricsFlush   time.Duration
}

func addCommonFlags(fs *flag.FlagSet, o *commonOpts) {
	fs.StringVar(&o.apiKey, "api-key", "", "Materials Project API key (overrides environment and .env)")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "none", "metrics backend: none or datadog")
	fs.StringVar(&o.ddTags, "dd-tags", "", "extra Datadog tags CSV (e.g. env:prod,team:chem)")
	fs.DurationVar(&o.metricsFlush, "metrics-flush", time.Minute, "Datadog flush interval")
}

// newFlagSet builds a flag set that captures its usage text instead of
// writing to stdout, so callers decide where errors go.
func newFlagSet(name string) (*flag.FlagSet, *strings.Builder) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	usage := &strings.Builder{}
	fs.SetOutput(usage)
	fs.Usage = func() {
		fmt.Fprintf(usage, "Usage of matproj %s:\n", fs.Name())
		fs.PrintDefaults()
	}
	return fs, usage
}

// parseErr turns a flag.Parse failure into user-facing text: plain usage for
// -h, error plus usage otherwise.
func parseErr(err error, usage *strings.Builder) error {
	if errors.Is(err, flag.ErrHelp) {
		return errors.New(usage.String())
	}
	return fmt.Errorf("%v\n\n%s", err, usage.String())
}

// splitCSVArg splits a comma-separated positional argument, trimming blanks.
func splitCSVArg(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// setup resolves config, builds the client, and installs the metrics
// backend. The returned teardown flushes metrics; call it before exit.
func setup(ctx context.Context, d deps, o commonOpts, command string) (querier, config.Config, func(), error) {
	cfg, err := config.Load(o.apiKey)
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	teardown := func() { _ = metrics.Flush() }
	switch o.metricsBackend {
	case "", "none":
		// default no-op backend
	case "datadog":
		tags := append(datadog.ParseTagsCSV(o.ddTags), "tool:matproj")
		b, err := datadog.NewBackend(ctx, datadog.Options{
			JobName:    command,
			Tags:       tags,
			FlushEvery: o.metricsFlush,
		})
		if err != nil {
			fmt.Fprintf(d.Stderr, "metrics: datadog init failed: %v; continuing without metrics\n", err)
			break
		}
		metrics.SetBackend(b)
		teardown = func() {
			_ = metrics.Flush()
			_ = b.Close()
		}
	default:
		return nil, config.Config{}, nil, fmt.Errorf("unknown metrics backend %q", o.metricsBackend)
	}

	return d.NewClient(cfg), cfg, teardown, nil
}

// recordRun appends a journal entry for a completed query command. Journal
// problems are reported but never fail the command; the query already
// succeeded.
func recordRun(ctx context.Context, d deps, cfg config.Config, command, args string, rows int, started time.Time) {
	metrics.RecordResultRows(command, rows)

	if d.OpenJournal == nil || cfg.JournalPath == "" {
		return
	}
	j, err := d.OpenJournal(ctx, cfg.JournalPath)
	if err != nil {
		fmt.Fprintf(d.Stderr, "journal: %v\n", err)
		return
	}
	defer j.Close()

	err = j.Append(ctx, journal.Run{
		Command:   command,
		Args:      args,
		Rows:      rows,
		Duration:  d.Now().Sub(started),
		StartedAt: started,
	})
	if err != nil {
		fmt.Fprintf(d.Stderr, "journal: %v\n", err)
	}
}

// exportTable writes a table to the destination named by dest ("out.csv",
// "sqlite:out.db", "postgres://...").
func exportTable(ctx context.Context, d deps, tbl *normalize.Table, dest string) error {
	cfg, err := export.ParseDest(dest)
	if err != nil {
		return err
	}

	sink, err := export.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer sink.Close()

	if err := sink.Write(ctx, tbl); err != nil {
		return err
	}
	fmt.Fprintf(d.Stdout, "Data exported to %s\n", dest)
	return nil
}

// showAndExport renders a table and, when dest is non-empty, exports it.
// Export failures return exit code 1 semantics to the caller.
func showAndExport(ctx context.Context, d deps, tbl *normalize.Table, dest string) error {
	tabular.Render(d.Stdout, tbl)
	if dest == "" {
		return nil
	}
	return exportTable(ctx, d, tbl, dest)
}

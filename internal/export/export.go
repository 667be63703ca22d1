// Package export writes normalized tables to tabular sinks.
//
// Backends live in subpackages and register themselves with this package's
// factory from an init() function; importing internal/export/all pulls in
// every built-in backend. The only contract a sink relies on is the table
// invariant: a fixed column set, every row aligned to it.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/johnwroge/Materials-Research/internal/normalize"
)

// Config selects and parameterizes a sink.
type Config struct {
	Kind  string // "csv", "sqlite", "postgres", "mssql"
	Dest  string // file path or DSN, backend-specific
	Table string // target table name for database sinks; default "materials"
}

// Sink writes one table to a destination.
type Sink interface {
	// Write stores the table. Implementations create the destination
	// (file, table) if needed and may be called once per Sink.
	Write(ctx context.Context, t *normalize.Table) error

	// Close releases backend resources. Call once.
	Close() error
}

type factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a sink backend under a kind. Call from a backend
// package's init(). Registering a duplicate kind panics; ambiguous backend
// selection should fail at startup, not at export time.
func Register(kind string, f factory) {
	if kind == "" {
		panic("export: Register with empty kind")
	}
	if f == nil {
		panic("export: Register with nil factory")
	}

	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[kind]; dup {
		panic("export: duplicate Register for kind " + kind)
	}
	factories[kind] = f
}

// New constructs the sink for cfg.Kind.
func New(ctx context.Context, cfg Config) (Sink, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("export: unsupported sink kind %q", cfg.Kind)
	}
	if cfg.Table == "" {
		cfg.Table = "materials"
	}
	return f(ctx, cfg)
}

// ParseDest maps a user-supplied destination string to a Config.
//
// Accepted forms:
//   - "results.csv" (or any plain path)  -> csv
//   - "sqlite:out.db"                    -> sqlite
//   - "postgres://..." / "postgresql://" -> postgres
//   - "mssql:<dsn>" / "sqlserver://..."  -> mssql
func ParseDest(dest string) (Config, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return Config{}, fmt.Errorf("export: empty destination")
	}

	switch {
	case strings.HasPrefix(dest, "sqlite:"):
		return Config{Kind: "sqlite", Dest: strings.TrimPrefix(dest, "sqlite:")}, nil
	case strings.HasPrefix(dest, "postgres://") || strings.HasPrefix(dest, "postgresql://"):
		return Config{Kind: "postgres", Dest: dest}, nil
	case strings.HasPrefix(dest, "mssql:"):
		return Config{Kind: "mssql", Dest: strings.TrimPrefix(dest, "mssql:")}, nil
	case strings.HasPrefix(dest, "sqlserver://"):
		return Config{Kind: "mssql", Dest: dest}, nil
	default:
		return Config{Kind: "csv", Dest: dest}, nil
	}
}

// ColumnName converts a requested field spec into an identifier-safe column
// name: lowercased, dots and spaces become underscores
// ("elasticity.K_VRH" -> "elasticity_k_vrh").
func ColumnName(field string) string {
	s := strings.ToLower(strings.TrimSpace(field))
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// DBValue converts a cell into a value database drivers accept. json.Number
// becomes int64 when the literal is integral, float64 otherwise; unsupported
// composites fall back to their JSON text.
func DBValue(v any) any {
	switch t := v.(type) {
	case nil, string, bool, int, int64, float64:
		return t

	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()

	default:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
		return fmt.Sprint(t)
	}
}

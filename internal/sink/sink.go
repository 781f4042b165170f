// Package sink defines the output-agnostic persistence contract for scrambled
// datasets and a registry that maps output kinds ("csv", "parquet",
// "postgres", ...) to backend constructors.
//
// Backends live in subpackages and register themselves at init time via
// Register (and, for database backends, RegisterDDL). Callers obtain a Sink
// through New without importing any backend directly; importing sink/all pulls
// every built-in backend in.
package sink

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"scramble/internal/schema"
)

// Sink persists rows of an already-scrambled dataset. Implementations write
// the surrogate column names exactly as given; no further renaming or type
// mapping happens at this layer.
type Sink interface {
	// Write appends the given rows and returns the number of rows written.
	// Cell values are nil, int64, float64, bool, string or time.Time.
	Write(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs a backend statement, typically DDL issued by a bootstrapper.
	// File-based sinks return an error since they have no statement surface.
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying file handle or connection pool.
	Close()
}

// Config carries everything a backend constructor may need. File backends use
// Path; database backends use DSN and Table. Schema is the transformed schema
// of the dataset being written and drives DDL inference and column typing.
type Config struct {
	Kind       string
	Path       string
	DSN        string
	Table      string
	DateLayout string
	Schema     schema.Schema
}

// Factory constructs a Sink from a Config.
type Factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for the given output kind.
// It is typically called from backend packages' init() functions; re-register
// to override a backend in tests.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New looks up the factory for cfg.Kind and invokes it.
func New(ctx context.Context, cfg Config) (Sink, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported output.kind=%s", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns the registered output kinds, sorted. The returned slice
// is a snapshot copy; callers may mutate it freely.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

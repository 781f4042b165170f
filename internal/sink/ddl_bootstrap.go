package sink

import (
	"context"
	"fmt"
	"sync"
)

// DDLBootstrapper is a backend-specific function that:
//   - derives a table definition from the sink Config (transformed schema,
//     table name), and
//   - applies the appropriate DDL via Sink.Exec (typically CREATE TABLE).
//
// Database backends (postgres, mssql, sqlite, mysql) register their
// implementation for a given output kind at init time. File backends have no
// table to create and register nothing.
type DDLBootstrapper func(ctx context.Context, s Sink, cfg Config) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given output
// kind. It is typically called from backend packages' init() functions.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable locates the DDLBootstrapper for cfg.Kind and invokes it.
// Callers do not need to know which backend they are using; they simply pass
// the Config and the already-open Sink.
//
// If no DDL bootstrapper has been registered for the output kind, an error is
// returned.
func EnsureTable(ctx context.Context, cfg Config, s Sink) error {
	ddlMu.RLock()
	fn, ok := ddlFns[cfg.Kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for output.kind=%q", cfg.Kind)
	}
	return fn(ctx, s, cfg)
}

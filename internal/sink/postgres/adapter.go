package postgres

import (
	"context"
	"fmt"

	"scramble/internal/sink"
	"scramble/internal/sink/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedSink implements sink.Sink by delegating to the concrete *Repository
// while providing a Close method that calls the close function returned by
// NewRepository.
type wrappedSink struct {
	*Repository
	closeFn func()
}

// Ensure wrappedSink satisfies sink.Sink at compile time.
var _ sink.Sink = (*wrappedSink)(nil)

// Close implements sink.Sink.Close.
func (w *wrappedSink) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// Write implements sink.Sink.Write by delegating directly to the underlying
// *Repository. This wrapper exists to keep the adapter free to evolve
// independently of the concrete implementation's method set.
func (w *wrappedSink) Write(
	ctx context.Context,
	columns []string,
	rows [][]any,
) (int64, error) {
	return w.Repository.Write(ctx, columns, rows)
}

// init registers the "postgres" backend with the sink factory and a DDL
// bootstrapper for output.kind == "postgres". This keeps the wiring in one
// place and allows callers to remain backend-agnostic.
func init() {
	// Sink factory registration.
	sink.Register("postgres", func(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:   cfg.DSN,
			Table: cfg.Table,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedSink{Repository: r, closeFn: closeFn}, nil
	})

	// DDL bootstrap registration: derive the table definition from the
	// transformed schema and apply it via the generic Sink.Exec method.
	sink.RegisterDDL("postgres",
		func(ctx context.Context, s sink.Sink, cfg sink.Config) error {
			td, err := ddl.FromSchema(ddl.Postgres, cfg.Table, cfg.Schema)
			if err != nil {
				return fmt.Errorf("infer table definition: %w", err)
			}
			if err := ddl.EnsureTable(ctx, ddl.Postgres, s, td); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}

package mssql

import (
	"context"
	"fmt"

	"scramble/internal/sink"
	"scramble/internal/sink/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedSink adapts *mssql.Repository to the sink.Sink interface, adding a
// Close method that calls the cleanup function returned by NewRepository.
type wrappedSink struct {
	*Repository
	closeFn func()
}

// Close implements sink.Sink.Close.
func (w *wrappedSink) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// Ensure wrappedSink satisfies the interface at compile time.
var _ sink.Sink = (*wrappedSink)(nil)

func init() {
	sink.Register("mssql", func(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:   cfg.DSN,
			Table: cfg.Table,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedSink{Repository: r, closeFn: closeFn}, nil
	})

	// DDL bootstrap registration.
	sink.RegisterDDL("mssql",
		func(ctx context.Context, s sink.Sink, cfg sink.Config) error {
			td, err := ddl.FromSchema(ddl.MSSQL, cfg.Table, cfg.Schema)
			if err != nil {
				return fmt.Errorf("infer table definition: %w", err)
			}
			return ddl.EnsureTable(ctx, ddl.MSSQL, s, td)
		})
}

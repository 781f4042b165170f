package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"scramble/internal/schema"
	"scramble/internal/sink"
)

func testSchema() schema.Schema {
	return schema.Schema{Columns: []schema.Column{
		{OriginalName: "id", CurrentName: "column_1", Type: schema.Integer, Position: 0},
		{OriginalName: "ratio", CurrentName: "column_2", Type: schema.Float, Nullable: true, Position: 1},
		{OriginalName: "joined", CurrentName: "column_3", Type: schema.Date, Position: 2},
		{OriginalName: "active", CurrentName: "column_4", Type: schema.Boolean, Position: 3},
	}}
}

// TestEndToEnd_CreateWriteCount runs the full backend path against a real
// file-backed database: factory construction, DDL bootstrap from the
// transformed schema, a batched write, and reading the values back.
func TestEndToEnd_CreateWriteCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := sink.Config{
		Kind:   "sqlite",
		DSN:    filepath.Join(t.TempDir(), "scramble.db"),
		Table:  "scrambled",
		Schema: testSchema(),
	}

	s, err := sink.New(ctx, cfg)
	if err != nil {
		t.Fatalf("sink.New error: %v", err)
	}
	defer s.Close()

	if err := sink.EnsureTable(ctx, cfg, s); err != nil {
		t.Fatalf("EnsureTable error: %v", err)
	}

	cols := []string{"column_1", "column_2", "column_3", "column_4"}
	n, err := s.Write(ctx, cols, [][]any{
		{int64(1), 2.5, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), true},
		{int64(2), nil, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), false},
	})
	if err != nil || n != 2 {
		t.Fatalf("Write = (%d, %v), want (2, nil)", n, err)
	}

	db := s.(*wrappedSink).Repository.db

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scrambled").Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	// Dates are stored as ISO-8601 text.
	var joined string
	if err := db.QueryRowContext(ctx,
		"SELECT column_3 FROM scrambled WHERE column_1 = 1").Scan(&joined); err != nil {
		t.Fatalf("date query: %v", err)
	}
	if joined != "2024-05-17" {
		t.Fatalf("column_3 = %q, want 2024-05-17", joined)
	}

	// NULLs survive; booleans land as 0/1 integers.
	var ratio sql.NullFloat64
	var active int64
	if err := db.QueryRowContext(ctx,
		"SELECT column_2, column_4 FROM scrambled WHERE column_1 = 2").Scan(&ratio, &active); err != nil {
		t.Fatalf("null query: %v", err)
	}
	if ratio.Valid {
		t.Fatalf("column_2 = %v, want NULL", ratio)
	}
	if active != 0 {
		t.Fatalf("column_4 = %d, want 0", active)
	}
}

// TestWrite_RowWidthMismatch verifies that a bad row aborts the transaction
// and leaves nothing behind.
func TestWrite_RowWidthMismatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r, closeFn, err := NewRepository(ctx, Config{
		DSN:   filepath.Join(t.TempDir(), "bad.db"),
		Table: "t",
	})
	if err != nil {
		t.Fatalf("NewRepository error: %v", err)
	}
	defer closeFn()

	if err := r.Exec(ctx, "CREATE TABLE t (a INTEGER, b TEXT)"); err != nil {
		t.Fatalf("Exec error: %v", err)
	}

	_, err = r.Write(ctx, []string{"a", "b"}, [][]any{
		{int64(1), "x"},
		{int64(2)}, // short row
	})
	if err == nil {
		t.Fatalf("expected error for short row")
	}

	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0 after rollback", count)
	}
}

// TestNewRepository_Validation covers constructor input checks.
func TestNewRepository_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	if _, _, err := NewRepository(ctx, Config{Table: "t"}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
	if _, _, err := NewRepository(ctx, Config{DSN: "x.db"}); err == nil {
		t.Fatalf("expected error for empty table")
	}
}

// TestAdapterRegistrationAndClose stubs the constructor hook and verifies the
// factory wiring plus Close delegation. Not parallel: it swaps the package
// hook that concurrent tests reach through sink.New.
func TestAdapterRegistrationAndClose(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	var closed int32
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { atomic.AddInt32(&closed, 1) }, nil
	}

	s, err := sink.New(context.Background(), sink.Config{
		Kind:       "sqlite",
		DSN:        "file:scramble.db?cache=shared",
		Table:      "scrambled",
		DateLayout: "02.01.2006",
	})
	if err != nil {
		t.Fatalf("sink.New error: %v", err)
	}

	if gotCfg.DSN != "file:scramble.db?cache=shared" || gotCfg.Table != "scrambled" || gotCfg.DateLayout != "02.01.2006" {
		t.Fatalf("adapter mapped config = %+v", gotCfg)
	}

	s.Close()
	if atomic.LoadInt32(&closed) != 1 {
		t.Fatalf("Close() did not invoke closeFn")
	}
}

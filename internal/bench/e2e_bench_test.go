package bench

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"scramble/internal/catalog"
	"scramble/internal/dataset"
	"scramble/internal/executor"
	"scramble/internal/planner"
	"scramble/internal/schema"
	"scramble/internal/sink"
)

// BenchmarkEndToEnd exercises the hot path of the scramble pipeline in a
// simplified, in-memory setup.
//
// It focuses on:
//   - executor.Apply:    per-cell type conversion + column reordering
//   - sink.WriteBatches: batching semantics feeding a fake write function
//
// The goal is to approximate real-world throughput without involving I/O or
// actual database drivers.
// Run with:
//
//	go test -run=^$ -bench ^BenchmarkEndToEnd$ -cpuprofile cpu.out -memprofile mem.out -count=1
func BenchmarkEndToEnd(b *testing.B) {
	ctx := context.Background()

	ds := syntheticDataset(b.N)

	// Schema and plan are derived once per run in production, so they stay
	// outside the timed region. Sampling is capped the way a real run caps it.
	opts := schema.DefaultExtractOptions()
	opts.SampleLimit = 512
	sc, err := schema.Extract(ds, opts)
	if err != nil {
		b.Fatalf("extract: %v", err)
	}

	cat := catalog.New(catalog.Options{})
	seed, err := planner.NewSeed(42)
	if err != nil {
		b.Fatalf("seed: %v", err)
	}
	plan, err := planner.Plan(sc, seed, cat, planner.DatasetSampler(ds, 512), planner.Options{})
	if err != nil {
		b.Fatalf("plan: %v", err)
	}

	// Fake write function that just reports how many rows it would have
	// written. This isolates conversion and batch-building costs from I/O.
	writeFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return int64(len(rows)), nil
	}

	b.ResetTimer()
	res, err := executor.Apply(ctx, ds, sc, plan, cat, executor.Options{})
	if err != nil {
		b.Fatalf("apply: %v", err)
	}
	n, err := sink.WriteBatches(ctx, res.Dataset.Columns, res.Dataset.Rows, 4096, writeFn)
	b.StopTimer()

	if err != nil {
		b.Fatalf("WriteBatches: %v", err)
	}
	if n != int64(b.N) {
		b.Fatalf("wrote %d rows, want %d", n, b.N)
	}
}

// syntheticDataset builds n rows of realistic cells: an integer id, a float
// amount, a low-cardinality city, a boolean flag and an ISO date. Cells are
// raw strings, exactly as the CSV loader would deliver them.
func syntheticDataset(n int) *dataset.Dataset {
	cols := []string{"id", "amount", "city", "active", "joined"}
	cities := []string{"praha", "brno", "ostrava"}

	rows := make([][]any, n)
	for i := 0; i < n; i++ {
		rows[i] = []any{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%d.%02d", 40+i%60, i%100),
			cities[i%len(cities)],
			strconv.FormatBool(i%2 == 0),
			fmt.Sprintf("20%02d-%02d-%02d", 10+i%15, 1+i%12, 1+i%28),
		}
	}
	return dataset.New(cols, rows)
}

// Package executor applies a transform plan to a dataset. Application is
// all or nothing: a cell that cannot convert aborts the whole run, unless
// its column is nullable, in which case the cell becomes NULL and the
// injection is counted in the provenance record. The source dataset is
// never modified.
package executor

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"scramble/internal/catalog"
	"scramble/internal/dataset"
	"scramble/internal/planner"
	"scramble/internal/provenance"
	"scramble/internal/schema"
)

// ctxCheckEvery is how many rows a worker converts between context checks.
const ctxCheckEvery = 1024

// PlanExecutionError reports the first cell of a non-nullable column that
// could not be converted. No output is produced when it is returned.
type PlanExecutionError struct {
	Column string // original column name
	Row    int    // zero-based row index in the source dataset
	Err    error
}

func (e *PlanExecutionError) Error() string {
	return fmt.Sprintf("apply: column %q row %d: %v", e.Column, e.Row, e.Err)
}

func (e *PlanExecutionError) Unwrap() error { return e.Err }

// Options tune plan application. Workers <= 0 uses GOMAXPROCS. Because
// each worker owns a disjoint row range and every cell's destination is
// fixed by the plan, the worker count never changes the output.
type Options struct {
	Workers int
}

// Result carries the transformed dataset, its schema and the provenance
// record for one run.
type Result struct {
	Dataset    *dataset.Dataset
	Schema     schema.Schema
	Provenance *provenance.Record
}

// Apply replays plan over ds. Converters are compiled once per column,
// then workers convert disjoint row ranges and write each cell straight to
// its planned position.
func Apply(ctx context.Context, ds *dataset.Dataset, sc schema.Schema, plan *planner.TransformPlan, cat *catalog.Catalog, opts Options) (*Result, error) {
	if ds == nil {
		return nil, fmt.Errorf("apply: nil dataset")
	}
	if got, want := ds.NumCols(), sc.Len(); got != want {
		return nil, fmt.Errorf("apply: dataset has %d columns, schema has %d", got, want)
	}
	outSchema, err := plan.TransformedSchema(sc)
	if err != nil {
		return nil, err
	}

	n := sc.Len()
	convs := make([]catalog.ConvertFunc, n)
	nullable := make([]bool, n)
	surrogates := make([]string, n)
	for i, col := range sc.Columns {
		fn, err := cat.Converter(col.Type, plan.Types[col.OriginalName])
		if err != nil {
			return nil, fmt.Errorf("apply: column %q: %w", col.OriginalName, err)
		}
		convs[i] = fn
		nullable[i] = col.Nullable
		surrogates[i] = plan.Names[col.OriginalName]
	}
	newPos := plan.Order

	rows := make([][]any, ds.NumRows())
	injected := make([]atomic.Int64, n)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (len(rows) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(rows))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for r := lo; r < hi; r++ {
				if r%ctxCheckEvery == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				src := ds.Rows[r]
				dst := make([]any, n)
				for i := 0; i < n; i++ {
					v, err := convs[i](src[i])
					if err != nil {
						if !nullable[i] {
							return &PlanExecutionError{Column: sc.Columns[i].OriginalName, Row: r, Err: err}
						}
						injected[i].Add(1)
						v = nil
					}
					dst[newPos[i]] = v
				}
				rows[r] = dst
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rec := provenance.New(sc, outSchema, plan)
	rec.Rows = int64(len(rows))
	counts := make(map[string]int64)
	for i := range injected {
		if v := injected[i].Load(); v > 0 {
			counts[surrogates[i]] = v
		}
	}
	if len(counts) > 0 {
		rec.NullInjections = counts
	}

	return &Result{
		Dataset:    dataset.New(outSchema.ColumnNames(), rows),
		Schema:     outSchema,
		Provenance: rec,
	}, nil
}

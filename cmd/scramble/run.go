// Package main wires the scramble pipeline end-to-end: load the input
// dataset, extract its schema, derive the seeded plan, apply it, and write
// the result through the configured sink. This file keeps the CLI layer
// thin: it depends only on sink-agnostic interfaces and never imports
// database drivers or backend-specific packages directly.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"scramble/internal/catalog"
	"scramble/internal/config"
	"scramble/internal/dataset"
	"scramble/internal/executor"
	"scramble/internal/metrics"
	"scramble/internal/planner"
	"scramble/internal/schema"
	"scramble/internal/sink"
)

// runtimeConfig contains the resolved concurrency and batching configuration
// for a run. Values are derived from the pipeline spec with optional
// environment variable overrides (12-factor style).
type runtimeConfig struct {
	applyWorkers int
	batchSize    int
}

// newSinkFn is a function variable used to introduce a test seam.
// In production it points to the real sink factory; tests can override it.
var newSinkFn = sink.New

// runPipeline executes a full load → extract → plan → apply → write run.
//
// Application is all or nothing: any conversion failure on a non-nullable
// column aborts the run before the sink sees a single row. Each stage is
// timed and reported through the metrics backend, and the function ends with
// a key=value summary log covering the whole run.
func runPipeline(ctx context.Context, p config.Pipeline) error {
	rt := newRuntimeConfig(p)

	log.Printf("runtime: apply_workers=%d batch=%d", rt.applyWorkers, rt.batchSize)

	seed, err := planner.NewSeed(p.Scramble.Seed)
	if err != nil {
		return fmt.Errorf("resolve seed: %w", err)
	}

	t0 := time.Now()
	ds, err := loadDataset(p)
	metrics.RecordStep(p.Job, "load", err, time.Since(t0))
	if err != nil {
		return fmt.Errorf("load source: %w", err)
	}
	metrics.RecordRow(p.Job, "read", int64(ds.NumRows()))

	t0 = time.Now()
	sc, err := schema.Extract(ds, extractOptionsFromSpec(p))
	metrics.RecordStep(p.Job, "extract", err, time.Since(t0))
	if err != nil {
		return fmt.Errorf("extract schema: %w", err)
	}

	cat := catalog.New(catalogOptionsFromSpec(p))

	t0 = time.Now()
	plan, err := planner.Plan(sc, seed, cat, planner.DatasetSampler(ds, p.Scramble.SampleLimit), planner.Options{
		RenameStyle:  p.Scramble.Rename.Style,
		RenamePrefix: p.Scramble.Rename.Prefix,
	})
	metrics.RecordStep(p.Job, "plan", err, time.Since(t0))
	if err != nil {
		return fmt.Errorf("derive plan: %w", err)
	}
	log.Printf("plan: seed=%s digest=%s columns=%d", seed, plan.Fingerprint(), sc.Len())

	t0 = time.Now()
	res, err := executor.Apply(ctx, ds, sc, plan, cat, executor.Options{Workers: rt.applyWorkers})
	metrics.RecordStep(p.Job, "apply", err, time.Since(t0))
	if err != nil {
		return fmt.Errorf("apply plan: %w", err)
	}

	t0 = time.Now()
	written, batches, err := writeOutput(ctx, p, rt, res)
	metrics.RecordStep(p.Job, "write", err, time.Since(t0))
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	metrics.RecordRow(p.Job, "written", written)
	metrics.RecordBatches(p.Job, batches)

	if p.Output.ProvenancePath != "" {
		t0 = time.Now()
		err = res.Provenance.WriteFile(p.Output.ProvenancePath)
		metrics.RecordStep(p.Job, "provenance", err, time.Since(t0))
		if err != nil {
			return fmt.Errorf("write provenance: %w", err)
		}
		log.Printf("provenance: path=%s run_id=%s", p.Output.ProvenancePath, res.Provenance.RunID)
	}

	var nullInjected int64
	for column, n := range res.Provenance.NullInjections {
		nullInjected += n
		metrics.RecordNullInjections(p.Job, column, n)
	}
	metrics.RecordRow(p.Job, "null_injected", nullInjected)

	log.Printf(
		"summary: rows=%d columns=%d written=%d batches=%d null_injected=%d seed=%s",
		ds.NumRows(), sc.Len(), written, batches, nullInjected, seed,
	)

	return nil
}

// loadDataset reads the source into memory. Only local files are supported;
// the whole dataset must be resident anyway for sampling and the all-or-
// nothing apply.
func loadDataset(p config.Pipeline) (*dataset.Dataset, error) {
	if p.Source.Kind != "file" {
		return nil, fmt.Errorf("unsupported source.kind=%s", p.Source.Kind)
	}
	switch p.Parser.Kind {
	case "csv":
		return dataset.LoadCSV(p.Source.File.Path, csvOptionsFromSpec(p))
	default:
		return nil, fmt.Errorf("unsupported parser.kind=%s", p.Parser.Kind)
	}
}

// writeOutput pushes the transformed dataset through the configured sink in
// batches, optionally creating the destination table first. It reports rows
// written and batches flushed.
func writeOutput(ctx context.Context, p config.Pipeline, rt runtimeConfig, res *executor.Result) (written, batches int64, err error) {
	cfg := sinkConfigFromSpec(p, res.Schema)

	s, err := newSinkFn(ctx, cfg)
	if err != nil {
		return 0, 0, fmt.Errorf("init sink: %w", err)
	}
	defer s.Close()

	if p.Output.DB.AutoCreateTable {
		if err := sink.EnsureTable(ctx, cfg, s); err != nil {
			return 0, 0, fmt.Errorf("apply DDL: %w", err)
		}
	}

	countingWrite := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		n, werr := s.Write(ctx, columns, rows)
		if werr == nil {
			batches++
		}
		return n, werr
	}

	written, err = sink.WriteBatches(ctx, res.Dataset.Columns, res.Dataset.Rows, rt.batchSize, countingWrite)
	return written, batches, err
}

// newRuntimeConfig resolves the runtime configuration for a run using the
// pipeline spec and environment-variable fallbacks.
func newRuntimeConfig(p config.Pipeline) runtimeConfig {
	return runtimeConfig{
		applyWorkers: pickInt(p.Runtime.ApplyWorkers, getenvInt("SCRAMBLE_APPLY_WORKERS", 0)), // 0 → one per CPU
		batchSize:    pickInt(p.Runtime.BatchSize, getenvInt("SCRAMBLE_BATCH_SIZE", 5000)),
	}
}

// dateLayoutFromSpec returns the run's date layout, defaulting to ISO.
func dateLayoutFromSpec(p config.Pipeline) string {
	if p.Scramble.DateLayout != "" {
		return p.Scramble.DateLayout
	}
	return dataset.DefaultCSVOptions().DateLayout
}

// csvOptionsFromSpec maps parser options onto the CSV reader configuration.
func csvOptionsFromSpec(p config.Pipeline) dataset.CSVOptions {
	o := dataset.DefaultCSVOptions()
	o.HasHeader = p.Parser.Options.Bool("has_header", o.HasHeader)
	o.Comma = p.Parser.Options.Rune("comma", o.Comma)
	o.TrimSpace = p.Parser.Options.Bool("trim_space", o.TrimSpace)
	o.LazyQuotes = p.Parser.Options.Bool("lazy_quotes", o.LazyQuotes)
	o.DateLayout = dateLayoutFromSpec(p)
	return o
}

// extractOptionsFromSpec maps scramble and parser settings onto schema
// extraction options. An explicit parser date_layouts list replaces the
// defaults; otherwise a configured date layout is tried first.
func extractOptionsFromSpec(p config.Pipeline) schema.ExtractOptions {
	o := schema.DefaultExtractOptions()
	o.SampleLimit = p.Scramble.SampleLimit
	if p.Scramble.CardinalityThreshold > 0 {
		o.CardinalityThreshold = p.Scramble.CardinalityThreshold
	}
	if layouts := p.Parser.Options.StringSlice("date_layouts"); len(layouts) > 0 {
		o.DateLayouts = layouts
	} else if p.Scramble.DateLayout != "" {
		o.DateLayouts = prependLayout(o.DateLayouts, p.Scramble.DateLayout)
	}
	if len(p.Scramble.Truthy) > 0 {
		o.Truthy = p.Scramble.Truthy
	}
	if len(p.Scramble.Falsy) > 0 {
		o.Falsy = p.Scramble.Falsy
	}
	return o
}

// catalogOptionsFromSpec maps the scramble settings onto conversion rules.
func catalogOptionsFromSpec(p config.Pipeline) catalog.Options {
	o := catalog.DefaultOptions()
	if p.Scramble.CardinalityThreshold > 0 {
		o.CardinalityThreshold = p.Scramble.CardinalityThreshold
	}
	if p.Scramble.NarrowingEpsilon > 0 {
		o.NarrowingEpsilon = p.Scramble.NarrowingEpsilon
	}
	o.DateLayout = dateLayoutFromSpec(p)
	if len(p.Scramble.Truthy) > 0 {
		o.Truthy = p.Scramble.Truthy
	}
	if len(p.Scramble.Falsy) > 0 {
		o.Falsy = p.Scramble.Falsy
	}
	return o
}

// sinkConfigFromSpec builds the sink configuration for the transformed
// schema. File sinks use Path, database sinks use DSN and Table.
func sinkConfigFromSpec(p config.Pipeline, sc schema.Schema) sink.Config {
	return sink.Config{
		Kind:       p.Output.Kind,
		Path:       p.Output.File.Path,
		DSN:        p.Output.DB.DSN,
		Table:      p.Output.DB.Table,
		DateLayout: dateLayoutFromSpec(p),
		Schema:     sc,
	}
}

// prependLayout puts layout first unless it is already present.
func prependLayout(layouts []string, layout string) []string {
	for _, l := range layouts {
		if l == layout {
			return layouts
		}
	}
	return append([]string{layout}, layouts...)
}

// getenvInt reads an int from environment, returning def when unset/invalid.
func getenvInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// pickInt chooses the first positive value 'a', otherwise returns 'b'.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}

// Package csvfile provides a CSV file sink.
//
// The target file is created eagerly so path problems surface before any rows
// are scrambled; the header record is written on the first Write so it always
// carries the column order the plan actually produced.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"scramble/internal/dataset"
	"scramble/internal/sink"
)

// Writer writes scrambled rows to a single CSV file with a header record.
type Writer struct {
	f           *os.File
	w           *csv.Writer
	dateLayout  string
	wroteHeader bool
}

// Ensure Writer satisfies sink.Sink at compile time.
var _ sink.Sink = (*Writer)(nil)

// NewWriter creates (or truncates) the file at path. Parent directories are
// created as needed.
func NewWriter(path, dateLayout string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("csv sink: path must not be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("csv sink: create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv sink: %w", err)
	}
	if dateLayout == "" {
		dateLayout = dataset.DefaultCSVOptions().DateLayout
	}
	return &Writer{f: f, w: csv.NewWriter(f), dateLayout: dateLayout}, nil
}

// Write appends rows, emitting the header record before the first batch.
// NULL cells render as empty fields, matching what ReadCSV parses back as nil.
func (s *Writer) Write(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !s.wroteHeader {
		if err := s.w.Write(columns); err != nil {
			return 0, err
		}
		s.wroteHeader = true
	}

	rec := make([]string, len(columns))
	var written int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return written, fmt.Errorf("csv sink: row has %d cells, want %d", len(row), len(columns))
		}
		for i, v := range row {
			rec[i] = dataset.FormatCell(v, s.dateLayout)
		}
		if err := s.w.Write(rec); err != nil {
			return written, err
		}
		written++
	}

	s.w.Flush()
	return written, s.w.Error()
}

// Exec implements sink.Sink. CSV files have no statement surface.
func (s *Writer) Exec(ctx context.Context, sql string) error {
	return fmt.Errorf("csv sink: Exec is not supported")
}

// Close flushes buffered records and closes the file.
func (s *Writer) Close() {
	s.w.Flush()
	_ = s.f.Close()
}

// init registers the "csv" output kind with the sink factory.
func init() {
	sink.Register("csv", func(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
		return NewWriter(cfg.Path, cfg.DateLayout)
	})
}

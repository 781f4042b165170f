package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVOptions configures CSV reading and writing. The zero value is not
// useful; start from DefaultCSVOptions and override.
type CSVOptions struct {
	// HasHeader indicates the first record carries column names. When false,
	// columns are named positionally: col_0, col_1, ...
	HasHeader bool
	// Comma is the field delimiter.
	Comma rune
	// TrimSpace trims surrounding whitespace from every field before the
	// empty-means-NULL check.
	TrimSpace bool
	// LazyQuotes relaxes quote handling for sloppy producers.
	LazyQuotes bool
	// DateLayout is the layout used to render time.Time cells on write.
	DateLayout string
}

// DefaultCSVOptions returns the options used when a pipeline does not
// override them.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		HasHeader:  true,
		Comma:      ',',
		TrimSpace:  true,
		DateLayout: "2006-01-02",
	}
}

// ReadCSV parses CSV data into a Dataset. All cells are loaded as string or
// nil; typed cells come later from schema inference plus conversion, never
// from the file itself.
//
// Unlike sampling-oriented readers this one is strict: a row whose field
// count differs from the header is an error, not a skip. Scrambling a file
// that silently lost rows would produce misleading output.
func ReadCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.LazyQuotes = opts.LazyQuotes
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	first, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	first = stripUTF8BOM(first)

	var columns []string
	var rows [][]any

	if opts.HasHeader {
		columns = make([]string, len(first))
		for i, h := range first {
			if opts.TrimSpace {
				h = strings.TrimSpace(h)
			}
			columns[i] = h
		}
	} else {
		columns = make([]string, len(first))
		for i := range first {
			columns[i] = fmt.Sprintf("col_%d", i)
		}
		rows = append(rows, toCells(first, opts))
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("csv: line %d: %d fields, want %d", line, len(rec), len(columns))
		}
		rows = append(rows, toCells(rec, opts))
	}

	return &Dataset{Columns: columns, Rows: rows}, nil
}

// LoadCSV reads a CSV file from disk.
func LoadCSV(path string, opts CSVOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// WriteCSV serializes the dataset: one header record with the column names,
// then one record per row with cells rendered via FormatCell. NULL cells
// render as empty fields.
func WriteCSV(w io.Writer, d *Dataset, opts CSVOptions) error {
	cw := csv.NewWriter(w)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}

	if err := cw.Write(d.Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	rec := make([]string, len(d.Columns))
	for i, row := range d.Rows {
		for j, v := range row {
			rec[j] = FormatCell(v, opts.DateLayout)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csv: write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the dataset to path, creating or truncating the file.
func SaveCSV(path string, d *Dataset, opts CSVOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create %s: %w", path, err)
	}
	if err := WriteCSV(f, d, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// toCells converts a raw CSV record into typed cells: empty fields become
// nil, everything else stays a string.
func toCells(rec []string, opts CSVOptions) []any {
	cells := make([]any, len(rec))
	for i, s := range rec {
		if opts.TrimSpace {
			s = strings.TrimSpace(s)
		}
		if s == "" {
			cells[i] = nil
			continue
		}
		cells[i] = s
	}
	return cells
}

// stripUTF8BOM removes a UTF-8 BOM from the first field if present.
func stripUTF8BOM(rec []string) []string {
	if len(rec) == 0 {
		return rec
	}
	rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
	return rec
}

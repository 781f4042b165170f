// Package parquet provides a Parquet file sink built on parquet-go's JSON
// writer. Each row is marshaled to a JSON object keyed by surrogate column
// name and written against a schema derived from the transformed column tags.
package parquet

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	pq "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"scramble/internal/schema"
	"scramble/internal/sink"
)

const (
	writerParallelism = 4
	defaultDateLayout = "2006-01-02"
)

// Writer writes scrambled rows to a single SNAPPY-compressed Parquet file.
type Writer struct {
	f          *os.File
	pw         *writer.JSONWriter
	dateLayout string
}

// Ensure Writer satisfies sink.Sink at compile time.
var _ sink.Sink = (*Writer)(nil)

// NewWriter creates the file at path and a JSON-schema parquet writer shaped
// by the transformed schema. Parent directories are created as needed.
func NewWriter(path string, sc schema.Schema, dateLayout string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("parquet sink: path must not be empty")
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("parquet sink: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("parquet sink: create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("parquet sink: %w", err)
	}

	pfw := writerfile.NewWriterFile(f)
	pw, err := writer.NewJSONWriter(buildSchema(sc), pfw, writerParallelism)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("parquet sink: %w", err)
	}
	pw.CompressionType = pq.CompressionCodec_SNAPPY

	if dateLayout == "" {
		dateLayout = defaultDateLayout
	}
	return &Writer{f: f, pw: pw, dateLayout: dateLayout}, nil
}

// Write appends rows. The JSON writer requires each row as a marshaled JSON
// string; passing maps directly makes v1.6.2 fail its internal string
// assertion.
func (s *Writer) Write(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	obj := make(map[string]any, len(columns))
	var written int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return written, fmt.Errorf("parquet sink: row has %d cells, want %d", len(row), len(columns))
		}
		for i, v := range row {
			switch tv := v.(type) {
			case time.Time:
				obj[columns[i]] = tv.Format(s.dateLayout)
			default:
				obj[columns[i]] = v
			}
		}
		b, err := json.Marshal(obj)
		if err != nil {
			return written, fmt.Errorf("parquet sink: %w", err)
		}
		if err := s.pw.Write(string(b)); err != nil {
			return written, fmt.Errorf("parquet sink: %w", err)
		}
		written++
	}
	return written, nil
}

// Exec implements sink.Sink. Parquet files have no statement surface.
func (s *Writer) Exec(ctx context.Context, sql string) error {
	return fmt.Errorf("parquet sink: Exec is not supported")
}

// Close finalizes the file footer and closes the file. A footer error leaves
// an unreadable file, so it is logged rather than silently dropped.
func (s *Writer) Close() {
	if err := s.pw.WriteStop(); err != nil {
		log.Printf("parquet sink: finalize: %v", err)
	}
	_ = s.f.Close()
}

// buildSchema renders the parquet-go JSON schema for the transformed columns.
// Nullable columns become OPTIONAL fields; non-nullable columns REQUIRED, so a
// null that slips past conversion fails loudly instead of writing a hole.
func buildSchema(sc schema.Schema) string {
	fields := make([]map[string]string, 0, sc.Len())
	for _, c := range sc.Columns {
		rep := "REQUIRED"
		if c.Nullable {
			rep = "OPTIONAL"
		}
		fields = append(fields, map[string]string{
			"Tag": fmt.Sprintf("name=%s, %s, repetitiontype=%s", c.CurrentName, physicalType(c.Type), rep),
		})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": fields,
	}
	b, _ := json.Marshal(out)
	return string(b)
}

// physicalType maps a column tag to the parquet tag fragment carrying the
// physical (and, for text, converted) type.
func physicalType(tag schema.TypeTag) string {
	switch tag {
	case schema.Integer:
		return "type=INT64"
	case schema.Float:
		return "type=DOUBLE"
	case schema.Boolean:
		return "type=BOOLEAN"
	default:
		// String, Date and Categorical are stored as UTF-8 text.
		return "type=BYTE_ARRAY, convertedtype=UTF8"
	}
}

// init registers the "parquet" output kind with the sink factory.
func init() {
	sink.Register("parquet", func(ctx context.Context, cfg sink.Config) (sink.Sink, error) {
		return NewWriter(cfg.Path, cfg.Schema, cfg.DateLayout)
	})
}

// Package config defines the canonical, JSON-serializable configuration model
// for the scrambler. It is intentionally small, explicit, and dependency-free
// so that run files can be loaded from disk (or other sources) and passed
// through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in run files
//     under configs/*.json.
//  3. Minimalism: No third-party config libraries; decoding is performed by the
//     standard library, with a light Options helper for typed access.
//
// Example (trimmed):
//
//	{
//	  "job":      "payroll-demo",
//	  "source":   { "kind": "file", "file": { "path": "path/to.csv" } },
//	  "parser":   { "kind": "csv", "options": { "has_header": true } },
//	  "scramble": { "seed": 42, "rename": { "style": "pool" } },
//	  "output":   { "kind": "postgres", "db": { "dsn": "...", "table": "public.t" } }
//	}
package config

import "encoding/json"

// Pipeline describes one full scramble run in JSON. It is the top-level
// object decoded from a run file (e.g., configs/*.json).
type Pipeline struct {
	// Job names the run for logs and metrics labeling.
	Job string `json:"job"`

	// Source describes where input data comes from (e.g., local file).
	Source Source `json:"source"`

	// Parser configures how raw bytes are turned into a dataset (e.g., CSV).
	Parser Parser `json:"parser"`

	// Scramble holds the randomization knobs: the seed, the conversion
	// limits and the rename policy.
	Scramble Scramble `json:"scramble"`

	// Output describes where the scrambled dataset is written.
	Output  Output        `json:"output"`
	Runtime RuntimeConfig `json:"runtime"`
}

// RuntimeConfig controls concurrency and sink batching.
type RuntimeConfig struct {
	// ApplyWorkers bounds the goroutines converting rows. Zero or negative
	// means one worker per CPU.
	ApplyWorkers int `json:"apply_workers"`

	// BatchSize is the row count per sink write.
	BatchSize int `json:"batch_size"`
}

// Source identifies the data source. Additional kinds can be added over time.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`
}

// Parser selects how to parse the raw source into rows and columns.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV, typical keys include:
	//   has_header (bool), comma (string), trim_space (bool),
	//   lazy_quotes (bool), date_layouts ([]string)
	Options Options `json:"options"`
}

// Scramble configures the randomization itself. The zero value is usable:
// seed 0, threshold 50, epsilon 0, pool renaming.
type Scramble struct {
	// Seed drives every random decision of the run. It may be a JSON
	// number or a string; both canonicalize to the same text, so 42 and
	// "42" produce the same plan.
	Seed any `json:"seed"`

	// CardinalityThreshold bounds the distinct values a column may hold
	// and still convert to categorical. Zero means the default of 50.
	CardinalityThreshold int `json:"cardinality_threshold"`

	// NarrowingEpsilon is the largest fractional part a float cell may
	// carry and still round into an integer column. The default is 0:
	// only whole values narrow.
	NarrowingEpsilon float64 `json:"narrowing_epsilon"`

	// SampleLimit caps how many rows per column feed legality decisions.
	// Zero or negative scans whole columns.
	SampleLimit int `json:"sample_limit"`

	// Rename selects the surrogate naming policy.
	Rename Rename `json:"rename"`

	// DateLayout is the Go layout used to parse and format date cells.
	// Empty means ISO (2006-01-02).
	DateLayout string `json:"date_layout"`

	// Truthy and Falsy extend the boolean vocabularies used when parsing
	// string cells. Empty slices keep the defaults.
	Truthy []string `json:"truthy"`
	Falsy  []string `json:"falsy"`
}

// Rename selects how surrogate column names are generated.
type Rename struct {
	// Style is "pool" (shuffled prefix_N names, the default) or "hash"
	// (stable per-column hashes).
	Style string `json:"style"`

	// Prefix replaces the default "column" prefix.
	Prefix string `json:"prefix"`
}

// Output selects the sink used to persist the scrambled dataset.
type Output struct {
	// Kind selects the sink implementation: "csv", "parquet", "postgres",
	// "sqlite", "mssql" or "mysql".
	Kind string `json:"kind"`

	// File carries options for the file-based sinks (csv, parquet).
	File OutputFile `json:"file"`

	// DB carries options for the database sinks.
	DB DBConfig `json:"db"`

	// ProvenancePath is where the run's provenance record is written.
	// Empty skips persistence.
	ProvenancePath string `json:"provenance_path"`
}

// OutputFile holds configuration for file-based sinks.
type OutputFile struct {
	// Path is the local filesystem path of the output file.
	Path string `json:"path"`
}

// DBConfig configures the database sinks.
type DBConfig struct {
	// DSN is the backend connection string (e.g., postgresql://...).
	DSN string `json:"dsn"`

	// Table is the destination table name, optionally schema-qualified
	// (e.g., "public.my_table").
	Table string `json:"table"`

	// AutoCreateTable creates the destination table from the scrambled
	// schema before writing.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
//
// Options is used for parser-specific configuration where the shape varies by
// implementation.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
// If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character parser settings such as
// a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringSlice returns a []string for key when the value is an array of strings
// (or an array of interface values containing strings). Returns nil when the
// key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key (which may itself be a nested
// map[string]any, []any, or primitive). This is useful for retrieving nested
// configuration blocks that will be unmarshaled into a typed struct by the
// caller.
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "options"
// object in JSON decodes to a non-nil, empty Options map. This simplifies call
// sites by removing the need to nil-check Options values.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

package schema

import (
	"strconv"
	"strings"
	"time"

	"scramble/internal/dataset"
)

// ExtractOptions tunes schema extraction. The zero value is not useful;
// start from DefaultExtractOptions.
type ExtractOptions struct {
	// SampleLimit caps how many rows feed type inference and the uniqueness
	// check. 0 scans the whole column.
	SampleLimit int

	// CardinalityThreshold is the distinct-value count below which an
	// otherwise textual column is tagged categorical. 0 disables categorical
	// inference.
	CardinalityThreshold int

	// DateLayouts are the layouts a value must match for date inference.
	DateLayouts []string

	// Truthy and Falsy are the accepted boolean vocabularies, compared
	// case-insensitively.
	Truthy []string
	Falsy  []string
}

// DefaultExtractOptions returns the extraction defaults: full scan,
// categorical threshold 50, ISO and dotted European date layouts, and the
// 1/t/true/yes/y vocabulary.
//
// The layout list must stay within what catalog.Options can parse back, or a
// column inferred as date here would fail its own identity conversion later.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		CardinalityThreshold: 50,
		DateLayouts:          []string{"2006-01-02", "02.01.2006"},
		Truthy:               []string{"1", "t", "true", "yes", "y"},
		Falsy:                []string{"0", "f", "false", "no", "n"},
	}
}

// Extract builds a Schema from the dataset's columns and sampled values.
//
// Column names must be non-empty and unique; violations return a
// *SchemaError. Types are inferred per column with the narrowing heuristic:
// every non-null sampled value must satisfy a type for the column to get it.
// Probe order is integer, boolean, float, date; textual columns whose
// distinct count is below the cardinality threshold become categorical,
// everything else is string.
//
// Extract never mutates the dataset.
func Extract(ds *dataset.Dataset, opts ExtractOptions) (Schema, error) {
	if ds == nil || len(ds.Columns) == 0 {
		return Schema{}, &SchemaError{Reason: "dataset has no columns"}
	}

	seen := make(map[string]struct{}, len(ds.Columns))
	for _, name := range ds.Columns {
		if strings.TrimSpace(name) == "" {
			return Schema{}, &SchemaError{Reason: "empty column name"}
		}
		if _, dup := seen[name]; dup {
			return Schema{}, &SchemaError{Reason: "duplicate column name", Column: name}
		}
		seen[name] = struct{}{}
	}

	complete := opts.SampleLimit <= 0 || ds.NumRows() <= opts.SampleLimit

	cols := make([]Column, len(ds.Columns))
	for i, name := range ds.Columns {
		sample := ds.Sample(i, opts.SampleLimit)
		tag, nullable, unique := inferColumn(sample, opts)
		cols[i] = Column{
			OriginalName: name,
			CurrentName:  name,
			Type:         tag,
			Nullable:     nullable,
			Unique:       unique && complete,
			Position:     i,
		}
	}

	return Schema{Columns: cols}, nil
}

// inferColumn inspects sampled cells and returns the narrowest type every
// non-null value satisfies, whether any NULL was observed, and whether the
// non-null values were pairwise distinct.
func inferColumn(sample []any, opts ExtractOptions) (TypeTag, bool, bool) {
	nonNull := make([]any, 0, len(sample))
	for _, v := range sample {
		if IsNull(v) {
			continue
		}
		nonNull = append(nonNull, v)
	}
	nullable := len(nonNull) < len(sample)

	if len(nonNull) == 0 {
		return String, nullable, false
	}

	distinct := make(map[string]struct{}, len(nonNull))
	unique := true
	for _, v := range nonNull {
		key := dataset.FormatCell(v, "")
		if _, dup := distinct[key]; dup {
			unique = false
		}
		distinct[key] = struct{}{}
	}

	truthy := lowerSet(opts.Truthy)
	falsy := lowerSet(opts.Falsy)

	switch {
	case allCells(nonNull, probeInteger):
		return Integer, nullable, unique
	case allCells(nonNull, func(v any) bool { return probeBoolean(v, truthy, falsy) }):
		return Boolean, nullable, unique
	case allCells(nonNull, probeFloat):
		return Float, nullable, unique
	case allCells(nonNull, func(v any) bool { return probeDate(v, opts.DateLayouts) }):
		return Date, nullable, unique
	}

	if opts.CardinalityThreshold > 0 && len(distinct) < opts.CardinalityThreshold {
		return Categorical, nullable, unique
	}
	return String, nullable, unique
}

// IsNull reports whether a cell counts as NULL: a nil value or a string that
// is empty after trimming.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// allCells reports whether every cell satisfies fn.
func allCells(cells []any, fn func(any) bool) bool {
	for _, v := range cells {
		if !fn(v) {
			return false
		}
	}
	return true
}

// probeInteger accepts int64 cells and strings that parse as signed base-10
// integers fitting in int64.
func probeInteger(v any) bool {
	switch x := v.(type) {
	case int64:
		return true
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return err == nil
	default:
		return false
	}
}

// probeFloat accepts float64 and int64 cells plus strings parsing as floats
// (decimal or scientific notation).
func probeFloat(v any) bool {
	switch x := v.(type) {
	case float64, int64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return err == nil
	default:
		return false
	}
}

// probeBoolean accepts bool cells and strings in the truthy/falsy vocabulary.
func probeBoolean(v any, truthy, falsy map[string]struct{}) bool {
	switch x := v.(type) {
	case bool:
		return true
	case string:
		ls := strings.ToLower(strings.TrimSpace(x))
		if _, ok := truthy[ls]; ok {
			return true
		}
		_, ok := falsy[ls]
		return ok
	default:
		return false
	}
}

// probeDate accepts time.Time cells and strings matching any configured
// layout.
func probeDate(v any, layouts []string) bool {
	switch x := v.(type) {
	case time.Time:
		return true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range layouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// lowerSet builds a lowercased membership set.
func lowerSet(in []string) map[string]struct{} {
	m := make(map[string]struct{}, len(in))
	for _, s := range in {
		m[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return m
}

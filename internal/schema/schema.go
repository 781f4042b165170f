// Package schema defines the column/table model the scrambler plans against:
// a closed set of logical column types, per-column metadata, and extraction of
// that model from a loaded dataset.
//
// The type set is deliberately closed. Every component downstream (conversion
// catalog, planner, executor, sinks) switches on TypeTag exhaustively, so
// adding a tag is an explicit, reviewed change rather than something that can
// leak in through reflection or string typos.
package schema

import (
	"fmt"
	"strings"
)

// TypeTag identifies the logical type of a column.
type TypeTag uint8

const (
	Integer TypeTag = iota
	Float
	String
	Boolean
	Date
	Categorical

	numTags // sentinel; keep last
)

// tagNames maps TypeTag values to their canonical string form, used in
// configuration, provenance records, and DDL generation.
var tagNames = [numTags]string{
	Integer:     "integer",
	Float:       "float",
	String:      "string",
	Boolean:     "boolean",
	Date:        "date",
	Categorical: "categorical",
}

// String returns the canonical lowercase name of the tag.
func (t TypeTag) String() string {
	if t < numTags {
		return tagNames[t]
	}
	return fmt.Sprintf("typetag(%d)", uint8(t))
}

// Valid reports whether t is one of the declared tags.
func (t TypeTag) Valid() bool { return t < numTags }

// ParseTypeTag converts a canonical name back into a TypeTag.
func ParseTypeTag(s string) (TypeTag, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range tagNames {
		if n == name {
			return TypeTag(i), nil
		}
	}
	return 0, fmt.Errorf("unknown type tag %q", s)
}

// Tags returns all declared tags in declaration order. Iteration over this
// slice, never over a map, keeps every tag-ordered decision deterministic.
func Tags() []TypeTag {
	out := make([]TypeTag, numTags)
	for i := range out {
		out[i] = TypeTag(i)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler so tags serialize as their
// canonical names in JSON documents such as provenance records.
func (t TypeTag) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid type tag %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TypeTag) UnmarshalText(b []byte) error {
	tag, err := ParseTypeTag(string(b))
	if err != nil {
		return err
	}
	*t = tag
	return nil
}

// Column carries the per-column metadata the planner and executor need.
type Column struct {
	// OriginalName is the name the column had when the schema was first
	// extracted. It survives renames so provenance can always map back.
	OriginalName string `json:"original_name"`

	// CurrentName is the active name; unique within a Schema.
	CurrentName string `json:"current_name"`

	// Type is the column's declared logical type.
	Type TypeTag `json:"type"`

	// Nullable records whether a NULL cell was observed during extraction.
	// The executor may inject NULLs only into nullable columns.
	Nullable bool `json:"nullable"`

	// Unique records whether all observed non-null values were distinct
	// across a complete scan. Advisory; carried into provenance and DDL.
	Unique bool `json:"unique,omitempty"`

	// Position is the column's index in the dataset, 0-based.
	Position int `json:"position"`
}

// Schema is an ordered collection of columns. Positions always form a
// permutation of 0..len-1 and CurrentName values are unique.
type Schema struct {
	Columns []Column `json:"columns"`
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.Columns) }

// ColumnNames returns the current column names in position order.
func (s Schema) ColumnNames() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.CurrentName
	}
	return out
}

// ByName returns the column with the given current name.
func (s Schema) ByName(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.CurrentName == name {
			return c, true
		}
	}
	return Column{}, false
}

// Clone returns a deep copy of the schema.
func (s Schema) Clone() Schema {
	cols := make([]Column, len(s.Columns))
	copy(cols, s.Columns)
	return Schema{Columns: cols}
}

// Validate checks the schema invariants: at least one column, non-empty
// unique names, valid tags, and positions forming a permutation of 0..n-1.
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return &SchemaError{Reason: "schema has no columns"}
	}
	seen := make(map[string]struct{}, len(s.Columns))
	posSeen := make([]bool, len(s.Columns))
	for _, c := range s.Columns {
		if strings.TrimSpace(c.CurrentName) == "" {
			return &SchemaError{Reason: "empty column name", Column: c.OriginalName}
		}
		if _, dup := seen[c.CurrentName]; dup {
			return &SchemaError{Reason: "duplicate column name", Column: c.CurrentName}
		}
		seen[c.CurrentName] = struct{}{}
		if !c.Type.Valid() {
			return &SchemaError{Reason: fmt.Sprintf("invalid type tag %d", uint8(c.Type)), Column: c.CurrentName}
		}
		if c.Position < 0 || c.Position >= len(s.Columns) || posSeen[c.Position] {
			return &SchemaError{Reason: fmt.Sprintf("position %d is not a permutation slot", c.Position), Column: c.CurrentName}
		}
		posSeen[c.Position] = true
	}
	return nil
}

// SchemaError reports a structurally invalid schema: empty or duplicate
// column names, broken positions, or an empty column list.
type SchemaError struct {
	Reason string
	Column string // offending column when known
}

func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema: %s (column %q)", e.Reason, e.Column)
	}
	return "schema: " + e.Reason
}

package schema

import (
	"errors"
	"testing"
	"time"

	"scramble/internal/dataset"
)

func extractOne(t *testing.T, cells []any, opts ExtractOptions) Column {
	t.Helper()
	ds := dataset.New([]string{"c"}, wrapRows(cells))
	sc, err := Extract(ds, opts)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	return sc.Columns[0]
}

func wrapRows(cells []any) [][]any {
	rows := make([][]any, len(cells))
	for i, v := range cells {
		rows[i] = []any{v}
	}
	return rows
}

// TestExtract_Inference verifies the probe precedence over sampled values:
// integer before boolean before float before date, with categorical and
// string as textual fallbacks.
func TestExtract_Inference(t *testing.T) {
	t.Parallel()

	opts := DefaultExtractOptions()

	cases := []struct {
		name  string
		cells []any
		want  TypeTag
	}{
		{"ints", []any{"1", "2", "-3"}, Integer},
		{"zero_one_is_integer", []any{"0", "1", "0"}, Integer},
		{"typed_ints", []any{int64(1), int64(2)}, Integer},
		{"floats", []any{"1.5", "2", "3.25"}, Float},
		{"mixed_numeric", []any{int64(1), 2.5}, Float},
		{"bools", []any{"yes", "no", "Y"}, Boolean},
		{"typed_bools", []any{true, false}, Boolean},
		{"dates_iso", []any{"2024-01-02", "2023-11-30"}, Date},
		{"dates_typed", []any{time.Now(), time.Now()}, Date},
		{"categorical", []any{"red", "green", "red", "blue"}, Categorical},
		{"empty_column", []any{nil, nil}, String},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			col := extractOne(t, tc.cells, opts)
			if col.Type != tc.want {
				t.Errorf("type = %v, want %v", col.Type, tc.want)
			}
		})
	}
}

// TestExtract_StringAboveThreshold verifies that a textual column with too
// many distinct values stays string instead of categorical.
func TestExtract_StringAboveThreshold(t *testing.T) {
	t.Parallel()

	opts := DefaultExtractOptions()
	opts.CardinalityThreshold = 3

	col := extractOne(t, []any{"a", "b", "c", "d"}, opts)
	if col.Type != String {
		t.Errorf("type = %v, want string", col.Type)
	}

	col = extractOne(t, []any{"a", "b", "a", "b"}, opts)
	if col.Type != Categorical {
		t.Errorf("type = %v, want categorical", col.Type)
	}
}

// TestExtract_NullableAndUnique verifies NULL observation sets Nullable and
// that Unique requires pairwise-distinct values over a complete scan.
func TestExtract_NullableAndUnique(t *testing.T) {
	t.Parallel()

	opts := DefaultExtractOptions()

	col := extractOne(t, []any{"1", nil, "2"}, opts)
	if !col.Nullable {
		t.Errorf("Nullable = false, want true")
	}
	if !col.Unique {
		t.Errorf("Unique = false, want true (non-null values distinct)")
	}

	col = extractOne(t, []any{"1", "1", "2"}, opts)
	if col.Nullable {
		t.Errorf("Nullable = true, want false")
	}
	if col.Unique {
		t.Errorf("Unique = true, want false")
	}

	// A capped sample can never prove uniqueness.
	capped := opts
	capped.SampleLimit = 2
	col = extractOne(t, []any{"1", "2", "3"}, capped)
	if col.Unique {
		t.Errorf("Unique = true under capped sample, want false")
	}
}

// TestExtract_SchemaErrors verifies duplicate and empty column names surface
// as *SchemaError.
func TestExtract_SchemaErrors(t *testing.T) {
	t.Parallel()

	var serr *SchemaError

	_, err := Extract(dataset.New([]string{"a", "a"}, nil), DefaultExtractOptions())
	if !errors.As(err, &serr) {
		t.Fatalf("duplicate names: error = %v, want *SchemaError", err)
	}
	if serr.Column != "a" {
		t.Errorf("offending column = %q, want a", serr.Column)
	}

	_, err = Extract(dataset.New([]string{"a", "  "}, nil), DefaultExtractOptions())
	if !errors.As(err, &serr) {
		t.Fatalf("empty name: error = %v, want *SchemaError", err)
	}

	_, err = Extract(dataset.New(nil, nil), DefaultExtractOptions())
	if !errors.As(err, &serr) {
		t.Fatalf("no columns: error = %v, want *SchemaError", err)
	}
}

// TestExtract_PositionsAndNames verifies extracted columns carry their
// dataset position and both name fields start out equal.
func TestExtract_PositionsAndNames(t *testing.T) {
	t.Parallel()

	ds := dataset.New([]string{"x", "y"}, [][]any{{"1", "a"}})
	sc, err := Extract(ds, DefaultExtractOptions())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if err := sc.Validate(); err != nil {
		t.Fatalf("extracted schema invalid: %v", err)
	}
	for i, c := range sc.Columns {
		if c.Position != i {
			t.Errorf("column %d position = %d", i, c.Position)
		}
		if c.OriginalName != c.CurrentName {
			t.Errorf("column %d names differ: %q vs %q", i, c.OriginalName, c.CurrentName)
		}
	}
}

// Package catalog implements the type conversion rules between schema type
// tags: which conversions are legal for a given column's sampled values, and
// how individual cells convert.
//
// Design notes:
//   - Legality is keyed by the (source, target) tag pair. Pairs without a
//     registered rule are illegal; identity is always legal. The rule set is
//     closed and built once per Catalog.
//   - Legality depends on data, not just tags: a string column may become an
//     integer column only when 100% of its sampled non-null values parse, a
//     float column may narrow to integer only when no sampled value carries a
//     fractional part beyond the configured epsilon, and any column may
//     become categorical only while its distinct count stays below the
//     cardinality threshold.
//   - Converters are compiled once per column by callers (tiny closures, no
//     per-cell map lookups) and double-check the rule at cell level, since
//     sampling can miss offending values.
//   - NULL converts to NULL for every legal pair.
package catalog

import (
	"fmt"
	"math"
	"strings"

	"scramble/internal/dataset"
	"scramble/internal/schema"
)

// Options tunes the data-dependent conversion rules.
type Options struct {
	// NarrowingEpsilon is the largest fractional part a float value may carry
	// and still narrow to integer. 0 demands exact integers.
	NarrowingEpsilon float64

	// CardinalityThreshold is the distinct-value count a column must stay
	// below to convert to categorical.
	CardinalityThreshold int

	// DateLayout is the primary layout for parsing date strings and for
	// rendering dates into strings and categorical labels.
	DateLayout string

	// Truthy and Falsy are the boolean vocabularies, compared
	// case-insensitively.
	Truthy []string
	Falsy  []string
}

// DefaultOptions returns the documented defaults: exact narrowing, threshold
// 50, ISO dates, and the 1/t/true/yes/y vocabulary.
func DefaultOptions() Options {
	return Options{
		NarrowingEpsilon:     0,
		CardinalityThreshold: 50,
		DateLayout:           "2006-01-02",
		Truthy:               []string{"1", "t", "true", "yes", "y"},
		Falsy:                []string{"0", "f", "false", "no", "n"},
	}
}

// ConvertFunc converts a single cell. NULL cells pass through as nil.
type ConvertFunc func(v any) (any, error)

// pair keys the rule table by (source, target).
type pair struct {
	src, dst schema.TypeTag
}

// rule couples a sample-level legality check with a cell-level converter.
type rule struct {
	legal func(sample []any) bool
	conv  ConvertFunc
}

// Catalog answers legality queries and converts cells. Construct with New;
// a Catalog is immutable and safe for concurrent use.
type Catalog struct {
	opts   Options
	truthy map[string]struct{}
	falsy  map[string]struct{}
	rules  map[pair]rule
}

// New builds a Catalog, applying defaults for unset options.
func New(opts Options) *Catalog {
	def := DefaultOptions()
	if opts.CardinalityThreshold <= 0 {
		opts.CardinalityThreshold = def.CardinalityThreshold
	}
	if opts.NarrowingEpsilon < 0 {
		opts.NarrowingEpsilon = def.NarrowingEpsilon
	}
	if opts.DateLayout == "" {
		opts.DateLayout = def.DateLayout
	}
	if len(opts.Truthy) == 0 {
		opts.Truthy = def.Truthy
	}
	if len(opts.Falsy) == 0 {
		opts.Falsy = def.Falsy
	}

	c := &Catalog{
		opts:   opts,
		truthy: lowerSet(opts.Truthy),
		falsy:  lowerSet(opts.Falsy),
	}
	c.rules = c.buildRules()
	return c
}

// Options returns the effective options after defaulting.
func (c *Catalog) Options() Options { return c.opts }

// IsLegal reports whether converting a column declared src into dst is
// allowed given the column's sampled cells. Identity is always legal.
func (c *Catalog) IsLegal(src, dst schema.TypeTag, sample []any) bool {
	if !src.Valid() || !dst.Valid() {
		return false
	}
	if src == dst {
		return true
	}
	r, ok := c.rules[pair{src, dst}]
	if !ok {
		return false
	}
	return r.legal(sample)
}

// LegalTargets returns every tag the column may convert to, identity
// included, in tag declaration order. The order is part of the contract:
// the planner's seeded choice among targets must be reproducible.
func (c *Catalog) LegalTargets(src schema.TypeTag, sample []any) []schema.TypeTag {
	out := make([]schema.TypeTag, 0, len(schema.Tags()))
	for _, dst := range schema.Tags() {
		if c.IsLegal(src, dst, sample) {
			out = append(out, dst)
		}
	}
	return out
}

// Converter returns the compiled cell converter for a tag pair. Callers
// compile once per column and reuse the closure across rows. The returned
// function yields *ConversionError for cells that cannot convert.
func (c *Catalog) Converter(src, dst schema.TypeTag) (ConvertFunc, error) {
	if !src.Valid() || !dst.Valid() {
		return nil, fmt.Errorf("catalog: invalid tag pair (%v, %v)", src, dst)
	}

	normalize := func(v any) (any, error) {
		cv, ok := c.canonicalize(v, src)
		if !ok {
			return nil, &ConversionError{
				From: src, To: dst, Value: v,
				Reason: "value does not conform to declared type " + src.String(),
			}
		}
		return cv, nil
	}

	if src == dst {
		return func(v any) (any, error) {
			if schema.IsNull(v) {
				return nil, nil
			}
			return normalize(v)
		}, nil
	}

	r, ok := c.rules[pair{src, dst}]
	if !ok {
		return nil, fmt.Errorf("catalog: no conversion rule from %s to %s", src, dst)
	}
	return func(v any) (any, error) {
		if schema.IsNull(v) {
			return nil, nil
		}
		cv, err := normalize(v)
		if err != nil {
			return nil, err
		}
		return r.conv(cv)
	}, nil
}

// Convert converts one cell from src to dst. Prefer Converter when
// converting many cells of the same column.
func (c *Catalog) Convert(v any, src, dst schema.TypeTag) (any, error) {
	fn, err := c.Converter(src, dst)
	if err != nil {
		return nil, err
	}
	return fn(v)
}

// buildRules constructs the closed rule table. Every legal non-identity
// conversion in the system appears here; nothing else converts.
func (c *Catalog) buildRules() map[pair]rule {
	rules := make(map[pair]rule)

	legalAlways := func([]any) bool { return true }

	// Numeric widening is unconditional; narrowing demands that every
	// sampled value is integral within epsilon. An empty sample cannot prove
	// that, so narrowing stays illegal and the planner falls back to
	// identity.
	rules[pair{schema.Integer, schema.Float}] = rule{legal: legalAlways, conv: c.convIntToFloat}
	rules[pair{schema.Float, schema.Integer}] = rule{legal: c.legalNarrowing, conv: c.convFloatToInt}

	// Everything renders as a string.
	for _, src := range schema.Tags() {
		if src == schema.String {
			continue
		}
		rules[pair{src, schema.String}] = rule{legal: legalAlways, conv: c.convFormat}
	}

	// Strings parse into narrower types only when the whole sample agrees.
	for _, dst := range []schema.TypeTag{schema.Integer, schema.Float, schema.Boolean, schema.Date} {
		dst := dst
		rules[pair{schema.String, dst}] = rule{legal: c.legalParse(dst), conv: c.convParse(dst)}
	}

	// Any low-cardinality column can become categorical; the label is the
	// cell's string form.
	for _, src := range schema.Tags() {
		if src == schema.Categorical {
			continue
		}
		rules[pair{src, schema.Categorical}] = rule{legal: c.legalCategorical(src), conv: c.convFormat}
	}

	return rules
}

// --- legality checks -----------------------------------------------------

func (c *Catalog) legalNarrowing(sample []any) bool {
	vals := nonNull(sample)
	if len(vals) == 0 {
		return false
	}
	for _, v := range vals {
		f, ok := c.asFloat64(v)
		if !ok {
			return false
		}
		if frac(f) > c.opts.NarrowingEpsilon {
			return false
		}
	}
	return true
}

func (c *Catalog) legalParse(dst schema.TypeTag) func([]any) bool {
	return func(sample []any) bool {
		for _, v := range nonNull(sample) {
			if _, ok := c.canonicalize(v, dst); !ok {
				return false
			}
		}
		return true
	}
}

func (c *Catalog) legalCategorical(src schema.TypeTag) func([]any) bool {
	return func(sample []any) bool {
		distinct := make(map[string]struct{})
		for _, v := range nonNull(sample) {
			cv, ok := c.canonicalize(v, src)
			if !ok {
				return false
			}
			distinct[dataset.FormatCell(cv, c.opts.DateLayout)] = struct{}{}
			if len(distinct) >= c.opts.CardinalityThreshold {
				return false
			}
		}
		return true
	}
}

// --- converters (inputs are canonical, non-null cells) --------------------

func (c *Catalog) convIntToFloat(v any) (any, error) {
	n, ok := v.(int64)
	if !ok {
		return nil, &ConversionError{From: schema.Integer, To: schema.Float, Value: v, Reason: "cell is not an int64"}
	}
	return float64(n), nil
}

func (c *Catalog) convFloatToInt(v any) (any, error) {
	f, ok := v.(float64)
	if !ok {
		return nil, &ConversionError{From: schema.Float, To: schema.Integer, Value: v, Reason: "cell is not a float64"}
	}
	if frac(f) > c.opts.NarrowingEpsilon {
		return nil, &ConversionError{
			From: schema.Float, To: schema.Integer, Value: v,
			Reason: fmt.Sprintf("fractional part %g exceeds epsilon %g", frac(f), c.opts.NarrowingEpsilon),
		}
	}
	return int64(math.Round(f)), nil
}

func (c *Catalog) convFormat(v any) (any, error) {
	return dataset.FormatCell(v, c.opts.DateLayout), nil
}

func (c *Catalog) convParse(dst schema.TypeTag) ConvertFunc {
	return func(v any) (any, error) {
		cv, ok := c.canonicalize(v, dst)
		if !ok {
			return nil, &ConversionError{
				From: schema.String, To: dst, Value: v,
				Reason: "value does not parse as " + dst.String(),
			}
		}
		return cv, nil
	}
}

// --- helpers ---------------------------------------------------------------

// nonNull filters NULL cells from a sample.
func nonNull(sample []any) []any {
	out := make([]any, 0, len(sample))
	for _, v := range sample {
		if schema.IsNull(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// lowerSet builds a lowercased membership set.
func lowerSet(in []string) map[string]struct{} {
	m := make(map[string]struct{}, len(in))
	for _, s := range in {
		m[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return m
}

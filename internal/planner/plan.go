// Package planner derives deterministic scrambling plans. A plan fixes the
// column renames, the new column order and the per-column target types
// before any row is touched; the executor then replays it mechanically.
//
// All randomness flows from one explicit source seeded by the run's Seed.
// The consumption order is fixed: the name pool is shuffled first, then the
// column order, then one draw per column for the target type. Changing that
// order would change every plan, so it is part of the format.
package planner

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"scramble/internal/catalog"
	"scramble/internal/dataset"
	"scramble/internal/schema"
)

// SampleProvider hands the planner sampled cells per column. The position
// is the column's index in the source schema. The samples decide which
// type conversions are legal.
type SampleProvider interface {
	Sample(pos int) []any
}

// DatasetSampler adapts an in-memory dataset. A non-positive limit samples
// whole columns.
func DatasetSampler(ds *dataset.Dataset, limit int) SampleProvider {
	return datasetSampler{ds: ds, limit: limit}
}

type datasetSampler struct {
	ds    *dataset.Dataset
	limit int
}

func (s datasetSampler) Sample(pos int) []any { return s.ds.Sample(pos, s.limit) }

// Options tune plan generation. The zero value renames into a shuffled
// "column_N" pool.
type Options struct {
	// RenameStyle is RenamePool or RenameHash.
	RenameStyle string
	// RenamePrefix replaces the default "column" prefix. Arbitrary text
	// is normalized to a lowercase ASCII identifier first.
	RenamePrefix string
}

// TransformPlan is the full, serializable description of one scramble run.
// Names maps original column names to their surrogates, Order maps old
// positions to new ones, and Types records the target type per original
// column, chosen uniformly among the legal targets (identity included).
type TransformPlan struct {
	Seed  Seed                      `json:"seed"`
	Names map[string]string         `json:"names"`
	Order []int                     `json:"order"`
	Types map[string]schema.TypeTag `json:"types"`
}

// Plan derives the scrambling plan for sc. It is deterministic: the same
// schema, seed, catalog options and samples produce the same plan, while
// different seeds produce unrelated plans.
func Plan(sc schema.Schema, seed Seed, cat *catalog.Catalog, samples SampleProvider, opts Options) (*TransformPlan, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	style := opts.RenameStyle
	if style == "" {
		style = RenamePool
	}
	prefix := normalizePrefix(opts.RenamePrefix)

	n := sc.Len()
	rng := seed.rng()

	// Draw 1: surrogate names. The pool style shuffles generated names so
	// the assignment leaks nothing about the original order; the hash
	// style is position independent and consumes no randomness.
	names := make([]string, n)
	switch style {
	case RenamePool:
		for i := range names {
			names[i] = prefix + "_" + strconv.Itoa(i+1)
		}
		rng.Shuffle(n, func(i, j int) { names[i], names[j] = names[j], names[i] })
	case RenameHash:
		for i, col := range sc.Columns {
			names[i] = hashName(prefix, col.OriginalName)
		}
	default:
		return nil, fmt.Errorf("plan: unsupported rename style %q", style)
	}
	for i := range names {
		names[i] = truncateName(names[i])
	}
	names = resolveCollisions(names)

	// Draw 2: column order.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

	// Draw 3: target types, one uniform pick per column over its legal
	// targets. Identity is always among them, so every column has at
	// least one choice.
	nameMap := make(map[string]string, n)
	types := make(map[string]schema.TypeTag, n)
	for i, col := range sc.Columns {
		nameMap[col.OriginalName] = names[i]
		targets := cat.LegalTargets(col.Type, samples.Sample(i))
		types[col.OriginalName] = targets[rng.IntN(len(targets))]
	}

	return &TransformPlan{Seed: seed, Names: nameMap, Order: order, Types: types}, nil
}

// Validate checks the plan against its source schema: names must map every
// column onto a distinct surrogate, Order must be a permutation and every
// column needs a valid target type.
func (p *TransformPlan) Validate(sc schema.Schema) error {
	n := sc.Len()
	if len(p.Names) != n || len(p.Order) != n || len(p.Types) != n {
		return fmt.Errorf("plan: sized for %d columns, schema has %d", len(p.Order), n)
	}
	surrogates := make(map[string]string, n)
	for _, col := range sc.Columns {
		newName, ok := p.Names[col.OriginalName]
		if !ok {
			return fmt.Errorf("plan: no surrogate name for column %q", col.OriginalName)
		}
		if newName == "" {
			return fmt.Errorf("plan: empty surrogate name for column %q", col.OriginalName)
		}
		if prev, dup := surrogates[newName]; dup {
			return fmt.Errorf("plan: surrogate %q assigned to both %q and %q", newName, prev, col.OriginalName)
		}
		surrogates[newName] = col.OriginalName
		tag, ok := p.Types[col.OriginalName]
		if !ok {
			return fmt.Errorf("plan: no target type for column %q", col.OriginalName)
		}
		if !tag.Valid() {
			return fmt.Errorf("plan: invalid target type for column %q", col.OriginalName)
		}
	}
	seen := make([]bool, n)
	for i, pos := range p.Order {
		if pos < 0 || pos >= n {
			return fmt.Errorf("plan: order[%d]=%d out of range", i, pos)
		}
		if seen[pos] {
			return fmt.Errorf("plan: order maps two columns to position %d", pos)
		}
		seen[pos] = true
	}
	return nil
}

// TransformedSchema builds the output schema: surrogate names, new
// positions, target types. Nullability carries over; uniqueness is kept
// only on identity-typed columns since conversions may merge values.
func (p *TransformPlan) TransformedSchema(src schema.Schema) (schema.Schema, error) {
	if err := p.Validate(src); err != nil {
		return schema.Schema{}, err
	}
	cols := make([]schema.Column, src.Len())
	for i, col := range src.Columns {
		target := p.Types[col.OriginalName]
		out := schema.Column{
			OriginalName: col.OriginalName,
			CurrentName:  p.Names[col.OriginalName],
			Type:         target,
			Nullable:     col.Nullable,
			Unique:       col.Unique && target == col.Type,
			Position:     p.Order[i],
		}
		cols[out.Position] = out
	}
	return schema.Schema{Columns: cols}, nil
}

// Fingerprint hashes a canonical encoding of the plan. Provenance records
// carry it so a plan can be matched to the run that produced it.
func (p *TransformPlan) Fingerprint() string {
	var b strings.Builder
	b.WriteString(string(p.Seed))
	b.WriteByte(0)
	origs := make([]string, 0, len(p.Names))
	for name := range p.Names {
		origs = append(origs, name)
	}
	sort.Strings(origs)
	for _, name := range origs {
		b.WriteString(name)
		b.WriteByte(0)
		b.WriteString(p.Names[name])
		b.WriteByte(0)
		b.WriteString(p.Types[name].String())
		b.WriteByte(0)
	}
	for _, pos := range p.Order {
		b.WriteString(strconv.Itoa(pos))
		b.WriteByte(0)
	}
	return fmt.Sprintf("%016x", xxh3.HashString(b.String()))
}

// Package provenance records what a scramble run did, so an output dataset
// can be traced back to its source columns and audited later.
package provenance

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"scramble/internal/planner"
	"scramble/internal/schema"
)

// Record ties one output dataset back to its source. NameMap is keyed by
// surrogate name, so a holder of the output can look up the original
// column without the plan. NullInjections counts the cells per surrogate
// column that were nulled out because they could not convert.
type Record struct {
	RunID          string            `json:"run_id"`
	CreatedAt      time.Time         `json:"created_at"`
	Seed           string            `json:"seed"`
	PlanDigest     string            `json:"plan_digest"`
	Rows           int64             `json:"rows"`
	NameMap        map[string]string `json:"name_map"`
	Original       schema.Schema     `json:"original_schema"`
	Transformed    schema.Schema     `json:"transformed_schema"`
	NullInjections map[string]int64  `json:"null_injections,omitempty"`
}

// New builds the record for one run. NameMap inverts the plan's rename
// map; Rows and NullInjections are filled in by the executor.
func New(src, dst schema.Schema, plan *planner.TransformPlan) *Record {
	inverse := make(map[string]string, len(plan.Names))
	for orig, surrogate := range plan.Names {
		inverse[surrogate] = orig
	}
	return &Record{
		RunID:       uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Seed:        plan.Seed.String(),
		PlanDigest:  plan.Fingerprint(),
		NameMap:     inverse,
		Original:    src.Clone(),
		Transformed: dst.Clone(),
	}
}

// OriginalName resolves a surrogate column name back to its source name.
func (r *Record) OriginalName(surrogate string) (string, bool) {
	orig, ok := r.NameMap[surrogate]
	return orig, ok
}

// Write serializes the record as indented JSON.
func (r *Record) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteFile writes the record to path, creating parent directories as
// needed.
func (r *Record) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("provenance: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("provenance: %w", err)
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("provenance: write %s: %w", path, err)
	}
	return f.Close()
}

// ReadFile loads a record back from disk.
func ReadFile(path string) (*Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("provenance: %w", err)
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("provenance: parse %s: %w", path, err)
	}
	return &r, nil
}

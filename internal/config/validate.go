// Package config provides configuration models and helpers for scramble runs.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"

	"scramble/internal/planner"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "output.kind",
// "scramble.rename.style"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is of error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	var p config.Pipeline
//	if err := json.NewDecoder(r).Decode(&p); err != nil { ... }
//	issues := config.ValidatePipeline(p)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	// Top-level pipeline checks.
	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateScramble(p.Scramble)...)
	issues = append(issues, validateOutput(p.Output)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateDateLayouts(p)...)

	return issues
}

// validateDateLayouts cross-checks parser date_layouts against the layouts
// the conversion rules can parse back. A date column inferred through a
// layout the converter cannot read fails its own identity conversion at
// apply time, which is much harder to diagnose than a config warning.
func validateDateLayouts(p Pipeline) []Issue {
	layouts := p.Parser.Options.StringSlice("date_layouts")
	if len(layouts) == 0 {
		return nil
	}

	// ISO and dotted European dates are always readable; anything else must
	// be declared as the run's scramble.date_layout.
	readable := map[string]struct{}{
		"2006-01-02": {},
		"02.01.2006": {},
	}
	if p.Scramble.DateLayout != "" {
		readable[p.Scramble.DateLayout] = struct{}{}
	}

	var issues []Issue
	for _, l := range layouts {
		if _, ok := readable[l]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "parser.options.date_layouts",
				Message:  fmt.Sprintf("layout %q is used for date inference but not for conversion; set scramble.date_layout to %q or date columns will fail to convert", l, l),
			})
		}
	}
	return issues
}

// validateSource validates Source configuration.
func validateSource(s Source) []Issue {
	var issues []Issue

	// Kind is required.
	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
		return issues
	}

	// Known source kinds. Unknown kinds are warnings (for forward compatibility).
	known := map[string]struct{}{
		"file": {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; ensure a matching implementation exists", s.Kind),
		})
	}

	// Kind-specific checks.
	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	}

	return issues
}

// validateParser validates parser configuration.
func validateParser(p Parser) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
		return issues
	}

	known := map[string]struct{}{
		"csv": {},
	}
	if _, ok := known[p.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q; ensure a matching implementation exists", p.Kind),
		})
	}

	// Parser-specific sanity checks (kept intentionally light).
	switch p.Kind {
	case "csv":
		if comma := p.Options.String("comma", ","); len([]rune(comma)) > 1 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "parser.options.comma",
				Message:  fmt.Sprintf("comma %q is longer than one character; only the first rune is used", comma),
			})
		}
		if !p.Options.Bool("has_header", true) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "parser.options.has_header",
				Message:  "headerless input gets positional column names; renames will not hide anything meaningful",
			})
		}
	}

	return issues
}

// validateScramble validates the randomization knobs.
func validateScramble(s Scramble) []Issue {
	var issues []Issue

	if s.Seed == nil {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "scramble.seed",
			Message:  "seed not set; defaulting to 0, which every other seedless run shares",
		})
	} else if _, err := planner.NewSeed(s.Seed); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "scramble.seed",
			Message:  err.Error(),
		})
	}

	if s.CardinalityThreshold < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "scramble.cardinality_threshold",
			Message:  "cardinality_threshold must not be negative",
		})
	}
	if s.NarrowingEpsilon < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "scramble.narrowing_epsilon",
			Message:  "narrowing_epsilon must not be negative",
		})
	}
	if s.SampleLimit < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "scramble.sample_limit",
			Message:  "sample_limit must not be negative; use 0 to scan whole columns",
		})
	}

	switch s.Rename.Style {
	case "", planner.RenamePool, planner.RenameHash:
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "scramble.rename.style",
			Message:  fmt.Sprintf("unknown rename style %q; use %q or %q", s.Rename.Style, planner.RenamePool, planner.RenameHash),
		})
	}

	if s.DateLayout != "" && !strings.Contains(s.DateLayout, "2006") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "scramble.date_layout",
			Message:  fmt.Sprintf("layout %q has no year component; did you mean a Go reference layout like 2006-01-02?", s.DateLayout),
		})
	}

	// A token that is both truthy and falsy makes boolean parsing ambiguous.
	truthy := map[string]struct{}{}
	for _, v := range s.Truthy {
		truthy[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	for _, v := range s.Falsy {
		if _, ok := truthy[strings.ToLower(strings.TrimSpace(v))]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "scramble.falsy",
				Message:  fmt.Sprintf("token %q appears in both truthy and falsy vocabularies", v),
			})
		}
	}

	return issues
}

// validateOutput validates sink configuration.
func validateOutput(o Output) []Issue {
	var issues []Issue

	if strings.TrimSpace(o.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.kind",
			Message:  "output.kind must not be empty",
		})
		return issues
	}

	fileKinds := map[string]struct{}{
		"csv":     {},
		"parquet": {},
	}
	dbKinds := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	_, isFile := fileKinds[o.Kind]
	_, isDB := dbKinds[o.Kind]
	if !isFile && !isDB {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "output.kind",
			Message:  fmt.Sprintf("unknown output kind %q; ensure a matching sink is registered", o.Kind),
		})
	}

	if isFile && strings.TrimSpace(o.File.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.file.path",
			Message:  fmt.Sprintf("%s output requires a non-empty file path", o.Kind),
		})
	}
	if isDB {
		if strings.TrimSpace(o.DB.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "output.db.dsn",
				Message:  "output.db.dsn must not be empty",
			})
		}
		if strings.TrimSpace(o.DB.Table) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "output.db.table",
				Message:  "output.db.table must not be empty",
			})
		}
	}

	if strings.TrimSpace(o.ProvenancePath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "output.provenance_path",
			Message:  "no provenance_path set; the rename map will not be persisted and the run cannot be reversed",
		})
	}

	return issues
}

// validateRuntime validates RuntimeConfig for obvious misconfigurations.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.ApplyWorkers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.apply_workers",
			Message:  "apply_workers must not be negative",
		})
	}
	if r.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  "batch_size must not be negative",
		})
	}

	return issues
}

package planner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rename styles accepted by Options.RenameStyle.
const (
	// RenamePool assigns names from a shuffled "prefix_N" pool.
	RenamePool = "pool"
	// RenameHash derives each name from a hash of the original, so a
	// column keeps its surrogate across runs with different schemas.
	RenameHash = "hash"
)

// hashName derives a stable surrogate from the original column name. Eight
// hex digits keep names short; collisions fall through to the positional
// suffix in resolveCollisions.
func hashName(prefix, original string) string {
	return fmt.Sprintf("%s_%08x", prefix, uint32(xxh3.HashString(original)))
}

// normalizePrefix converts configured prefix text into a lowercase ASCII
// identifier suitable for SQL schemas:
//  1. lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9_]; convert space/dash/dot to underscore; drop others
//  4. fallback to "column" if empty
func normalizePrefix(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "column"
	}
	return name
}

// truncateName ensures a generated name does not exceed PostgreSQL's
// 63-character limit, returning the first 10 and last 53 characters if the
// name exceeds the limit.
func truncateName(s string) string {
	if len(s) > 63 {
		return s[:10] + s[len(s)-53:] // First 10 + last 53 characters
	}
	return s
}

// resolveCollisions keeps the first occurrence of a duplicate name and
// suffixes later ones with their column position, repeating until the name
// is free. The result is always a slice of distinct names, in the same
// order, without consuming randomness.
func resolveCollisions(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		for _, dup := seen[name]; dup; _, dup = seen[name] {
			name = name + "_" + strconv.Itoa(i)
		}
		seen[name] = struct{}{}
		out[i] = name
	}
	return out
}

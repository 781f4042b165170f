package catalog

import (
	"math"
	"strconv"
	"strings"
	"time"

	"scramble/internal/dataset"
	"scramble/internal/schema"
)

// canonicalize coerces a non-null cell into the canonical Go type for tag:
// int64, float64, string, bool, or time.Time. CSV-loaded cells arrive as raw
// strings regardless of the column's declared tag, so every conversion (and
// identity itself) normalizes through this function first.
func (c *Catalog) canonicalize(v any, tag schema.TypeTag) (any, bool) {
	switch tag {
	case schema.Integer:
		if n, ok := c.asInt64(v); ok {
			return n, true
		}
	case schema.Float:
		if f, ok := c.asFloat64(v); ok {
			return f, true
		}
	case schema.Boolean:
		if b, ok := c.asBool(v); ok {
			return b, true
		}
	case schema.Date:
		if t, ok := c.asDate(v); ok {
			return t, true
		}
	case schema.String, schema.Categorical:
		return dataset.FormatCell(v, c.opts.DateLayout), true
	}
	return nil, false
}

// asInt64 parses integers quickly and only falls back to float parsing when
// the field contains a '.' (supporting inputs like "42.0").
func (c *Catalog) asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		if x == math.Trunc(x) {
			return int64(x), true
		}
		return 0, false
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if strings.IndexByte(s, '.') >= 0 {
			if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
				return int64(f), true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// asFloat64 widens int64 and parses decimal or scientific notation strings.
func (c *Catalog) asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// asBool resolves booleans against the configured truthy/falsy vocabularies,
// case-insensitively.
func (c *Catalog) asBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		ls := strings.ToLower(strings.TrimSpace(x))
		if _, ok := c.truthy[ls]; ok {
			return true, true
		}
		if _, ok := c.falsy[ls]; ok {
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

// asDate parses dates through the configured layout, then ISO-8601, then a
// zero-alloc DD.MM.YYYY fast path.
func (c *Catalog) asDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		if c.opts.DateLayout != "" {
			if t, err := time.Parse(c.opts.DateLayout, s); err == nil {
				return t, true
			}
		}
		if c.opts.DateLayout != "2006-01-02" {
			if t, err := time.Parse("2006-01-02", s); err == nil {
				return t, true
			}
		}
		return parseDottedDate(s)
	default:
		return time.Time{}, false
	}
}

// parseDottedDate implements a zero-allocation parser for "02.01.2006"
// (DD.MM.YYYY). It returns (zero, false) on any invalid input.
func parseDottedDate(s string) (time.Time, bool) {
	if len(s) < 10 || s[2] != '.' || s[5] != '.' {
		return time.Time{}, false
	}
	d1, d0 := s[0]-'0', s[1]-'0'
	m1, m0 := s[3]-'0', s[4]-'0'
	y3, y2, y1, y0 := s[6]-'0', s[7]-'0', s[8]-'0', s[9]-'0'
	if d1 > 9 || d0 > 9 || m1 > 9 || m0 > 9 || y3 > 9 || y2 > 9 || y1 > 9 || y0 > 9 {
		return time.Time{}, false
	}
	day := int(d1)*10 + int(d0)
	mon := int(m1)*10 + int(m0)
	year := int(y3)*1000 + int(y2)*100 + int(y1)*10 + int(y0)
	if mon < 1 || mon > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(mon), day, 0, 0, 0, 0, time.UTC), true
}

// frac returns the distance from f to the nearest integer.
func frac(f float64) float64 {
	return math.Abs(f - math.Round(f))
}

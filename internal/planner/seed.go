package planner

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Seed identifies a scrambling run. Equal seeds yield equal plans for the
// same schema and catalog options. The canonical form is text, so the
// integer 42 and the string "42" scramble alike.
type Seed string

// NewSeed canonicalizes a configured seed value. JSON decoding hands
// numbers over as float64; whole values collapse to their integer text.
// A nil value falls back to seed 0.
func NewSeed(v any) (Seed, error) {
	switch s := v.(type) {
	case nil:
		return "0", nil
	case Seed:
		return s, nil
	case string:
		return Seed(s), nil
	case int:
		return Seed(strconv.Itoa(s)), nil
	case int64:
		return Seed(strconv.FormatInt(s, 10)), nil
	case float64:
		if s != math.Trunc(s) {
			return "", fmt.Errorf("seed: %v is not an integer", s)
		}
		return Seed(strconv.FormatInt(int64(s), 10)), nil
	case json.Number:
		return Seed(s.String()), nil
	}
	return "", fmt.Errorf("seed: unsupported type %T", v)
}

func (s Seed) String() string { return string(s) }

// rng derives the run's random source. The seed text is hashed to 128 bits
// and feeds a PCG generator, so short seeds still spread over the whole
// state space.
func (s Seed) rng() *rand.Rand {
	u := xxh3.HashString128(string(s))
	return rand.New(rand.NewPCG(u.Hi, u.Lo))
}

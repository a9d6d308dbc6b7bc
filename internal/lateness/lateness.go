package lateness

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	day        = 24 * time.Hour
	maxElapsed = time.Duration(math.MaxInt64)
)

// Tier grants Multiplier to submissions at most Within late.
type Tier struct {
	Within     time.Duration `json:"within"`
	Multiplier float64       `json:"multiplier"`
}

// Policy maps elapsed submission time to a score multiplier.
type Policy struct {
	// Tiers are checked in order; bounds are inclusive.
	Tiers []Tier
	// Otherwise applies past the last tier.
	Otherwise float64
}

// DefaultPolicy returns the course schedule: full credit within a two-hour
// grace period, then 90% for a week, 70% for two weeks, 40% after that.
func DefaultPolicy() Policy {
	return Policy{
		Tiers: []Tier{
			{Within: 2 * time.Hour, Multiplier: 1.0},
			{Within: 7 * day, Multiplier: 0.9},
			{Within: 14 * day, Multiplier: 0.7},
		},
		Otherwise: 0.4,
	}
}

// Validate checks that tiers are strictly increasing and multipliers lie in [0, 1].
func (p Policy) Validate() error {
	var prev time.Duration = -1
	for i, t := range p.Tiers {
		if t.Within < 0 {
			return fmt.Errorf("tier %d: negative bound %s", i, t.Within)
		}
		if t.Within <= prev {
			return fmt.Errorf("tier %d: bound %s must exceed %s", i, t.Within, prev)
		}
		if t.Multiplier < 0 || t.Multiplier > 1 {
			return fmt.Errorf("tier %d: multiplier must be in [0, 1], got %v", i, t.Multiplier)
		}
		prev = t.Within
	}
	if p.Otherwise < 0 || p.Otherwise > 1 {
		return fmt.Errorf("otherwise multiplier must be in [0, 1], got %v", p.Otherwise)
	}
	return nil
}

// Multiplier returns the score multiplier for a submission d late.
func (p Policy) Multiplier(d time.Duration) float64 {
	for _, t := range p.Tiers {
		if d <= t.Within {
			return t.Multiplier
		}
	}
	return p.Otherwise
}

// MultiplierFor parses an H:M:S lateness cell and returns its multiplier.
func (p Policy) MultiplierFor(elapsed string) (float64, error) {
	d, err := ParseElapsed(elapsed)
	if err != nil {
		return 0, err
	}
	return p.Multiplier(d), nil
}

// Apply maps a lateness column element-wise to multipliers.
func (p Policy) Apply(column []string) ([]float64, error) {
	out := make([]float64, len(column))
	for i, cell := range column {
		m, err := p.MultiplierFor(cell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = m
	}
	return out, nil
}

// ParseError reports an unparsable lateness cell.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid lateness %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseElapsed parses "H:M:S" where hours may exceed 24. An empty cell means
// the submission was not late.
func ParseElapsed(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, &ParseError{Value: s, Err: fmt.Errorf("want H:M:S, got %d fields", len(parts))}
	}
	var fields [3]int64
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, &ParseError{Value: s, Err: err}
		}
		if n < 0 {
			return 0, &ParseError{Value: s, Err: fmt.Errorf("negative field %d", n)}
		}
		fields[i] = n
	}
	// Lateness too large for a Duration saturates, landing past every tier.
	var total time.Duration
	for i, unit := range [3]time.Duration{time.Hour, time.Minute, time.Second} {
		if fields[i] > int64(maxElapsed-total)/int64(unit) {
			return maxElapsed, nil
		}
		total += time.Duration(fields[i]) * unit
	}
	return total, nil
}

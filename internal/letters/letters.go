package letters

import (
	"fmt"
	"math"
	"slices"
)

// Grade is a course letter grade.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"

	// Incomplete is assigned when a student's total is undefined.
	Incomplete Grade = "I"
)

// Threshold awards Grade to totals at or above Min.
type Threshold struct {
	Min   float64 `json:"min"`
	Grade Grade   `json:"grade"`
}

// Scale is a step function from course percentage to letter grade.
type Scale struct {
	// Thresholds are checked in order, highest first.
	Thresholds []Threshold
	// Floor is the grade below the last threshold.
	Floor Grade
}

// DefaultScale returns A ≥ 0.9, B ≥ 0.8, C ≥ 0.7, D ≥ 0.6, else F.
func DefaultScale() Scale {
	return Scale{
		Thresholds: []Threshold{
			{Min: 0.9, Grade: GradeA},
			{Min: 0.8, Grade: GradeB},
			{Min: 0.7, Grade: GradeC},
			{Min: 0.6, Grade: GradeD},
		},
		Floor: GradeF,
	}
}

// Validate checks that thresholds are strictly descending within (0, 1] and
// grades are unique.
func (s Scale) Validate() error {
	if s.Floor == "" {
		return fmt.Errorf("floor grade is required")
	}
	seen := map[Grade]bool{s.Floor: true, Incomplete: true}
	prev := math.Inf(1)
	for i, t := range s.Thresholds {
		if t.Grade == "" {
			return fmt.Errorf("threshold %d: grade is required", i)
		}
		if seen[t.Grade] {
			return fmt.Errorf("threshold %d: duplicate grade %q", i, t.Grade)
		}
		seen[t.Grade] = true
		if t.Min <= 0 || t.Min > 1 {
			return fmt.Errorf("threshold %d: min must be in (0, 1], got %v", i, t.Min)
		}
		if t.Min >= prev {
			return fmt.Errorf("threshold %d: min %v must be below %v", i, t.Min, prev)
		}
		prev = t.Min
	}
	return nil
}

// Letter maps a total percentage to its grade.
func (s Scale) Letter(total float64) Grade {
	if math.IsNaN(total) {
		return Incomplete
	}
	for _, t := range s.Thresholds {
		if total >= t.Min {
			return t.Grade
		}
	}
	return s.Floor
}

// Assign maps every total to a grade.
func (s Scale) Assign(totals []float64) []Grade {
	out := make([]Grade, len(totals))
	for i, v := range totals {
		out[i] = s.Letter(v)
	}
	return out
}

// Order returns every grade the scale can produce, best first.
func (s Scale) Order() []Grade {
	out := make([]Grade, 0, len(s.Thresholds)+2)
	for _, t := range s.Thresholds {
		out = append(out, t.Grade)
	}
	return append(out, s.Floor, Incomplete)
}

// Share is one grade's slice of a distribution.
type Share struct {
	Grade      Grade
	Count      int
	Proportion float64
}

// Distribution returns the proportion of students holding each grade that
// occurs, sorted by proportion descending. Ties keep scale order.
func (s Scale) Distribution(totals []float64) []Share {
	if len(totals) == 0 {
		return nil
	}
	counts := make(map[Grade]int)
	for _, g := range s.Assign(totals) {
		counts[g]++
	}

	var shares []Share
	for _, g := range s.Order() {
		if n := counts[g]; n > 0 {
			shares = append(shares, Share{
				Grade:      g,
				Count:      n,
				Proportion: float64(n) / float64(len(totals)),
			})
		}
	}
	slices.SortStableFunc(shares, func(a, b Share) int {
		return b.Count - a.Count
	})
	return shares
}

// Letter maps a total with the default scale.
func Letter(total float64) Grade { return DefaultScale().Letter(total) }

// Proportions computes the default-scale distribution.
func Proportions(totals []float64) []Share { return DefaultScale().Distribution(totals) }

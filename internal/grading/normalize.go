package grading

import (
	"fmt"
	"math"

	"github.com/abhisek/gradebook/internal/gradebook"
	"github.com/abhisek/gradebook/internal/lateness"
	"github.com/abhisek/gradebook/internal/table"
)

// Undefined marks a per-student score that cannot be computed, such as a
// category with nothing left to average. It propagates through totals.
var Undefined = math.NaN()

// IsUndefined reports whether v is an undefined score.
func IsUndefined(v float64) bool { return math.IsNaN(v) }

func divide(num, den []float64) []float64 {
	out := make([]float64, len(num))
	for i := range num {
		out[i] = num[i] / den[i]
	}
	return out
}

// NormalizeLabs returns one column per lab holding score × lateness
// multiplier ÷ max points. Missing scores count as zero.
func NormalizeLabs(gb *gradebook.Gradebook, policy lateness.Policy) (*table.Table, error) {
	out, err := table.New(gb.PIDs())
	if err != nil {
		return nil, err
	}
	for _, lab := range gb.Assignments(gradebook.CategoryLab) {
		scores, err := gb.Scores(lab)
		if err != nil {
			return nil, fmt.Errorf("lab %q: %w", lab, err)
		}
		late, err := gb.Lateness(lab)
		if err != nil {
			return nil, fmt.Errorf("lab %q: %w", lab, err)
		}
		mult, err := policy.Apply(late)
		if err != nil {
			return nil, fmt.Errorf("lab %q: %w", lab, err)
		}
		maxPts, err := gb.MaxPoints(lab)
		if err != nil {
			return nil, fmt.Errorf("lab %q: %w", lab, err)
		}
		for i := range scores {
			scores[i] *= mult[i]
		}
		if err := out.AddNumbers(lab, divide(scores, maxPts)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// LabTotal drops each student's single lowest lab (the first one on ties)
// and averages the rest. With fewer than two labs nothing remains to average
// and the result is Undefined.
func LabTotal(processed *table.Table) ([]float64, error) {
	rows, err := table.Rows(processed)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = dropLowestMean(row)
	}
	return out, nil
}

func dropLowestMean(vals []float64) float64 {
	if len(vals) < 2 {
		return Undefined
	}
	lowest := 0
	for j, v := range vals {
		if v < vals[lowest] {
			lowest = j
		}
	}
	sum := 0.0
	for j, v := range vals {
		if j != lowest {
			sum += v
		}
	}
	return sum / float64(len(vals)-1)
}

// NormalizeProjects returns one percentage column per project. When a
// project has a free-response sibling, both parts are pooled:
// (score + free response) ÷ (max + free-response max).
func NormalizeProjects(gb *gradebook.Gradebook) (*table.Table, error) {
	out, err := table.New(gb.PIDs())
	if err != nil {
		return nil, err
	}
	for _, project := range gb.Assignments(gradebook.CategoryProject) {
		scores, err := gb.Scores(project)
		if err != nil {
			return nil, fmt.Errorf("project %q: %w", project, err)
		}
		maxPts, err := gb.MaxPoints(project)
		if err != nil {
			return nil, fmt.Errorf("project %q: %w", project, err)
		}

		fr := gradebook.FreeResponseColumn(project)
		if gb.HasColumn(fr) {
			frScores, err := gb.Scores(fr)
			if err != nil {
				return nil, fmt.Errorf("project %q: %w", fr, err)
			}
			frMax, err := gb.MaxPoints(fr)
			if err != nil {
				return nil, fmt.Errorf("project %q: %w", fr, err)
			}
			for i := range scores {
				scores[i] += frScores[i]
				maxPts[i] += frMax[i]
			}
		}
		if err := out.AddNumbers(project, divide(scores, maxPts)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NormalizeCategory returns score ÷ max points for every assignment of a
// category. It serves discussions, checkpoints and exams.
func NormalizeCategory(gb *gradebook.Gradebook, cat gradebook.Category) (*table.Table, error) {
	out, err := table.New(gb.PIDs())
	if err != nil {
		return nil, err
	}
	for _, col := range gb.Assignments(cat) {
		scores, err := gb.Scores(col)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", cat, col, err)
		}
		maxPts, err := gb.MaxPoints(col)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", cat, col, err)
		}
		if err := out.AddNumbers(col, divide(scores, maxPts)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MeanTotal averages each student's normalized scores without dropping any.
func MeanTotal(processed *table.Table) ([]float64, error) {
	return table.RowMeans(processed)
}

// ExamScore returns the percentage on the single exam of cat.
func ExamScore(gb *gradebook.Gradebook, cat gradebook.Category) ([]float64, error) {
	if !cat.IsExam() {
		return nil, fmt.Errorf("category %q is not an exam", cat)
	}
	col, err := gb.Exam(cat)
	if err != nil {
		return nil, err
	}
	processed, err := NormalizeCategory(gb, cat)
	if err != nil {
		return nil, err
	}
	return processed.Numbers(col)
}

package grading

import (
	"fmt"

	"github.com/abhisek/gradebook/internal/gradebook"
	"github.com/abhisek/gradebook/internal/lateness"
)

// Calculator turns a gradebook into weighted course percentages.
type Calculator struct {
	weights  Weights
	lateness lateness.Policy
}

// NewCalculator validates its inputs and returns a Calculator.
func NewCalculator(w Weights, p lateness.Policy) (*Calculator, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("lateness policy: %w", err)
	}
	return &Calculator{weights: w, lateness: p}, nil
}

// DefaultCalculator uses DefaultWeights and the default lateness policy.
func DefaultCalculator() *Calculator {
	return &Calculator{weights: DefaultWeights(), lateness: lateness.DefaultPolicy()}
}

// Weights returns the category weights in use.
func (c *Calculator) Weights() Weights { return c.weights }

// Result holds every student's category scores and final percentage, in
// gradebook row order.
type Result struct {
	PIDs       []string
	Categories map[gradebook.Category][]float64
	Totals     []float64
}

// Category returns one student's score in a category.
func (r *Result) Category(cat gradebook.Category, row int) float64 {
	return r.Categories[cat][row]
}

// CategoryScores computes the aggregate score of one category per student.
func (c *Calculator) CategoryScores(gb *gradebook.Gradebook, cat gradebook.Category) ([]float64, error) {
	switch cat {
	case gradebook.CategoryLab:
		processed, err := NormalizeLabs(gb, c.lateness)
		if err != nil {
			return nil, err
		}
		return LabTotal(processed)
	case gradebook.CategoryProject:
		processed, err := NormalizeProjects(gb)
		if err != nil {
			return nil, err
		}
		return MeanTotal(processed)
	case gradebook.CategoryMidterm, gradebook.CategoryFinal:
		return ExamScore(gb, cat)
	case gradebook.CategoryDiscussion, gradebook.CategoryCheckpoint:
		processed, err := NormalizeCategory(gb, cat)
		if err != nil {
			return nil, err
		}
		return MeanTotal(processed)
	default:
		return nil, fmt.Errorf("unknown category %q", cat)
	}
}

// Compute scores every category and combines them with the weights. A
// student with an undefined category score gets an undefined total.
func (c *Calculator) Compute(gb *gradebook.Gradebook) (*Result, error) {
	res := &Result{
		PIDs:       gb.PIDs(),
		Categories: make(map[gradebook.Category][]float64, len(gradebook.AllCategories())),
		Totals:     make([]float64, gb.Len()),
	}
	for _, cat := range gradebook.AllCategories() {
		scores, err := c.CategoryScores(gb, cat)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cat.DisplayName(), err)
		}
		res.Categories[cat] = scores
		w := c.weights.For(cat)
		if w == 0 {
			continue
		}
		for i, s := range scores {
			res.Totals[i] += w * s
		}
	}
	return res, nil
}

// Totals returns only the weighted percentages.
func (c *Calculator) Totals(gb *gradebook.Gradebook) ([]float64, error) {
	res, err := c.Compute(gb)
	if err != nil {
		return nil, err
	}
	return res.Totals, nil
}

// ComputeTotal scores a gradebook with the default course weighting.
func ComputeTotal(gb *gradebook.Gradebook) ([]float64, error) {
	return DefaultCalculator().Totals(gb)
}

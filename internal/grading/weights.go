package grading

import (
	"fmt"
	"math"

	"github.com/abhisek/gradebook/internal/gradebook"
)

// weightTolerance absorbs float rounding when checking that weights sum to 1.
const weightTolerance = 1e-9

// Weights holds each category's share of the final percentage.
type Weights struct {
	Discussion float64 `json:"discussion"`
	Checkpoint float64 `json:"checkpoint"`
	Project    float64 `json:"project"`
	Lab        float64 `json:"lab"`
	Midterm    float64 `json:"midterm"`
	Final      float64 `json:"final"`
}

// DefaultWeights returns the course weighting.
func DefaultWeights() Weights {
	return Weights{
		Discussion: 0.025,
		Checkpoint: 0.025,
		Project:    0.30,
		Lab:        0.20,
		Midterm:    0.15,
		Final:      0.30,
	}
}

// NewWeights builds a validated Weights.
func NewWeights(discussion, checkpoint, project, lab, midterm, final float64) (Weights, error) {
	w := Weights{
		Discussion: discussion,
		Checkpoint: checkpoint,
		Project:    project,
		Lab:        lab,
		Midterm:    midterm,
		Final:      final,
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// For returns the weight of a category.
func (w Weights) For(cat gradebook.Category) float64 {
	switch cat {
	case gradebook.CategoryDiscussion:
		return w.Discussion
	case gradebook.CategoryCheckpoint:
		return w.Checkpoint
	case gradebook.CategoryProject:
		return w.Project
	case gradebook.CategoryLab:
		return w.Lab
	case gradebook.CategoryMidterm:
		return w.Midterm
	case gradebook.CategoryFinal:
		return w.Final
	default:
		return 0
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Discussion + w.Checkpoint + w.Project + w.Lab + w.Midterm + w.Final
}

// Validate checks that every weight is non-negative and they sum to 1.
func (w Weights) Validate() error {
	for _, cat := range gradebook.AllCategories() {
		if v := w.For(cat); v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weight for %q must be >= 0, got %v", cat, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	return nil
}

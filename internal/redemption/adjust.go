package redemption

import (
	"fmt"
	"math"

	"github.com/abhisek/gradebook/internal/gradebook"
	"github.com/abhisek/gradebook/internal/grading"
	"github.com/abhisek/gradebook/internal/letters"
	"github.com/abhisek/gradebook/internal/table"
)

// Combined is a gradebook restricted to students who also have a raw
// redemption score.
type Combined struct {
	Gradebook *gradebook.Gradebook
	// Report lists the PIDs excluded by the inner join.
	Report table.JoinReport
}

// Combine inner-joins the gradebook with raw redemption scores on PID.
// Students missing from either side are dropped from all further analysis;
// Report names them so callers can surface the mismatch.
func Combine(gb *gradebook.Gradebook, raw *table.Table) (*Combined, error) {
	if !raw.Has(ScoreColumn) {
		return nil, fmt.Errorf("raw scores: missing %q column", ScoreColumn)
	}
	joined, report, err := table.InnerJoin(gb.Table(), raw)
	if err != nil {
		return nil, fmt.Errorf("combine: %w", err)
	}
	merged, err := gradebook.New(joined)
	if err != nil {
		return nil, fmt.Errorf("combine: %w", err)
	}
	return &Combined{Gradebook: merged, Report: report}, nil
}

// RawScores returns the redemption percentage of each combined student.
func (c *Combined) RawScores() ([]float64, error) {
	return c.Gradebook.Numbers(ScoreColumn)
}

// StudentAdjustment is one student's midterm before and after redemption.
type StudentAdjustment struct {
	PID       string
	Raw       float64
	Pre       float64
	Post      float64
	PreTotal  float64
	PostTotal float64
	PreGrade  letters.Grade
	PostGrade letters.Grade
}

// Improved reports whether redemption raised the midterm score.
func (s StudentAdjustment) Improved() bool { return s.Post > s.Pre }

// GradeChanged reports whether the letter grade moved.
func (s StudentAdjustment) GradeChanged() bool { return s.PreGrade != s.PostGrade }

// Adjustment holds the redemption outcome for a whole cohort.
type Adjustment struct {
	Students []StudentAdjustment
	// MidtermMean and MidtermStd describe the pre-redemption midterm
	// distribution that redemption scores are rescaled onto.
	MidtermMean float64
	MidtermStd  float64
}

// ProportionImproved is the fraction of students whose letter grade changed.
// It is NaN when there are no students.
func (a *Adjustment) ProportionImproved() float64 {
	if len(a.Students) == 0 {
		return math.NaN()
	}
	n := 0
	for _, s := range a.Students {
		if s.GradeChanged() {
			n++
		}
	}
	return float64(n) / float64(len(a.Students))
}

// Pre returns every student's pre-redemption midterm percentage.
func (a *Adjustment) Pre() []float64 {
	out := make([]float64, len(a.Students))
	for i, s := range a.Students {
		out[i] = s.Pre
	}
	return out
}

// Post returns every student's post-redemption midterm percentage.
func (a *Adjustment) Post() []float64 {
	out := make([]float64, len(a.Students))
	for i, s := range a.Students {
		out[i] = s.Post
	}
	return out
}

// PostTotals returns every student's recomputed course percentage.
func (a *Adjustment) PostTotals() []float64 {
	out := make([]float64, len(a.Students))
	for i, s := range a.Students {
		out[i] = s.PostTotal
	}
	return out
}

// Adjuster applies midterm redemption with a given calculator and scale.
type Adjuster struct {
	calc  *grading.Calculator
	scale letters.Scale
}

// NewAdjuster returns an Adjuster.
func NewAdjuster(calc *grading.Calculator, scale letters.Scale) *Adjuster {
	return &Adjuster{calc: calc, scale: scale}
}

// PostRedemption rescales redemption onto the midterm distribution:
//
//	post = post_z·std(pre) + mean(pre)   if pre_z < post_z
//	post = pre                           otherwise
//
// so no midterm score ever decreases. pre and raw are population-wide.
func PostRedemption(pre, raw []float64) []float64 {
	preZ, rawZ := ZScores(pre), ZScores(raw)
	mean, std := Mean(pre), PopulationStd(pre)
	out := make([]float64, len(pre))
	for i := range pre {
		if preZ[i] < rawZ[i] {
			out[i] = rawZ[i]*std + mean
		} else {
			out[i] = pre[i]
		}
	}
	return out
}

// Adjust computes pre/post midterm scores and totals for every combined
// student. The post total swaps the old midterm contribution for the new one.
func (a *Adjuster) Adjust(c *Combined) (*Adjustment, error) {
	gb := c.Gradebook
	pre, err := grading.ExamScore(gb, gradebook.CategoryMidterm)
	if err != nil {
		return nil, fmt.Errorf("midterm: %w", err)
	}
	raw, err := c.RawScores()
	if err != nil {
		return nil, err
	}
	totals, err := a.calc.Totals(gb)
	if err != nil {
		return nil, fmt.Errorf("pre-redemption totals: %w", err)
	}

	post := PostRedemption(pre, raw)
	w := a.calc.Weights().Midterm
	pids := gb.PIDs()

	adj := &Adjustment{
		Students:    make([]StudentAdjustment, len(pids)),
		MidtermMean: Mean(pre),
		MidtermStd:  PopulationStd(pre),
	}
	for i, pid := range pids {
		postTotal := totals[i] - pre[i]*w + post[i]*w
		adj.Students[i] = StudentAdjustment{
			PID:       pid,
			Raw:       raw[i],
			Pre:       pre[i],
			Post:      post[i],
			PreTotal:  totals[i],
			PostTotal: postTotal,
			PreGrade:  a.scale.Letter(totals[i]),
			PostGrade: a.scale.Letter(postTotal),
		}
	}
	return adj, nil
}

// ProportionImproved runs the default adjuster and returns the fraction of
// students whose letter grade changed.
func ProportionImproved(c *Combined) (float64, error) {
	adj, err := NewAdjuster(grading.DefaultCalculator(), letters.DefaultScale()).Adjust(c)
	if err != nil {
		return 0, err
	}
	return adj.ProportionImproved(), nil
}

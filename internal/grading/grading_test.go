package grading

import (
	"math"
	"testing"

	"github.com/abhisek/gradebook/internal/gradebook"
	"github.com/abhisek/gradebook/internal/gradebook/gradebooktest"
	"github.com/abhisek/gradebook/internal/lateness"
	"github.com/abhisek/gradebook/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

var missing = gradebooktest.Missing

func numbers(t *testing.T, tbl *table.Table, name string) []float64 {
	t.Helper()
	v, err := tbl.Numbers(name)
	require.NoError(t, err)
	return v
}

// fullGradebook has one student with a score in every category and one who
// submitted nothing.
func fullGradebook(t *testing.T) *gradebook.Gradebook {
	return gradebooktest.New(t, "A1", "A2").
		OnTimeLab("lab01", 10, 10, missing).
		OnTimeLab("lab02", 10, 6, missing).
		OnTimeLab("lab03", 10, 8, missing).
		Assignment("project01", 20, 18, missing).
		FreeResponse("project01", 5, 4, missing).
		Assignment("project01_checkpoint01", 2, 1, missing).
		Assignment("discussion01", 10, 10, missing).
		Assignment("Midterm", 50, 30, missing).
		Assignment("Final", 100, 80, missing).
		Gradebook()
}

func TestWeights_SumToOne(t *testing.T) {
	w := DefaultWeights()
	assert.InDelta(t, 1.0, w.Sum(), epsilon)
	require.NoError(t, w.Validate())
}

func TestNewWeights_Validates(t *testing.T) {
	_, err := NewWeights(0.1, 0.1, 0.1, 0.1, 0.1, 0.1)
	require.Error(t, err)

	_, err = NewWeights(-0.1, 0.1, 0.3, 0.2, 0.2, 0.3)
	require.Error(t, err)

	w, err := NewWeights(0, 0, 0.5, 0.1, 0.1, 0.3)
	require.NoError(t, err)
	assert.Equal(t, 0.5, w.For(gradebook.CategoryProject))
}

func TestNormalizeLabs_SingleLabScenario(t *testing.T) {
	gb := gradebooktest.New(t, "A1").
		Lab("lab01", 10, []float64{8}, []string{"00:30:00"}).
		Assignment("Midterm", 1, 1).
		Assignment("Final", 1, 1).
		Gradebook()

	processed, err := NormalizeLabs(gb, lateness.DefaultPolicy())
	require.NoError(t, err)
	assert.InDelta(t, 0.8, numbers(t, processed, "lab01")[0], epsilon)

	total, err := LabTotal(processed)
	require.NoError(t, err)
	assert.True(t, IsUndefined(total[0]), "single-lab aggregate should be undefined, got %v", total[0])
}

func TestNormalizeLabs_LatenessAndMissing(t *testing.T) {
	gb := gradebooktest.New(t, "A1", "A2", "A3").
		Lab("lab01", 10, []float64{10, 10, missing}, []string{"03:00:00", "400:00:00", "00:00:00"}).
		Assignment("Midterm", 1, 1, 1, 1).
		Assignment("Final", 1, 1, 1, 1).
		Gradebook()

	processed, err := NormalizeLabs(gb, lateness.DefaultPolicy())
	require.NoError(t, err)
	got := numbers(t, processed, "lab01")
	assert.InDelta(t, 0.9, got[0], epsilon)
	assert.InDelta(t, 0.4, got[1], epsilon)
	assert.Equal(t, 0.0, got[2])
}

func TestNormalizeLabs_BadLateness(t *testing.T) {
	gb := gradebooktest.New(t, "A1").
		Lab("lab01", 10, []float64{8}, []string{"late"}).
		Assignment("Midterm", 1, 1).
		Assignment("Final", 1, 1).
		Gradebook()

	_, err := NormalizeLabs(gb, lateness.DefaultPolicy())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lab01")
}

func TestLabTotal_DropsLowest(t *testing.T) {
	tests := []struct {
		name string
		labs []float64
		want float64
	}{
		{"drops min", []float64{0.5, 0.9, 0.7}, 0.8},
		{"tie drops one", []float64{0.5, 0.5, 1.0}, 0.75},
		{"two labs", []float64{0.2, 0.6}, 0.6},
		{"all equal", []float64{1, 1, 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := table.New([]string{"A1"})
			require.NoError(t, err)
			for i, v := range tt.labs {
				require.NoError(t, tbl.AddNumbers(string(rune('a'+i)), []float64{v}))
			}
			got, err := LabTotal(tbl)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got[0], epsilon)
		})
	}
}

func TestLabTotal_NoLabs(t *testing.T) {
	tbl, err := table.New([]string{"A1"})
	require.NoError(t, err)
	got, err := LabTotal(tbl)
	require.NoError(t, err)
	assert.True(t, IsUndefined(got[0]))
}

func TestNormalizeProjects_FreeResponse(t *testing.T) {
	gb := gradebooktest.New(t, "A1", "A2").
		Assignment("project01", 20, 18, missing).
		FreeResponse("project01", 5, 4, 5).
		Assignment("project02", 10, 5, 10).
		Assignment("Midterm", 1, 1, 1).
		Assignment("Final", 1, 1, 1).
		Gradebook()

	processed, err := NormalizeProjects(gb)
	require.NoError(t, err)
	assert.Equal(t, []string{"project01", "project02"}, processed.Names())

	p1 := numbers(t, processed, "project01")
	assert.InDelta(t, 0.88, p1[0], epsilon)
	assert.InDelta(t, 0.2, p1[1], epsilon)

	mean, err := MeanTotal(processed)
	require.NoError(t, err)
	assert.InDelta(t, (0.88+0.5)/2, mean[0], epsilon)
	assert.InDelta(t, (0.2+1.0)/2, mean[1], epsilon)
}

func TestNormalizeCategory_DiscussionMean(t *testing.T) {
	gb := gradebooktest.New(t, "A1").
		Assignment("disc01", 4, 4).
		Assignment("disc02", 4, missing).
		Assignment("Midterm", 1, 1).
		Assignment("Final", 1, 1).
		Gradebook()

	processed, err := NormalizeCategory(gb, gradebook.CategoryDiscussion)
	require.NoError(t, err)
	mean, err := MeanTotal(processed)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, mean[0], epsilon)
}

func TestNormalizeCategory_GarbageInPassesThrough(t *testing.T) {
	gb := gradebooktest.New(t, "A1").
		Assignment("disc01", 4, 6).
		Assignment("Midterm", 1, 1).
		Assignment("Final", 1, 1).
		Gradebook()

	processed, err := NormalizeCategory(gb, gradebook.CategoryDiscussion)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, numbers(t, processed, "disc01")[0], epsilon)
}

func TestExamScore(t *testing.T) {
	gb := fullGradebook(t)
	mid, err := ExamScore(gb, gradebook.CategoryMidterm)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, mid[0], epsilon)
	assert.Equal(t, 0.0, mid[1])

	_, err = ExamScore(gb, gradebook.CategoryLab)
	require.Error(t, err)
}

func TestCompute_FullGradebook(t *testing.T) {
	res, err := DefaultCalculator().Compute(fullGradebook(t))
	require.NoError(t, err)

	assert.InDelta(t, 0.9, res.Category(gradebook.CategoryLab, 0), epsilon)
	assert.InDelta(t, 0.88, res.Category(gradebook.CategoryProject, 0), epsilon)
	assert.InDelta(t, 0.5, res.Category(gradebook.CategoryCheckpoint, 0), epsilon)
	assert.InDelta(t, 1.0, res.Category(gradebook.CategoryDiscussion, 0), epsilon)

	// 0.025*1 + 0.025*0.5 + 0.3*0.88 + 0.2*0.9 + 0.15*0.6 + 0.3*0.8
	assert.InDelta(t, 0.8115, res.Totals[0], epsilon)
	assert.InDelta(t, 0.0, res.Totals[1], epsilon)
}

func TestCompute_EmptyCategoryIsUndefined(t *testing.T) {
	gb := gradebooktest.New(t, "A1").
		OnTimeLab("lab01", 10, 10).
		OnTimeLab("lab02", 10, 10).
		Assignment("project01", 10, 10).
		Assignment("disc01", 10, 10).
		Assignment("Midterm", 10, 10).
		Assignment("Final", 10, 10).
		Gradebook()

	totals, err := ComputeTotal(gb)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(totals[0]), "no checkpoints should leave the total undefined")

	w, err := NewWeights(0.05, 0, 0.3, 0.2, 0.15, 0.3)
	require.NoError(t, err)
	calc, err := NewCalculator(w, lateness.DefaultPolicy())
	require.NoError(t, err)
	totals, err = calc.Totals(gb)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, totals[0], epsilon)
}

func TestNewCalculator_RejectsBadPolicy(t *testing.T) {
	_, err := NewCalculator(DefaultWeights(), lateness.Policy{Otherwise: 2})
	require.Error(t, err)
}

func TestCompute_DoesNotMutateGradebook(t *testing.T) {
	gb := fullGradebook(t)
	before, err := gb.Numbers("lab01")
	require.NoError(t, err)

	_, err = DefaultCalculator().Compute(gb)
	require.NoError(t, err)

	after, err := gb.Numbers("lab01")
	require.NoError(t, err)
	assert.Equal(t, before[0], after[0])
	assert.True(t, math.IsNaN(after[1]))
}

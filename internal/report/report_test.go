package report

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/gradebook/internal/gradebook"
	"github.com/abhisek/gradebook/internal/gradebook/gradebooktest"
	"github.com/abhisek/gradebook/internal/grading"
	"github.com/abhisek/gradebook/internal/letters"
	"github.com/abhisek/gradebook/internal/redemption"
	"github.com/abhisek/gradebook/internal/store"
	"github.com/abhisek/gradebook/internal/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *grading.Result {
	nan := math.NaN()
	return &grading.Result{
		PIDs: []string{"A1", "A2"},
		Categories: map[gradebook.Category][]float64{
			gradebook.CategoryLab:        {0.9, nan},
			gradebook.CategoryProject:    {0.8, 0.5},
			gradebook.CategoryMidterm:    {0.7, 0.6},
			gradebook.CategoryFinal:      {0.95, 0.4},
			gradebook.CategoryDiscussion: {1, 1},
			gradebook.CategoryCheckpoint: {1, 0},
		},
		Totals: []float64{0.875, nan},
	}
}

func sampleAdjustment() *redemption.Adjustment {
	return &redemption.Adjustment{
		Students: []redemption.StudentAdjustment{
			{PID: "A1", Raw: 0.9, Pre: 0.4, Post: 0.6, PreTotal: 0.79, PostTotal: 0.82, PreGrade: "C", PostGrade: "B"},
			{PID: "A2", Raw: 0.1, Pre: 0.8, Post: 0.8, PreTotal: 0.91, PostTotal: 0.91, PreGrade: "A", PostGrade: "A"},
		},
		MidtermMean: 0.6,
		MidtermStd:  0.2,
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "87.50%", Percent(0.875))
	assert.Equal(t, "0.00%", Percent(0))
	assert.Equal(t, "n/a", Percent(math.NaN()))
}

func TestTotals(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Totals(&buf, sampleResult(), letters.DefaultScale()))

	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "Final grades")
	assert.Contains(t, out, "Labs")
	assert.Contains(t, out, "87.50%")
	assert.Contains(t, out, "n/a")

	lines := strings.Split(out, "\n")
	var a2 string
	for _, l := range lines {
		if strings.Contains(l, "A2") {
			a2 = l
		}
	}
	require.NotEmpty(t, a2)
	assert.Contains(t, a2, " I ")
}

func TestDistribution(t *testing.T) {
	var buf bytes.Buffer
	shares := letters.DefaultScale().Distribution([]float64{0.95, 0.92, 0.85, 0.2})
	require.NoError(t, Distribution(&buf, shares))

	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "Grade distribution")
	assert.Contains(t, out, " 50.0%")
	assert.Contains(t, out, " 25.0%")

	buf.Reset()
	require.NoError(t, Distribution(&buf, nil))
	assert.Contains(t, ansi.Strip(buf.String()), "no students")
}

func TestRedemption(t *testing.T) {
	var buf bytes.Buffer
	join := table.JoinReport{LeftOnly: []string{"Z1"}}
	require.NoError(t, Redemption(&buf, sampleAdjustment(), join))

	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "Midterm redemption")
	assert.Contains(t, out, "C → B")
	assert.Contains(t, out, "Proportion improved: 50.00%")
	assert.Contains(t, out, "Dropped by join:     1")
}

func TestSchema(t *testing.T) {
	gb := gradebooktest.New(t, "A1").
		OnTimeLab("lab01", 10, 9).
		Assignment("Midterm", 50, 40).
		Assignment("Final", 100, 80).
		Gradebook()

	var buf bytes.Buffer
	require.NoError(t, Schema(&buf, gb.Schema()))
	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "lab01 - Max Points")
	assert.Contains(t, out, "Labs: 1")
	assert.Contains(t, out, "Midterm: 1")
}

func TestRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Runs(&buf, nil))
	assert.Contains(t, ansi.Strip(buf.String()), "No runs recorded yet.")

	buf.Reset()
	runs := []store.Run{
		{ID: "r-2", Kind: store.KindRedemption, Source: "scores.xlsx", CreatedAt: time.Now(), Students: 4, ProportionImproved: 0.25},
		{ID: "r-1", Kind: store.KindGrade, Source: "grades.csv", CreatedAt: time.Now(), Students: 3, ProportionImproved: math.NaN()},
	}
	require.NoError(t, Runs(&buf, runs))
	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "scores.xlsx")
	assert.Contains(t, out, "25.00%")
	assert.NotContains(t, out, "n/a")
}

func TestWriteTotalsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTotalsCSV(&buf, sampleResult(), letters.DefaultScale()))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"PID", "lab", "project", "midterm", "final", "disc", "checkpoint", "total", "grade"}, recs[0])
	assert.Equal(t, "0.875", recs[1][7])
	assert.Equal(t, "B", recs[1][8])
	assert.Equal(t, "", recs[2][1])
	assert.Equal(t, "I", recs[2][8])
}

func TestWriteRedemptionCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRedemptionCSV(&buf, sampleAdjustment()))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "improved", recs[0][8])
	assert.Equal(t, []string{"A1", "0.9", "0.4", "0.6", "0.79", "0.82", "C", "B", "true"}, recs[1])
	assert.Equal(t, "false", recs[2][8])
}

func TestArchiveRows(t *testing.T) {
	rows := GradeResults(sampleResult(), letters.DefaultScale())
	require.Len(t, rows, 2)
	assert.Equal(t, "B", rows[0].Grade)
	assert.True(t, math.IsNaN(rows[0].PostTotal))
	assert.Empty(t, rows[0].PostGrade)

	rows = RedemptionResults(sampleAdjustment())
	assert.Equal(t, "B", rows[0].PostGrade)
	assert.Equal(t, 0.82, rows[0].PostTotal)
}

func TestWriteResultsCSV(t *testing.T) {
	var buf bytes.Buffer
	results := []store.StudentResult{
		{PID: "A1", Total: 0.5, Grade: "F", PostTotal: math.NaN()},
		{PID: "A2", Total: 0.75, Grade: "C", PostTotal: 0.8, PostGrade: "B"},
	}
	require.NoError(t, WriteResultsCSV(&buf, results))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "0.5", "F", "", ""}, recs[1])
	assert.Equal(t, []string{"A2", "0.75", "C", "0.8", "B"}, recs[2])
}

func TestDistributionChart(t *testing.T) {
	var buf bytes.Buffer
	scale := letters.DefaultScale()
	shares := scale.Distribution([]float64{0.95, 0.85, 0.83, math.NaN()})
	require.NoError(t, DistributionChart(&buf, "CSE 101 grades", scale, shares))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "CSE 101 grades")
	assert.Contains(t, html, "Students per letter grade")
}

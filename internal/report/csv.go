package report

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/abhisek/gradebook/internal/gradebook"
	"github.com/abhisek/gradebook/internal/grading"
	"github.com/abhisek/gradebook/internal/letters"
	"github.com/abhisek/gradebook/internal/redemption"
	"github.com/abhisek/gradebook/internal/store"
	"github.com/abhisek/gradebook/internal/table"
)

// formatScore writes undefined values as empty cells so the export reads
// back through the loader as missing.
func formatScore(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteTotalsCSV exports category scores, totals and letters.
func WriteTotalsCSV(w io.Writer, res *grading.Result, scale letters.Scale) error {
	cw := csv.NewWriter(w)
	cats := gradebook.AllCategories()

	header := []string{table.KeyColumn}
	for _, cat := range cats {
		header = append(header, string(cat))
	}
	header = append(header, "total", "grade")
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, pid := range res.PIDs {
		rec := []string{pid}
		for _, cat := range cats {
			rec = append(rec, formatScore(res.Category(cat, i)))
		}
		rec = append(rec, formatScore(res.Totals[i]), string(scale.Letter(res.Totals[i])))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRedemptionCSV exports the per-student redemption outcome.
func WriteRedemptionCSV(w io.Writer, adj *redemption.Adjustment) error {
	cw := csv.NewWriter(w)
	header := []string{table.KeyColumn, "raw", "midterm", "redeemed", "total", "new_total", "grade", "new_grade", "improved"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range adj.Students {
		rec := []string{
			s.PID,
			formatScore(s.Raw),
			formatScore(s.Pre),
			formatScore(s.Post),
			formatScore(s.PreTotal),
			formatScore(s.PostTotal),
			string(s.PreGrade),
			string(s.PostGrade),
			strconv.FormatBool(s.Improved()),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// GradeResults converts a grading result into archive rows.
func GradeResults(res *grading.Result, scale letters.Scale) []store.StudentResult {
	out := make([]store.StudentResult, len(res.PIDs))
	for i, pid := range res.PIDs {
		out[i] = store.StudentResult{
			PID:       pid,
			Total:     res.Totals[i],
			Grade:     string(scale.Letter(res.Totals[i])),
			PostTotal: math.NaN(),
		}
	}
	return out
}

// RedemptionResults converts a redemption adjustment into archive rows.
func RedemptionResults(adj *redemption.Adjustment) []store.StudentResult {
	out := make([]store.StudentResult, len(adj.Students))
	for i, s := range adj.Students {
		out[i] = store.StudentResult{
			PID:       s.PID,
			Total:     s.PreTotal,
			Grade:     string(s.PreGrade),
			PostTotal: s.PostTotal,
			PostGrade: string(s.PostGrade),
		}
	}
	return out
}

// WriteResultsCSV exports archived student results. Post columns are left
// empty for runs without redemption.
func WriteResultsCSV(w io.Writer, results []store.StudentResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{table.KeyColumn, "total", "grade", "new_total", "new_grade"}); err != nil {
		return err
	}
	for _, r := range results {
		rec := []string{r.PID, formatScore(r.Total), r.Grade, formatScore(r.PostTotal), r.PostGrade}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

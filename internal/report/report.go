// Package report renders grading results for the terminal and as CSV.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"charm.land/lipgloss/v2"
	lgtable "charm.land/lipgloss/v2/table"

	"github.com/abhisek/gradebook/internal/gradebook"
	"github.com/abhisek/gradebook/internal/grading"
	"github.com/abhisek/gradebook/internal/letters"
	"github.com/abhisek/gradebook/internal/redemption"
	"github.com/abhisek/gradebook/internal/store"
	"github.com/abhisek/gradebook/internal/table"
	"github.com/abhisek/gradebook/internal/ui/components"
	"github.com/abhisek/gradebook/internal/ui/theme"
)

const (
	// undefinedCell stands in for NaN scores.
	undefinedCell = "n/a"
	barWidth      = 40
)

// Percent formats a score in [0, 1] as a percentage.
func Percent(v float64) string {
	if math.IsNaN(v) {
		return undefinedCell
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func newTable(headers ...string) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(theme.TableBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return theme.TableHeader
			}
			return theme.TableCell
		})
}

// Totals prints one row per student with category scores, total and letter.
func Totals(w io.Writer, res *grading.Result, scale letters.Scale) error {
	cats := gradebook.AllCategories()
	headers := []string{table.KeyColumn}
	for _, cat := range cats {
		headers = append(headers, cat.DisplayName())
	}
	headers = append(headers, "Total", "Grade")

	t := newTable(headers...)
	for i, pid := range res.PIDs {
		row := []string{pid}
		for _, cat := range cats {
			row = append(row, Percent(res.Category(cat, i)))
		}
		total := res.Totals[i]
		row = append(row, Percent(total), theme.Grade(string(scale.Letter(total))))
		t.Row(row...)
	}

	_, err := lipgloss.Fprintln(w, theme.Title.Render("Final grades"))
	if err != nil {
		return err
	}
	_, err = lipgloss.Fprintln(w, t.Render())
	return err
}

// Distribution prints a bar per letter grade.
func Distribution(w io.Writer, shares []letters.Share) error {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Grade distribution"))
	b.WriteByte('\n')
	if len(shares) == 0 {
		b.WriteString(theme.Hint.Render("no students"))
	}
	for i, s := range shares {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(components.NewGradeBar(string(s.Grade), s.Count, s.Proportion, barWidth).View())
	}
	_, err := lipgloss.Fprintln(w, b.String())
	return err
}

// Redemption prints per-student midterm and total changes followed by a
// summary of the cohort.
func Redemption(w io.Writer, adj *redemption.Adjustment, join table.JoinReport) error {
	t := newTable(table.KeyColumn, "Raw", "Midterm", "Redeemed", "Total", "New total", "Grade")
	for _, s := range adj.Students {
		grade := theme.Grade(string(s.PreGrade))
		if s.GradeChanged() {
			grade += " → " + theme.Improved.Render(string(s.PostGrade))
		}
		redeemed := Percent(s.Post)
		if s.Improved() {
			redeemed = theme.Improved.Render(redeemed)
		} else {
			redeemed = theme.Unchanged.Render(redeemed)
		}
		t.Row(s.PID, Percent(s.Raw), Percent(s.Pre), redeemed,
			Percent(s.PreTotal), Percent(s.PostTotal), grade)
	}

	lines := []string{
		fmt.Sprintf("Students:            %d", len(adj.Students)),
		fmt.Sprintf("Midterm mean / std:  %s / %s", Percent(adj.MidtermMean), Percent(adj.MidtermStd)),
		fmt.Sprintf("Proportion improved: %s", Percent(adj.ProportionImproved())),
	}
	if n := join.Dropped(); n > 0 {
		lines = append(lines, theme.Warn.Render(fmt.Sprintf("Dropped by join:     %d", n)))
	}

	_, err := lipgloss.Fprintln(w, theme.Title.Render("Midterm redemption"))
	if err != nil {
		return err
	}
	if _, err := lipgloss.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err = lipgloss.Fprintln(w, theme.Summary.Render(strings.Join(lines, "\n")))
	return err
}

// Schema prints how every gradebook column was classified.
func Schema(w io.Writer, s *gradebook.Schema) error {
	t := newTable("Column", "Role", "Assignment", "Categories")
	for _, c := range s.Columns() {
		cats := make([]string, len(c.Categories))
		for i, cat := range c.Categories {
			cats[i] = string(cat)
		}
		t.Row(c.Name, c.Role.String(), c.Assignment, strings.Join(cats, ","))
	}

	var counts []string
	for _, cat := range gradebook.AllCategories() {
		counts = append(counts, fmt.Sprintf("%s: %d", cat.DisplayName(), len(s.Assignments(cat))))
	}

	if _, err := lipgloss.Fprintln(w, t.Render()); err != nil {
		return err
	}
	if _, err := lipgloss.Fprintln(w, theme.Subtitle.Render(strings.Join(counts, "  "))); err != nil {
		return err
	}
	for _, c := range s.Ambiguous() {
		msg := fmt.Sprintf("warning: %q matches several categories", c.Name)
		if _, err := lipgloss.Fprintln(w, theme.Warn.Render(msg)); err != nil {
			return err
		}
	}
	return nil
}

// Runs prints archived runs, newest first.
func Runs(w io.Writer, runs []store.Run) error {
	if len(runs) == 0 {
		_, err := lipgloss.Fprintln(w, theme.Hint.Render("No runs recorded yet."))
		return err
	}
	t := newTable("ID", "When", "Kind", "Source", "Students", "Improved")
	for _, r := range runs {
		improved := ""
		if r.Kind == store.KindRedemption {
			improved = Percent(r.ProportionImproved)
		}
		t.Row(r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), string(r.Kind),
			r.Source, fmt.Sprint(r.Students), improved)
	}
	_, err := lipgloss.Fprintln(w, t.Render())
	return err
}

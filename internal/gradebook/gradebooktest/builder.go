// Package gradebooktest builds small in-memory gradebooks for tests.
package gradebooktest

import (
	"math"
	"testing"

	"github.com/abhisek/gradebook/internal/gradebook"
	"github.com/abhisek/gradebook/internal/table"
)

// Missing marks an empty score cell.
var Missing = math.NaN()

// Builder accumulates columns for a fixed set of PIDs.
type Builder struct {
	t   testing.TB
	tbl *table.Table
}

// New starts a builder for the given students.
func New(t testing.TB, pids ...string) *Builder {
	t.Helper()
	tbl, err := table.New(pids)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return &Builder{t: t, tbl: tbl}
}

func (b *Builder) numbers(name string, vals []float64) {
	b.t.Helper()
	if err := b.tbl.AddNumbers(name, vals); err != nil {
		b.t.Fatalf("add %q: %v", name, err)
	}
}

func (b *Builder) text(name string, vals []string) {
	b.t.Helper()
	if err := b.tbl.AddText(name, vals); err != nil {
		b.t.Fatalf("add %q: %v", name, err)
	}
}

func (b *Builder) fill(v float64) []float64 {
	out := make([]float64, b.tbl.Len())
	for i := range out {
		out[i] = v
	}
	return out
}

// Assignment adds a score column and its Max Points column.
func (b *Builder) Assignment(name string, max float64, scores ...float64) *Builder {
	b.t.Helper()
	b.numbers(name, scores)
	b.numbers(gradebook.MaxPointsColumn(name), b.fill(max))
	return b
}

// Lab adds a lab score column, its Max Points and lateness columns.
func (b *Builder) Lab(name string, max float64, scores []float64, lateness []string) *Builder {
	b.t.Helper()
	b.Assignment(name, max, scores...)
	b.text(gradebook.LatenessColumn(name), lateness)
	return b
}

// OnTimeLab adds a lab where every submission is on time.
func (b *Builder) OnTimeLab(name string, max float64, scores ...float64) *Builder {
	b.t.Helper()
	late := make([]string, b.tbl.Len())
	for i := range late {
		late[i] = "00:00:00"
	}
	return b.Lab(name, max, scores, late)
}

// FreeResponse adds a free-response sibling for a project.
func (b *Builder) FreeResponse(project string, max float64, scores ...float64) *Builder {
	b.t.Helper()
	return b.Assignment(gradebook.FreeResponseColumn(project), max, scores...)
}

// Numbers adds an arbitrary numeric column.
func (b *Builder) Numbers(name string, vals ...float64) *Builder {
	b.t.Helper()
	b.numbers(name, vals)
	return b
}

// Text adds an arbitrary text column.
func (b *Builder) Text(name string, vals ...string) *Builder {
	b.t.Helper()
	b.text(name, vals)
	return b
}

// Table returns the table built so far.
func (b *Builder) Table() *table.Table { return b.tbl.Clone() }

// Gradebook validates the table and fails the test on error.
func (b *Builder) Gradebook() *gradebook.Gradebook {
	b.t.Helper()
	gb, err := gradebook.New(b.tbl)
	if err != nil {
		b.t.Fatalf("new gradebook: %v", err)
	}
	return gb
}

package gradebook

import (
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/gradebook/internal/table"
)

// SchemaError lists every problem found while validating a gradebook.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("gradebook schema validation failed:\n  %s", strings.Join(e.Problems, "\n  "))
}

// Gradebook is a validated cohort table together with its column schema.
type Gradebook struct {
	table  *table.Table
	schema *Schema
}

// New classifies the columns of t and validates them. The table is copied.
func New(t *table.Table) (*Gradebook, error) {
	schema := Classify(t.Names())
	if err := schema.Validate(t); err != nil {
		return nil, err
	}
	return &Gradebook{table: t.Clone(), schema: schema}, nil
}

// Validate checks that t carries everything the normalizers need:
//   - a numeric, strictly positive Max Points column for every scored column
//   - a lateness column for every lab
//   - a Max Points column for every free-response sibling that is present
//   - exactly one raw column for each exam category
func (s *Schema) Validate(t *table.Table) error {
	var problems []string

	checkMax := func(col string) {
		maxCol := MaxPointsColumn(col)
		if !t.Has(maxCol) {
			problems = append(problems, fmt.Sprintf("column %q has no %q column", col, maxCol))
			return
		}
		vals, err := t.Numbers(maxCol)
		if err != nil {
			problems = append(problems, fmt.Sprintf("column %q: %v", maxCol, err))
			return
		}
		for i, v := range vals {
			if math.IsNaN(v) || v <= 0 {
				problems = append(problems, fmt.Sprintf("column %q row %d: max points must be > 0, got %v", maxCol, i, v))
				return
			}
		}
	}

	checkNumeric := func(col string) {
		if _, err := t.Numbers(col); err != nil {
			problems = append(problems, fmt.Sprintf("column %q: %v", col, err))
		}
	}

	seen := make(map[string]bool)
	for _, cat := range AllCategories() {
		for _, col := range s.assignments[cat] {
			if seen[col] {
				continue
			}
			seen[col] = true
			checkNumeric(col)
			checkMax(col)
		}
	}

	for _, lab := range s.assignments[CategoryLab] {
		lc := LatenessColumn(lab)
		if !t.Has(lc) {
			problems = append(problems, fmt.Sprintf("lab %q has no %q column", lab, lc))
			continue
		}
		if kind, _ := t.KindOf(lc); kind != table.KindText {
			problems = append(problems, fmt.Sprintf("column %q must hold H:M:S text", lc))
		}
	}

	for _, project := range s.assignments[CategoryProject] {
		fr := FreeResponseColumn(project)
		if t.Has(fr) {
			checkNumeric(fr)
			checkMax(fr)
		}
	}

	for _, cat := range []Category{CategoryMidterm, CategoryFinal} {
		if n := len(s.assignments[cat]); n != 1 {
			problems = append(problems, fmt.Sprintf("category %q must have exactly one column, found %d %v", cat, n, s.assignments[cat]))
		}
	}

	if len(problems) > 0 {
		return &SchemaError{Problems: problems}
	}
	return nil
}

// Table returns a copy of the underlying table.
func (g *Gradebook) Table() *table.Table { return g.table.Clone() }

// Schema returns the column schema.
func (g *Gradebook) Schema() *Schema { return g.schema }

// PIDs returns the student identifiers in row order.
func (g *Gradebook) PIDs() []string { return g.table.PIDs() }

// Len returns the number of students.
func (g *Gradebook) Len() int { return g.table.Len() }

// Assignments returns the raw score columns of a category.
func (g *Gradebook) Assignments(cat Category) []string { return g.schema.Assignments(cat) }

// Scores returns a raw score column with missing values treated as zero.
func (g *Gradebook) Scores(col string) ([]float64, error) {
	vals, err := g.table.Numbers(col)
	if err != nil {
		return nil, err
	}
	return table.FillMissing(vals, 0), nil
}

// MaxPoints returns the Max Points column for an assignment.
func (g *Gradebook) MaxPoints(col string) ([]float64, error) {
	return g.table.Numbers(MaxPointsColumn(col))
}

// Lateness returns the lateness column for a lab.
func (g *Gradebook) Lateness(lab string) ([]string, error) {
	return g.table.Text(LatenessColumn(lab))
}

// HasColumn reports whether the gradebook carries the named column.
func (g *Gradebook) HasColumn(name string) bool { return g.table.Has(name) }

// Numbers returns any numeric column as stored, NaN for missing.
func (g *Gradebook) Numbers(name string) ([]float64, error) { return g.table.Numbers(name) }

// Exam returns the single raw column of an exam category.
func (g *Gradebook) Exam(cat Category) (string, error) {
	cols := g.schema.assignments[cat]
	if len(cols) != 1 {
		return "", fmt.Errorf("category %q has %d columns, want 1", cat, len(cols))
	}
	return cols[0], nil
}

package redemption

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/abhisek/gradebook/internal/table"
)

// ScoreColumn names the raw redemption percentage column.
const ScoreColumn = "Raw Redemption Score"

var (
	ErrUnknownQuestion = errors.New("question not in breakdown")
	ErrNoQuestions     = errors.New("no questions selected")
)

// MalformedHeaderError reports a breakdown column that does not follow the
// "Question <n> (<max> pts)" convention. It is fatal for the whole load.
type MalformedHeaderError struct {
	Header string
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("malformed question header %q: %s", e.Header, e.Reason)
}

// Question is one parsed breakdown column.
type Question struct {
	Number    int
	MaxPoints float64
	Column    string
}

// headerPattern accepts "Question 3 (5 pts)" and "Question 3 ($5pts)": an
// opening parenthesis, at most one leading symbol before the number, then "pts)".
var headerPattern = regexp.MustCompile(`^Question (\d+) \(([^\d\s.])?\s*(\d+(?:\.\d+)?|\.\d+)\s*pts\)$`)

// ParseQuestionHeader parses a per-question breakdown header.
func ParseQuestionHeader(header string) (Question, error) {
	m := headerPattern.FindStringSubmatch(header)
	if m == nil {
		return Question{}, &MalformedHeaderError{Header: header, Reason: `want "Question <n> (<max> pts)"`}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Question{}, &MalformedHeaderError{Header: header, Reason: "question number: " + err.Error()}
	}
	pts, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Question{}, &MalformedHeaderError{Header: header, Reason: "max points: " + err.Error()}
	}
	if pts <= 0 {
		return Question{}, &MalformedHeaderError{Header: header, Reason: "max points must be > 0"}
	}
	return Question{Number: n, MaxPoints: pts, Column: header}, nil
}

// Breakdown is a parsed per-question score sheet keyed by PID.
type Breakdown struct {
	table     *table.Table
	questions []Question
	byNumber  map[int]int
}

// LoadBreakdown parses every non-key column of t as a question header.
func LoadBreakdown(t *table.Table) (*Breakdown, error) {
	b := &Breakdown{
		table:    t.Clone(),
		byNumber: make(map[int]int),
	}
	for _, col := range t.Names() {
		q, err := ParseQuestionHeader(col)
		if err != nil {
			return nil, err
		}
		if _, dup := b.byNumber[q.Number]; dup {
			return nil, &MalformedHeaderError{Header: col, Reason: fmt.Sprintf("duplicate question %d", q.Number)}
		}
		if kind, _ := t.KindOf(col); kind != table.KindNumber {
			return nil, fmt.Errorf("question %d: column %q is not numeric", q.Number, col)
		}
		b.byNumber[q.Number] = len(b.questions)
		b.questions = append(b.questions, q)
	}
	return b, nil
}

// Questions returns the parsed questions in column order.
func (b *Breakdown) Questions() []Question { return slices.Clone(b.questions) }

// Question looks up a question by number.
func (b *Breakdown) Question(n int) (Question, bool) {
	i, ok := b.byNumber[n]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

// PIDs returns the students in the breakdown.
func (b *Breakdown) PIDs() []string { return b.table.PIDs() }

// RawScores sums each student's points over the selected questions (missing
// counts as zero) and divides by their combined max points. The result has
// the PID key and a single ScoreColumn.
func RawScores(b *Breakdown, questions []int) (*table.Table, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	earned := make([]float64, b.table.Len())
	possible := 0.0
	seen := make(map[int]bool, len(questions))
	for _, n := range questions {
		if seen[n] {
			continue
		}
		seen[n] = true
		q, ok := b.Question(n)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownQuestion, n)
		}
		vals, err := b.table.Numbers(q.Column)
		if err != nil {
			return nil, err
		}
		for i, v := range table.FillMissing(vals, 0) {
			earned[i] += v
		}
		possible += q.MaxPoints
	}

	scores := make([]float64, len(earned))
	for i, e := range earned {
		scores[i] = e / possible
	}

	out, err := table.New(b.table.PIDs())
	if err != nil {
		return nil, err
	}
	if err := out.AddNumbers(ScoreColumn, scores); err != nil {
		return nil, err
	}
	return out, nil
}

package table

import (
	"fmt"
	"math"
)

// JoinReport lists the PIDs an inner join left out.
type JoinReport struct {
	LeftOnly  []string
	RightOnly []string
}

// Dropped returns the total number of excluded PIDs.
func (r JoinReport) Dropped() int {
	return len(r.LeftOnly) + len(r.RightOnly)
}

// InnerJoin merges right into left on PID. Rows follow left's order and only
// PIDs present in both tables survive. Column names other than the key must
// not collide.
func InnerJoin(left, right *Table) (*Table, JoinReport, error) {
	var report JoinReport

	for _, c := range right.cols {
		if left.Has(c.name) {
			return nil, report, fmt.Errorf("join: %w: %q on both sides", ErrDuplicateName, c.name)
		}
	}

	var pids []string
	var rightRows []int
	for _, p := range left.pids {
		if j, ok := right.rows[p]; ok {
			pids = append(pids, p)
			rightRows = append(rightRows, j)
		} else {
			report.LeftOnly = append(report.LeftOnly, p)
		}
	}
	for _, p := range right.pids {
		if _, ok := left.rows[p]; !ok {
			report.RightOnly = append(report.RightOnly, p)
		}
	}

	out, err := New(pids)
	if err != nil {
		return nil, report, err
	}

	leftRows := make([]int, len(pids))
	for i, p := range pids {
		leftRows[i] = left.rows[p]
	}
	for _, c := range left.cols {
		if err := out.add(pick(c, leftRows), len(pids)); err != nil {
			return nil, report, err
		}
	}
	for _, c := range right.cols {
		if err := out.add(pick(c, rightRows), len(pids)); err != nil {
			return nil, report, err
		}
	}
	return out, report, nil
}

func pick(c column, rows []int) column {
	out := column{name: c.name, kind: c.kind}
	switch c.kind {
	case KindNumber:
		out.nums = make([]float64, len(rows))
		for i, r := range rows {
			out.nums[i] = c.nums[r]
		}
	case KindText:
		out.text = make([]string, len(rows))
		for i, r := range rows {
			out.text[i] = c.text[r]
		}
	}
	return out
}

// RowMeans averages each row across the given numeric columns. A table with
// no columns yields NaN for every row.
func RowMeans(t *Table) ([]float64, error) {
	out := make([]float64, t.Len())
	if len(t.cols) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out, nil
	}
	for _, c := range t.cols {
		if c.kind != KindNumber {
			return nil, fmt.Errorf("column %q is %s: %w", c.name, c.kind, ErrWrongKind)
		}
		for i, v := range c.nums {
			out[i] += v
		}
	}
	n := float64(len(t.cols))
	for i := range out {
		out[i] /= n
	}
	return out, nil
}

// Rows returns the numeric columns transposed into one slice per row.
func Rows(t *Table) ([][]float64, error) {
	out := make([][]float64, t.Len())
	for i := range out {
		out[i] = make([]float64, 0, len(t.cols))
	}
	for _, c := range t.cols {
		if c.kind != KindNumber {
			return nil, fmt.Errorf("column %q is %s: %w", c.name, c.kind, ErrWrongKind)
		}
		for i, v := range c.nums {
			out[i] = append(out[i], v)
		}
	}
	return out, nil
}

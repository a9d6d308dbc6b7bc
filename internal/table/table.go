package table

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// KeyColumn is the name of the student identifier column shared by every table.
const KeyColumn = "PID"

// Kind is the storage type of a column.
type Kind int

const (
	KindNumber Kind = iota
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	ErrNoColumn      = errors.New("no such column")
	ErrWrongKind     = errors.New("column has the wrong kind")
	ErrLength        = errors.New("column length does not match row count")
	ErrDuplicateName = errors.New("duplicate column name")
	ErrDuplicateKey  = errors.New("duplicate PID")
	ErrEmptyKey      = errors.New("empty PID")
)

type column struct {
	name string
	kind Kind
	nums []float64
	text []string
}

func (c column) clone() column {
	return column{
		name: c.name,
		kind: c.kind,
		nums: slices.Clone(c.nums),
		text: slices.Clone(c.text),
	}
}

// Table is a column-oriented snapshot of one cohort, one row per PID.
// Numeric cells use NaN for missing values; text cells use "".
// Accessors hand out copies so a Table is never mutated through them.
type Table struct {
	pids  []string
	rows  map[string]int
	cols  []column
	index map[string]int
}

// New creates an empty table with one row per PID.
func New(pids []string) (*Table, error) {
	rows := make(map[string]int, len(pids))
	for i, p := range pids {
		if p == "" {
			return nil, fmt.Errorf("row %d: %w", i, ErrEmptyKey)
		}
		if _, dup := rows[p]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, p)
		}
		rows[p] = i
	}
	return &Table{
		pids:  slices.Clone(pids),
		rows:  rows,
		index: make(map[string]int),
	}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.pids) }

// PIDs returns the row keys in row order.
func (t *Table) PIDs() []string { return slices.Clone(t.pids) }

// Row returns the row index of pid.
func (t *Table) Row(pid string) (int, bool) {
	i, ok := t.rows[pid]
	return i, ok
}

// Names returns the column names in insertion order, excluding the key.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.name
	}
	return out
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// KindOf returns the kind of the named column.
func (t *Table) KindOf(name string) (Kind, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	return t.cols[i].kind, nil
}

func (t *Table) add(c column, n int) error {
	if c.name == "" || c.name == KeyColumn {
		return fmt.Errorf("invalid column name %q", c.name)
	}
	if _, ok := t.index[c.name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, c.name)
	}
	if n != len(t.pids) {
		return fmt.Errorf("column %q: %w (%d != %d)", c.name, ErrLength, n, len(t.pids))
	}
	t.index[c.name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// AddNumbers appends a numeric column. The values are copied.
func (t *Table) AddNumbers(name string, values []float64) error {
	return t.add(column{name: name, kind: KindNumber, nums: slices.Clone(values)}, len(values))
}

// AddText appends a text column. The values are copied.
func (t *Table) AddText(name string, values []string) error {
	return t.add(column{name: name, kind: KindText, text: slices.Clone(values)}, len(values))
}

// SetNumbers replaces an existing numeric column or appends a new one.
func (t *Table) SetNumbers(name string, values []float64) error {
	i, ok := t.index[name]
	if !ok {
		return t.AddNumbers(name, values)
	}
	if len(values) != len(t.pids) {
		return fmt.Errorf("column %q: %w", name, ErrLength)
	}
	t.cols[i] = column{name: name, kind: KindNumber, nums: slices.Clone(values)}
	return nil
}

// Numbers returns a copy of a numeric column.
func (t *Table) Numbers(name string) ([]float64, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	c := t.cols[i]
	if c.kind != KindNumber {
		return nil, fmt.Errorf("column %q is %s: %w", name, c.kind, ErrWrongKind)
	}
	return slices.Clone(c.nums), nil
}

// Text returns a copy of a text column.
func (t *Table) Text(name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	c := t.cols[i]
	if c.kind != KindText {
		return nil, fmt.Errorf("column %q is %s: %w", name, c.kind, ErrWrongKind)
	}
	return slices.Clone(c.text), nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		pids:  slices.Clone(t.pids),
		rows:  make(map[string]int, len(t.rows)),
		cols:  make([]column, len(t.cols)),
		index: make(map[string]int, len(t.index)),
	}
	for k, v := range t.rows {
		out.rows[k] = v
	}
	for i, c := range t.cols {
		out.cols[i] = c.clone()
		out.index[c.name] = i
	}
	return out
}

// Select returns a new table holding only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	out, _ := New(t.pids)
	for _, n := range names {
		i, ok := t.index[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, n)
		}
		if err := out.add(t.cols[i].clone(), len(t.pids)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Drop returns a new table without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	out, _ := New(t.pids)
	for _, c := range t.cols {
		if slices.Contains(names, c.name) {
			continue
		}
		_ = out.add(c.clone(), len(t.pids))
	}
	return out
}

// FillMissing returns a copy of values with NaN replaced by fill.
func FillMissing(values []float64, fill float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			v = fill
		}
		out[i] = v
	}
	return out
}

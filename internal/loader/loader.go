// Package loader reads gradebook and breakdown exports into tables.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abhisek/gradebook/internal/table"
	"github.com/xuri/excelize/v2"
)

var (
	ErrEmpty       = errors.New("sheet is empty")
	ErrNoKey       = errors.New("header has no PID column")
	ErrUnsupported = errors.New("unsupported file type")
)

// Load reads a .csv or .xlsx file by extension.
func Load(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ReadCSV(bytes.NewReader(data))
	case ".xlsx", ".xlsm":
		return ReadXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// ReadCSV parses a CSV export whose first row is the header.
func ReadCSV(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return FromRows(rows)
}

// ReadXLSX parses the first worksheet of a workbook.
func ReadXLSX(r io.Reader) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return FromRows(rows)
}

// FromRows builds a table from a header row and data rows. The PID column
// becomes the key. Lateness columns stay text; any other column whose
// non-empty cells all parse as numbers becomes numeric, with empty cells
// read as missing.
func FromRows(rows [][]string) (*table.Table, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	key := -1
	for i, h := range header {
		if h == table.KeyColumn {
			key = i
			break
		}
	}
	if key < 0 {
		return nil, ErrNoKey
	}

	body := skipBlank(rows[1:])
	pids := make([]string, len(body))
	for i, row := range body {
		pids[i] = cell(row, key)
	}
	t, err := table.New(pids)
	if err != nil {
		return nil, err
	}

	for col, name := range header {
		if col == key || name == "" {
			continue
		}
		cells := make([]string, len(body))
		for i, row := range body {
			cells[i] = cell(row, col)
		}
		if isText(name) {
			err = t.AddText(name, cells)
		} else if nums, ok := parseNumbers(cells); ok {
			err = t.AddNumbers(name, nums)
		} else {
			err = t.AddText(name, cells)
		}
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func isText(name string) bool {
	return strings.Contains(name, "Lateness")
}

func parseNumbers(cells []string) ([]float64, bool) {
	out := make([]float64, len(cells))
	for i, c := range cells {
		if c == "" {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func skipBlank(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

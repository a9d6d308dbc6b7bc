package gradebook

import "strings"

// Column naming conventions of a gradebook export.
const (
	MaxPointsSuffix    = " - Max Points"
	LatenessSuffix     = " - Lateness (H:M:S)"
	FreeResponseSuffix = "_free_response"
)

const (
	markerMax          = "Max"
	markerLateness     = "Lateness"
	markerFreeResponse = "free_response"
)

// AssignmentNames maps each category to the raw score columns that belong to
// it, in source column order. A column is included when its lowercased name
// contains the category keyword and it is not a Max Points, Lateness or
// free-response column. Every category except checkpoint also skips columns
// mentioning "checkpoint", since checkpoint names embed other keywords
// ("project02_checkpoint01"). A column matching several keywords is listed
// under each of them.
func AssignmentNames(columns []string) map[Category][]string {
	out := make(map[Category][]string, len(AllCategories()))
	for _, cat := range AllCategories() {
		out[cat] = []string{}
	}
	for _, col := range columns {
		for _, cat := range matchCategories(col) {
			out[cat] = append(out[cat], col)
		}
	}
	return out
}

func matchCategories(col string) []Category {
	if strings.Contains(col, markerMax) || strings.Contains(col, markerLateness) {
		return nil
	}
	lower := strings.ToLower(col)
	checkpoint := strings.Contains(lower, string(CategoryCheckpoint))

	var cats []Category
	for _, cat := range AllCategories() {
		if cat == CategoryCheckpoint {
			if checkpoint {
				cats = append(cats, cat)
			}
			continue
		}
		if checkpoint || strings.Contains(col, markerFreeResponse) {
			continue
		}
		if strings.Contains(lower, string(cat)) {
			cats = append(cats, cat)
		}
	}
	return cats
}

// Role is the part a column plays for its assignment.
type Role int

const (
	RoleOther Role = iota
	RoleScore
	RoleMaxPoints
	RoleLateness
	RoleFreeResponse
	RoleFreeResponseMax
)

func (r Role) String() string {
	switch r {
	case RoleScore:
		return "score"
	case RoleMaxPoints:
		return "max-points"
	case RoleLateness:
		return "lateness"
	case RoleFreeResponse:
		return "free-response"
	case RoleFreeResponseMax:
		return "free-response-max"
	default:
		return "other"
	}
}

// ColumnInfo is the parsed form of one column name.
type ColumnInfo struct {
	Name       string
	Assignment string
	Role       Role
	Categories []Category
}

// Schema is a typed index over a gradebook's columns, built once by Classify.
type Schema struct {
	columns     []ColumnInfo
	byName      map[string]int
	assignments map[Category][]string
}

// Classify parses every column name into a ColumnInfo.
func Classify(columns []string) *Schema {
	s := &Schema{
		columns:     make([]ColumnInfo, 0, len(columns)),
		byName:      make(map[string]int, len(columns)),
		assignments: AssignmentNames(columns),
	}

	membership := make(map[string][]Category)
	for _, cat := range AllCategories() {
		for _, col := range s.assignments[cat] {
			membership[col] = append(membership[col], cat)
		}
	}

	for _, col := range columns {
		info := parseColumn(col)
		if cats, ok := membership[col]; ok {
			info.Role = RoleScore
			info.Assignment = col
			info.Categories = cats
		}
		s.byName[col] = len(s.columns)
		s.columns = append(s.columns, info)
	}
	return s
}

func parseColumn(col string) ColumnInfo {
	info := ColumnInfo{Name: col, Assignment: col, Role: RoleOther}
	switch {
	case strings.HasSuffix(col, FreeResponseSuffix+MaxPointsSuffix):
		info.Role = RoleFreeResponseMax
		info.Assignment = strings.TrimSuffix(col, FreeResponseSuffix+MaxPointsSuffix)
	case strings.HasSuffix(col, MaxPointsSuffix):
		info.Role = RoleMaxPoints
		info.Assignment = strings.TrimSuffix(col, MaxPointsSuffix)
	case strings.HasSuffix(col, LatenessSuffix):
		info.Role = RoleLateness
		info.Assignment = strings.TrimSuffix(col, LatenessSuffix)
	case strings.HasSuffix(col, FreeResponseSuffix):
		info.Role = RoleFreeResponse
		info.Assignment = strings.TrimSuffix(col, FreeResponseSuffix)
	}
	return info
}

// Columns returns the parsed columns in source order.
func (s *Schema) Columns() []ColumnInfo {
	out := make([]ColumnInfo, len(s.columns))
	copy(out, s.columns)
	return out
}

// Column looks up a parsed column by name.
func (s *Schema) Column(name string) (ColumnInfo, bool) {
	i, ok := s.byName[name]
	if !ok {
		return ColumnInfo{}, false
	}
	return s.columns[i], true
}

// Assignments returns the raw score columns of a category.
func (s *Schema) Assignments(cat Category) []string {
	out := make([]string, len(s.assignments[cat]))
	copy(out, s.assignments[cat])
	return out
}

// AssignmentMap returns a copy of the full category map.
func (s *Schema) AssignmentMap() map[Category][]string {
	out := make(map[Category][]string, len(s.assignments))
	for cat := range s.assignments {
		out[cat] = s.Assignments(cat)
	}
	return out
}

// Ambiguous returns score columns that landed in more than one category.
func (s *Schema) Ambiguous() []ColumnInfo {
	var out []ColumnInfo
	for _, c := range s.columns {
		if len(c.Categories) > 1 {
			out = append(out, c)
		}
	}
	return out
}

// MaxPointsColumn returns the Max Points column name for an assignment column.
func MaxPointsColumn(assignment string) string { return assignment + MaxPointsSuffix }

// LatenessColumn returns the lateness column name for a lab column.
func LatenessColumn(assignment string) string { return assignment + LatenessSuffix }

// FreeResponseColumn returns the free-response sibling name of a project column.
func FreeResponseColumn(assignment string) string { return assignment + FreeResponseSuffix }

package gradebook

// Category is a grading category discovered from column names.
type Category string

const (
	CategoryLab        Category = "lab"
	CategoryProject    Category = "project"
	CategoryMidterm    Category = "midterm"
	CategoryFinal      Category = "final"
	CategoryDiscussion Category = "disc"
	CategoryCheckpoint Category = "checkpoint"
)

// AllCategories returns every category in classification order.
func AllCategories() []Category {
	return []Category{
		CategoryLab,
		CategoryProject,
		CategoryMidterm,
		CategoryFinal,
		CategoryDiscussion,
		CategoryCheckpoint,
	}
}

// DisplayName returns a human-readable label for the category.
func (c Category) DisplayName() string {
	switch c {
	case CategoryLab:
		return "Labs"
	case CategoryProject:
		return "Projects"
	case CategoryMidterm:
		return "Midterm"
	case CategoryFinal:
		return "Final"
	case CategoryDiscussion:
		return "Discussions"
	case CategoryCheckpoint:
		return "Checkpoints"
	default:
		return string(c)
	}
}

// IsExam reports whether the category holds a single exam column.
func (c Category) IsExam() bool {
	return c == CategoryMidterm || c == CategoryFinal
}

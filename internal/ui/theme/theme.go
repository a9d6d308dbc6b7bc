// Package theme holds the terminal palette and styles for gradebook reports.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#EAB308") // Amber
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Tables
var (
	TableHeader = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true).
			Padding(0, 1)

	TableCell = lipgloss.NewStyle().
			Padding(0, 1)

	TableBorder = lipgloss.NewStyle().
			Foreground(Border)

	Summary = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
)

// States
var (
	Improved = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	Unchanged = lipgloss.NewStyle().
			Foreground(TextDim)

	Warn = lipgloss.NewStyle().
		Foreground(Warning)
)

// GradeColor returns the color used for a letter grade.
func GradeColor(grade string) color.Color {
	switch grade {
	case "A":
		return Success
	case "B":
		return Secondary
	case "C":
		return Warning
	case "D":
		return Accent
	case "F":
		return Error
	default:
		return TextDim
	}
}

// Grade styles a letter grade.
func Grade(grade string) string {
	return lipgloss.NewStyle().Foreground(GradeColor(grade)).Bold(true).Render(grade)
}

// Package components holds small rendering helpers shared by reports.
package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/gradebook/internal/ui/theme"
)

const (
	fullBlock  = "█"
	emptyBlock = "░"

	// minTrack is the narrowest track drawn however small Width is.
	minTrack = 4
)

// GradeBar is one row of a grade distribution: the letter, how many
// students hold it and a track filled to their share of the class.
type GradeBar struct {
	Grade string
	Count int
	// Share is the fraction of the class in [0, 1]; values outside are clamped.
	Share float64
	// Width is the total rendered width including label and percentage.
	Width int
}

// NewGradeBar creates a bar for one letter grade.
func NewGradeBar(grade string, count int, share float64, width int) GradeBar {
	return GradeBar{Grade: grade, Count: count, Share: share, Width: width}
}

func (b GradeBar) label() string {
	return fmt.Sprintf("%s %4d  ", theme.Grade(b.Grade), b.Count)
}

func (b GradeBar) percent() string {
	return fmt.Sprintf("  %5.1f%%", b.clamped()*100)
}

func (b GradeBar) clamped() float64 {
	return min(max(b.Share, 0), 1)
}

// Track returns the filled and empty cell counts for the bar's share.
func (b GradeBar) Track() (filled, empty int) {
	width := b.Width - lipgloss.Width(b.label()) - lipgloss.Width(b.percent())
	width = max(width, minTrack)
	filled = int(float64(width)*b.clamped() + 0.5)
	return filled, width - filled
}

// View renders the bar with the fill in the grade's color.
func (b GradeBar) View() string {
	filled, empty := b.Track()
	fill := lipgloss.NewStyle().Foreground(theme.GradeColor(b.Grade))
	rest := lipgloss.NewStyle().Foreground(theme.Border)

	var sb strings.Builder
	sb.WriteString(b.label())
	sb.WriteString(fill.Render(strings.Repeat(fullBlock, filled)))
	sb.WriteString(rest.Render(strings.Repeat(emptyBlock, empty)))
	sb.WriteString(theme.Hint.Render(b.percent()))
	return sb.String()
}

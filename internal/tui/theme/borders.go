package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Border styles using Unicode box drawing characters
var (
	BorderStyleUnified = lipgloss.Border{
		Top:         "─",
		Bottom:      "─",
		Left:        "│",
		Right:       "│",
		TopLeft:     "╭",
		TopRight:    "╮",
		BottomLeft:  "╰",
		BottomRight: "╯",
	}

	// BorderStyleSeparator is the rule drawn between page slots
	BorderStyleSeparator = "┊"
)

// PageSeparator fills the gap between two pages: width columns, rows
// high, with a dim rule in the middle column.
func PageSeparator(width, rows int) string {
	if width <= 0 || rows <= 0 {
		return ""
	}
	left := (width - 1) / 2
	line := strings.Repeat(" ", left) +
		lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDim)).Render(BorderStyleSeparator) +
		strings.Repeat(" ", width-left-1)

	lines := make([]string, rows)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

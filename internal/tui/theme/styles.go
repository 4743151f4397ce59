package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// CreateUnifiedPanelStyle styles the bordered tree panel; width and height
// are the inner size in cells
func CreateUnifiedPanelStyle(width, height int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxHeight(height + 2).
		Border(BorderStyleUnified).
		BorderForeground(lipgloss.Color(ColorBrightBlue))
}

// CreateBarStyle styles the one-line header and footer. Lines longer than
// width are cut, never wrapped.
func CreateBarStyle(width int, color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		MaxWidth(width).
		PaddingLeft(1) // Align with left panel border
}

// CreateInfoTextStyle is plain foreground text
func CreateInfoTextStyle() lipgloss.Style {
	return textStyle(ColorWhite)
}

// CreateSecondaryTextStyle is dimmed italic text for hints and placeholders
func CreateSecondaryTextStyle() lipgloss.Style {
	return textStyle(ColorBrightBlack).Italic(true)
}

// CreateLoadingStyle colors spinners
func CreateLoadingStyle() lipgloss.Style {
	return textStyle(ColorBrightYellow)
}

func textStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// CreateFloatingDialogStyle creates the frame of a dialog drawn over the browser
func CreateFloatingDialogStyle(width int, borderColor string) lipgloss.Style {
	if borderColor == "" {
		borderColor = ColorDialogBorder
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(1, 2).
		Width(width).
		Background(lipgloss.Color(ColorDialogBg)).
		Foreground(lipgloss.Color(ColorWhite))
}

// CreateDialogTitleStyle creates a style for dialog titles
func CreateDialogTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorDialogBorder)).
		MarginBottom(1)
}

// CreatePromptStyle creates a style for prompt text in dialogs
func CreatePromptStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightYellow)).
		Bold(true)
}

// CreateInstructionStyle creates a style for the key hints under a dialog
func CreateInstructionStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightBlack)).
		Italic(true).
		MarginTop(1)
}

package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// CreateTreeRowStyle styles one row of the directory tree
func CreateTreeRowStyle(selected, dir, favorite bool) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorImage))
	if dir {
		style = style.Foreground(lipgloss.Color(ColorDirectory))
	}
	if favorite {
		style = style.Bold(true)
	}
	if selected {
		style = style.
			Foreground(lipgloss.Color(ColorWhite)).
			Background(lipgloss.Color(ColorSelection))
	}
	return style
}

// CreateFavoriteMarkStyle styles the star shown next to favorites
func CreateFavoriteMarkStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorFavorite))
}

// CreateCaptionStyle styles the caption above each page
func CreateCaptionStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(lipgloss.Color(ColorBrightCyan))
}

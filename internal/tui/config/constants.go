package config

// Layout constants
const (
	// Screen rows taken by the header and footer lines
	HeaderHeight = 1
	FooterHeight = 1

	// Caption line above each page
	CaptionHeight = 1

	// Tree panel border, one cell on each side
	PanelBorderSize = 2

	// Tree width adjustment, in pixels
	TreeWidthStep = 40

	// Indentation per tree level
	TreeIndent = 2

	// Dialog dimensions
	DialogDefaultWidth = 50
	DialogLargeWidth   = 70
	HelpViewportHeight = 15

	// Dialog names under which positions are remembered
	FavoritesDialogName = "FavoritesManager"
)

package theme

// Terminal-compatible color constants using ANSI standard colors
// These colors work consistently across different terminal themes
const (
	// Primary colors (ANSI standard)
	ColorWhite        = "#FFFFFF" // ANSI 15 - primary text
	ColorBrightBlack  = "#808080" // ANSI 8 - secondary text
	ColorBrightBlue   = "#5C7CFA" // ANSI 12 - primary accent
	ColorBrightCyan   = "#66D9E8" // ANSI 14 - secondary accent
	ColorBrightGreen  = "#51CF66" // ANSI 10 - success
	ColorBrightYellow = "#FFD43B" // ANSI 11 - warning
	ColorBrightRed    = "#FF6B6B" // ANSI 9 - error

	// Tree colors
	ColorDirectory = "#74C0FC" // Light blue
	ColorImage     = "#FFFFFF"
	ColorFavorite  = "#FCC419" // Amber
	ColorSelection = "#4A90E2"

	// Chrome
	ColorHeader       = "#00FF80"
	ColorDialogBorder = "#FFEB3B"
	ColorDialogBg     = "#1a1a1a"
	ColorDim          = "#666666"
)

// Message types as used by the status line
const (
	MessageInfo = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// GetMessageColor returns the color for a given message type
func GetMessageColor(messageType int) string {
	switch messageType {
	case MessageError:
		return ColorBrightRed
	case MessageSuccess:
		return ColorBrightGreen
	case MessageWarning:
		return ColorBrightYellow
	default: // MessageInfo
		return ColorBrightCyan
	}
}

// GetMessageIcon returns the icon for a given message type
func GetMessageIcon(messageType int) string {
	switch messageType {
	case MessageError:
		return "❌ "
	case MessageSuccess:
		return "✅ "
	case MessageWarning:
		return "⚠️ "
	default: // MessageInfo
		return "ℹ️ "
	}
}

package messaging

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/scorepager/internal/tui/theme"
)

// MessageType represents different message types for status display
type MessageType int

// Message type constants
const (
	MessageInfo    MessageType = theme.MessageInfo
	MessageSuccess MessageType = theme.MessageSuccess
	MessageWarning MessageType = theme.MessageWarning
	MessageError   MessageType = theme.MessageError
)

// DismissMsg is delivered when a notice's display time is over
type DismissMsg struct {
	Seq int
}

// StatusManager manages status messages and their display
type StatusManager interface {
	SetMessage(message string, msgType MessageType)
	Notify(message string, msgType MessageType, d time.Duration) tea.Cmd
	Dismiss(seq int) bool
	ClearMessage()
	GetMessage() (string, MessageType, bool)
	RenderMessage() string
	HasMessage() bool
}

// StatusManagerImpl implements the StatusManager interface
type StatusManagerImpl struct {
	statusMessage string
	messageType   MessageType
	messageTimer  time.Time
	seq           int
}

// NewStatusManager creates a new status manager instance
func NewStatusManager() StatusManager {
	return &StatusManagerImpl{
		statusMessage: "",
		messageType:   MessageInfo,
	}
}

// SetMessage sets a status message with type
func (sm *StatusManagerImpl) SetMessage(message string, msgType MessageType) {
	sm.statusMessage = message
	sm.messageType = msgType
	sm.messageTimer = time.Now()
	sm.seq++

	logrus.Debugf("StatusManager: setMessage called with message='%s', type=%d", message, msgType)
}

// Notify sets a message and schedules its dismissal after d. A newer
// message makes the pending dismissal a no-op. With d <= 0 the message
// stays until replaced or cleared.
func (sm *StatusManagerImpl) Notify(message string, msgType MessageType, d time.Duration) tea.Cmd {
	sm.SetMessage(message, msgType)
	if d <= 0 {
		return nil
	}
	seq := sm.seq
	return tea.Tick(d, func(time.Time) tea.Msg {
		return DismissMsg{Seq: seq}
	})
}

// Dismiss clears the message scheduled under seq, if it is still shown
func (sm *StatusManagerImpl) Dismiss(seq int) bool {
	if seq != sm.seq || sm.statusMessage == "" {
		return false
	}
	sm.ClearMessage()
	return true
}

// ClearMessage clears the status message
func (sm *StatusManagerImpl) ClearMessage() {
	sm.statusMessage = ""
	logrus.Debugf("StatusManager: message cleared")
}

// GetMessage returns the current message, type, and whether a message exists
func (sm *StatusManagerImpl) GetMessage() (string, MessageType, bool) {
	hasMessage := sm.statusMessage != ""
	return sm.statusMessage, sm.messageType, hasMessage
}

// HasMessage returns whether there is currently a status message
func (sm *StatusManagerImpl) HasMessage() bool {
	return sm.statusMessage != ""
}

// RenderMessage renders the current status message with appropriate styling
func (sm *StatusManagerImpl) RenderMessage() string {
	if !sm.HasMessage() {
		return ""
	}

	messageColor := theme.GetMessageColor(int(sm.messageType))
	messageIcon := theme.GetMessageIcon(int(sm.messageType))

	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(messageColor)).
		Bold(true)

	return messageStyle.Render(fmt.Sprintf("%s %s", messageIcon, sm.statusMessage))
}

package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/scorepager/internal/store"
	"github.com/HaiFongPan/scorepager/internal/tui/messaging"
	"github.com/HaiFongPan/scorepager/internal/tui/theme"
)

// FavoriteItem represents a favorite in the manager
type FavoriteItem struct {
	ID      string
	Missing bool
}

// FavoritesManagerModel is the dialog listing favorites for reordering,
// opening and cleanup
type FavoritesManagerModel struct {
	favorites     *store.Favorites
	items         []FavoriteItem
	selectedIndex int
	confirmClear  bool
	keyMap        FavoritesKeyMap
	help          help.Model
	width         int
}

// FavoritesKeyMap defines keybindings for the favorites manager
type FavoritesKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Open     key.Binding
	Remove   key.Binding
	Prune    key.Binding
	Clear    key.Binding
	Close    key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

// DefaultFavoritesKeyMap returns default keybindings
func DefaultFavoritesKeyMap() FavoritesKeyMap {
	return FavoritesKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move entry up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move entry down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d/x", "remove"),
		),
		Prune: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "remove missing"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear all"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "q", "F"),
			key.WithHelp("esc/q", "close"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// ShortHelp returns the short help view
func (k FavoritesKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.MoveUp, k.MoveDown, k.Remove, k.Close}
}

// FullHelp returns the full help view
func (k FavoritesKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.Open, k.Remove, k.Prune, k.Clear, k.Close},
	}
}

// Messages sent to the browser

type favoriteOpenMsg struct {
	id string
}

type favoritesClosedMsg struct {
	position int
}

type favoritesChangedMsg struct {
	message string
	msgType messaging.MessageType
}

// NewFavoritesManagerModel creates the dialog with the cursor at position
func NewFavoritesManagerModel(favorites *store.Favorites, position, width int) *FavoritesManagerModel {
	m := &FavoritesManagerModel{
		favorites: favorites,
		keyMap:    DefaultFavoritesKeyMap(),
		help:      help.New(),
		width:     width,
	}
	m.reload()
	m.selectedIndex = position
	m.clampSelection()
	return m
}

// reload reads the favorites and marks entries that vanished from disk
func (m *FavoritesManagerModel) reload() {
	ids := m.favorites.List()
	m.items = make([]FavoriteItem, 0, len(ids))
	for _, id := range ids {
		m.items = append(m.items, FavoriteItem{ID: id, Missing: !pathExists(id)})
	}
	m.clampSelection()
}

func (m *FavoritesManagerModel) clampSelection() {
	if m.selectedIndex >= len(m.items) {
		m.selectedIndex = len(m.items) - 1
	}
	if m.selectedIndex < 0 {
		m.selectedIndex = 0
	}
}

// Selected returns the id under the cursor
func (m *FavoritesManagerModel) Selected() (string, bool) {
	if len(m.items) == 0 {
		return "", false
	}
	return m.items[m.selectedIndex].ID, true
}

// Update handles a key press inside the dialog
func (m *FavoritesManagerModel) Update(msg tea.KeyMsg) tea.Cmd {
	if m.confirmClear {
		return m.handleClearConfirmation(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}

	case key.Matches(msg, m.keyMap.Down):
		if m.selectedIndex < len(m.items)-1 {
			m.selectedIndex++
		}

	case key.Matches(msg, m.keyMap.MoveUp):
		return m.move(-1)

	case key.Matches(msg, m.keyMap.MoveDown):
		return m.move(1)

	case key.Matches(msg, m.keyMap.Open):
		if id, ok := m.Selected(); ok {
			return func() tea.Msg { return favoriteOpenMsg{id: id} }
		}

	case key.Matches(msg, m.keyMap.Remove):
		if id, ok := m.Selected(); ok {
			m.favorites.Remove(id)
			m.reload()
			return changed(fmt.Sprintf("Removed %s from favorites", filepath.Base(id)), messaging.MessageInfo)
		}

	case key.Matches(msg, m.keyMap.Prune):
		removed := m.favorites.Prune(pathExists)
		m.reload()
		logrus.WithField("removed", len(removed)).Info("pruned missing favorites")
		if len(removed) == 0 {
			return changed("All favorites exist", messaging.MessageInfo)
		}
		return changed(fmt.Sprintf("Removed %d missing favorites", len(removed)), messaging.MessageSuccess)

	case key.Matches(msg, m.keyMap.Clear):
		if len(m.items) > 0 {
			m.confirmClear = true
		}

	case key.Matches(msg, m.keyMap.Close):
		position := m.selectedIndex
		return func() tea.Msg { return favoritesClosedMsg{position: position} }
	}

	return nil
}

func (m *FavoritesManagerModel) handleClearConfirmation(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keyMap.Confirm):
		m.confirmClear = false
		m.favorites.Clear()
		m.reload()
		return changed("Favorites cleared", messaging.MessageSuccess)

	case key.Matches(msg, m.keyMap.Cancel):
		m.confirmClear = false
	}
	return nil
}

func (m *FavoritesManagerModel) move(delta int) tea.Cmd {
	id, ok := m.Selected()
	if !ok || !m.favorites.Move(id, delta) {
		return nil
	}
	m.reload()
	for i, item := range m.items {
		if item.ID == id {
			m.selectedIndex = i
		}
	}
	return changed("", messaging.MessageInfo)
}

// View renders the dialog
func (m *FavoritesManagerModel) View() string {
	title := theme.CreateDialogTitleStyle().Render(
		fmt.Sprintf("★ Favorites (%d/%d)", len(m.items), m.favorites.Capacity()))

	var body string
	if len(m.items) == 0 {
		body = theme.CreateSecondaryTextStyle().Render("No favorites yet. Press f in the tree to add one.")
	} else {
		var lines []string
		for i, item := range m.items {
			prefix := "  "
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorWhite))
			if i == m.selectedIndex {
				prefix = "▶ "
				style = style.
					Background(lipgloss.Color(theme.ColorBrightBlue)).
					Bold(true)
			}

			line := prefix + filepath.Base(item.ID)
			if item.Missing {
				line += lipgloss.NewStyle().
					Foreground(lipgloss.Color(theme.ColorBrightRed)).
					Italic(true).
					Render(" (missing)")
			}
			line += "  " + theme.CreateSecondaryTextStyle().Render(filepath.Dir(item.ID))
			lines = append(lines, style.Render(ansi.Truncate(line, m.width-4, "…")))
		}
		body = strings.Join(lines, "\n")
	}

	footer := theme.CreateInstructionStyle().Render(m.help.ShortHelpView(m.keyMap.ShortHelp()))
	if m.confirmClear {
		footer = theme.CreatePromptStyle().MarginTop(1).Render("Remove all favorites? (y/n)")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, body, footer)
	return theme.CreateFloatingDialogStyle(m.width, "").Render(content)
}

func changed(message string, msgType messaging.MessageType) tea.Cmd {
	return func() tea.Msg {
		return favoritesChangedMsg{message: message, msgType: msgType}
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/scorepager/internal/store"
)

// newTestFavorites 创建收藏夹，并为每个 id 在临时目录中创建文件
func newTestFavorites(t *testing.T, names ...string) (*store.Favorites, string) {
	t.Helper()
	dir := t.TempDir()
	st := store.New(filepath.Join(t.TempDir(), "setup.ini"), "image_config.json")
	f := store.NewFavorites(st, 0)
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		require.NoError(t, f.Add(path))
	}
	return f, dir
}

func managerKey(t *testing.T, m *FavoritesManagerModel, msg tea.KeyMsg) tea.Msg {
	t.Helper()
	cmd := m.Update(msg)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFavoritesManager_Move(t *testing.T) {
	f, dir := newTestFavorites(t, "a.png", "b.png", "c.png")
	a, b, c := filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png"), filepath.Join(dir, "c.png")
	m := NewFavoritesManagerModel(f, 0, 50)

	msg := managerKey(t, m, runes("J"))
	assert.IsType(t, favoritesChangedMsg{}, msg)
	assert.Equal(t, []string{b, a, c}, f.List())
	assert.Equal(t, 1, m.selectedIndex)

	managerKey(t, m, tea.KeyMsg{Type: tea.KeyShiftDown})
	assert.Equal(t, []string{b, c, a}, f.List())
	assert.Equal(t, 2, m.selectedIndex)

	// 已在末尾，不再移动
	assert.Nil(t, m.Update(runes("J")))

	managerKey(t, m, runes("K"))
	assert.Equal(t, []string{b, a, c}, f.List())
	assert.Equal(t, 1, m.selectedIndex)
}

func TestFavoritesManager_Navigation(t *testing.T) {
	f, _ := newTestFavorites(t, "a.png", "b.png")

	// 保存的位置超出范围时被截断
	m := NewFavoritesManagerModel(f, 10, 50)
	assert.Equal(t, 1, m.selectedIndex)

	managerKey(t, m, runes("k"))
	assert.Equal(t, 0, m.selectedIndex)
	managerKey(t, m, runes("k"))
	assert.Equal(t, 0, m.selectedIndex)
	managerKey(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selectedIndex)
}

func TestFavoritesManager_OpenAndClose(t *testing.T) {
	f, dir := newTestFavorites(t, "a.png", "b.png")
	m := NewFavoritesManagerModel(f, 1, 50)

	msg := managerKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, favoriteOpenMsg{id: filepath.Join(dir, "b.png")}, msg)

	msg = managerKey(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, favoritesClosedMsg{position: 1}, msg)
}

func TestFavoritesManager_RemoveAndPrune(t *testing.T) {
	f, dir := newTestFavorites(t, "a.png", "b.png", "c.png")
	require.NoError(t, os.Remove(filepath.Join(dir, "c.png")))

	m := NewFavoritesManagerModel(f, 0, 50)
	assert.True(t, m.items[2].Missing)
	assert.Contains(t, m.View(), "(missing)")

	msg := managerKey(t, m, runes("d"))
	changed, ok := msg.(favoritesChangedMsg)
	require.True(t, ok)
	assert.Contains(t, changed.message, "Removed a.png")
	assert.Len(t, m.items, 2)

	msg = managerKey(t, m, runes("p"))
	changed = msg.(favoritesChangedMsg)
	assert.Equal(t, "Removed 1 missing favorites", changed.message)
	assert.Equal(t, []string{filepath.Join(dir, "b.png")}, f.List())

	msg = managerKey(t, m, runes("p"))
	assert.Equal(t, "All favorites exist", msg.(favoritesChangedMsg).message)
}

func TestFavoritesManager_Clear(t *testing.T) {
	f, _ := newTestFavorites(t, "a.png", "b.png")
	m := NewFavoritesManagerModel(f, 0, 50)

	assert.Nil(t, m.Update(runes("c")))
	assert.True(t, m.confirmClear)
	assert.Contains(t, m.View(), "Remove all favorites?")

	// 取消
	managerKey(t, m, runes("n"))
	assert.False(t, m.confirmClear)
	assert.Len(t, f.List(), 2)

	managerKey(t, m, runes("c"))
	msg := managerKey(t, m, runes("y"))
	assert.Equal(t, "Favorites cleared", msg.(favoritesChangedMsg).message)
	assert.Empty(t, f.List())
	assert.Contains(t, m.View(), "No favorites yet")

	// 空列表时不再确认
	managerKey(t, m, runes("c"))
	assert.False(t, m.confirmClear)
}

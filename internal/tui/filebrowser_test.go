package tui

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/scorepager/internal/config"
	"github.com/HaiFongPan/scorepager/internal/paginate"
	"github.com/HaiFongPan/scorepager/internal/store"
	"github.com/HaiFongPan/scorepager/internal/tree"
)

type testEnv struct {
	cfg   *config.Config
	store *store.Store
	roots tree.RootsProvider
	root  string
	songs string
	score string
	bad   string
}

// newTestEnv 创建测试目录：songs/score.png、songs/bad.png 和一个会被过滤掉的 notes.txt
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	songs := filepath.Join(root, "songs")
	require.NoError(t, os.MkdirAll(songs, 0755))

	score := filepath.Join(songs, "score.png")
	require.NoError(t, imaging.Save(imaging.New(80, 1000, color.NRGBA{R: 0x20, G: 0x40, B: 0x60, A: 0xFF}), score))
	bad := filepath.Join(songs, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("notes"), 0644))

	cfg := config.Default()
	cfg.UI.NoticeSeconds = 0
	cfg.UI.ResizeDebounceMS = 1

	roots, err := tree.DirRoots(root)
	require.NoError(t, err)

	return &testEnv{
		cfg:   cfg,
		store: store.New(filepath.Join(t.TempDir(), "setup.ini"), cfg.Storage.DirectoryFile),
		roots: roots,
		root:  roots[0].ID,
		songs: filepath.Join(roots[0].ID, "songs"),
		score: filepath.Join(roots[0].ID, "songs", "score.png"),
		bad:   filepath.Join(roots[0].ID, "songs", "bad.png"),
	}
}

func (e *testEnv) newModel(t *testing.T) *FileBrowserModel {
	t.Helper()
	m, err := NewFileBrowserModel(e.cfg, e.store, e.roots)
	require.NoError(t, err)
	return m
}

// createTestFileBrowser 创建已展开 root 和 songs 的浏览器
func createTestFileBrowser(t *testing.T) (*FileBrowserModel, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	m := env.newModel(t)

	m = runCmd(t, m, m.loadChildren(m.tree.Roots()[0]))
	selectNode(t, m, env.songs)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, m, cmd)
	return m, env
}

func update(t *testing.T, m *FileBrowserModel, msg tea.Msg) (*FileBrowserModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	fb, ok := updated.(*FileBrowserModel)
	require.True(t, ok)
	return fb, cmd
}

func runCmd(t *testing.T, m *FileBrowserModel, cmd tea.Cmd) *FileBrowserModel {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	return m
}

func press(t *testing.T, m *FileBrowserModel, keys string) (*FileBrowserModel, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
}

func selectNode(t *testing.T, m *FileBrowserModel, id string) {
	t.Helper()
	for i, r := range m.rows {
		if r.Node.ID == id {
			m.cursor = i
			return
		}
	}
	t.Fatalf("node %s is not visible", id)
}

func rowIDs(m *FileBrowserModel) []string {
	var ids []string
	for _, r := range m.rows {
		ids = append(ids, r.Node.ID)
	}
	return ids
}

func statusText(m *FileBrowserModel) string {
	msg, _, _ := m.status.GetMessage()
	return msg
}

func openScore(t *testing.T, m *FileBrowserModel, env *testEnv) *FileBrowserModel {
	t.Helper()
	selectNode(t, m, env.score)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	return runCmd(t, m, cmd)
}

func TestFileBrowser_ExpandDirectories(t *testing.T) {
	m, env := createTestFileBrowser(t)

	// 目录在前，非图片文件被过滤
	assert.Equal(t, []string{env.root, env.songs, env.bad, env.score}, rowIDs(m))
	assert.True(t, m.rows[1].Node.Expanded)
	assert.Equal(t, 2, m.rows[3].Depth)
	assert.Contains(t, m.rows[3].Node.DisplayName(), "score.png (")
}

func TestFileBrowser_Collapse(t *testing.T) {
	m, env := createTestFileBrowser(t)

	selectNode(t, m, env.songs)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, []string{env.root, env.songs}, rowIDs(m))

	// 再次折叠时光标移到父目录
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, env.root, m.selectedID())

	// 重新展开不再读取磁盘
	selectNode(t, m, env.songs)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, m.rows, 4)
}

func TestFileBrowser_OpenImage(t *testing.T) {
	m, env := createTestFileBrowser(t)
	m = openScore(t, m, env)

	require.NotNil(t, m.strip.Preview())
	assert.Equal(t, env.score, m.current)
	assert.False(t, m.loadingPreview)

	// 80x24 窗口：页高 21 行 = 336 像素，重叠 67，步长 269
	assert.Equal(t, 4, m.strip.Preview().PageCount())
	assert.Equal(t, 4, m.strip.VisiblePages())

	view := m.View()
	assert.Contains(t, view, "Score Pager")
	assert.Contains(t, view, "score.png")
	assert.Contains(t, view, "Page 1/4")
}

func TestFileBrowser_DecodeErrorKeepsState(t *testing.T) {
	m, env := createTestFileBrowser(t)
	m = openScore(t, m, env)

	selectNode(t, m, env.bad)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, m, cmd)

	assert.Equal(t, env.score, m.current)
	assert.Equal(t, env.score, m.strip.Preview().Path)
	assert.Contains(t, statusText(m), "Cannot open bad.png")
}

func TestFileBrowser_StalePreviewIsDropped(t *testing.T) {
	m, env := createTestFileBrowser(t)

	first := m.openImage(env.score)
	second := m.openImage(env.score)

	m, _ = update(t, m, first())
	assert.Empty(t, m.current)
	assert.True(t, m.loadingPreview)

	m, _ = update(t, m, second())
	assert.Equal(t, env.score, m.current)
}

func TestFileBrowser_ViewKeysWaitForPendingOpen(t *testing.T) {
	m, env := createTestFileBrowser(t)
	m = openScore(t, m, env)

	second := filepath.Join(env.songs, "second.png")
	require.NoError(t, imaging.Save(imaging.New(80, 500, color.NRGBA{R: 0x60, G: 0x40, B: 0x20, A: 0xFF}), second))
	secondView := paginate.ViewState{Scale: 1.5, OverlapRatio: 0.3}
	env.store.SaveViewState(second, secondView)

	// 第二张图片还在加载时按下缩放键
	open := m.openImage(second)
	m, cmd := press(t, m, "+")
	assert.Nil(t, cmd)
	assert.Equal(t, paginate.DefaultViewState(), m.view)
	assert.Equal(t, paginate.DefaultViewState(), env.store.LoadViewState(env.score))

	m = runCmd(t, m, open)
	assert.Equal(t, second, m.current)
	assert.Equal(t, secondView, m.view)
	assert.Empty(t, m.opening)

	// 加载期间重新分页（切换遮罩）仍然打开新图片
	open = m.openImage(env.score)
	m, cmd = press(t, m, "m")
	m = runCmd(t, m, cmd)
	assert.Equal(t, env.score, m.current)
	assert.Equal(t, paginate.DefaultViewState(), m.view)

	// 之前的请求已过期
	m, _ = update(t, m, open())
	assert.Equal(t, env.score, m.current)
}

func TestFileBrowser_ViewChangesArePersisted(t *testing.T) {
	m, env := createTestFileBrowser(t)

	// 没有打开图片时不做任何事
	_, cmd := press(t, m, "+")
	assert.Nil(t, cmd)

	m = openScore(t, m, env)

	tests := []struct {
		key     string
		scale   float64
		overlap float64
	}{
		{"+", 1.1, 0.2},
		{"=", 1.2, 0.2},
		{"-", 1.1, 0.2},
		{"]", 1.1, 0.25},
		{"[", 1.1, 0.2},
		{"[", 1.1, 0.15},
	}

	for _, tt := range tests {
		var cmd tea.Cmd
		m, cmd = press(t, m, tt.key)
		m = runCmd(t, m, cmd)

		assert.InDelta(t, tt.scale, m.view.Scale, 1e-9, "key %s", tt.key)
		assert.InDelta(t, tt.overlap, m.view.OverlapRatio, 1e-9, "key %s", tt.key)

		stored := env.store.LoadViewState(env.score)
		assert.Equal(t, m.view, stored)
	}

	// 新会话恢复保存的视图参数
	m2 := env.newModel(t)
	m2 = runCmd(t, m2, m2.openImage(env.score))
	assert.InDelta(t, 1.1, m2.view.Scale, 1e-9)
	assert.InDelta(t, 0.15, m2.view.OverlapRatio, 1e-9)
}

func TestFileBrowser_MaskToggle(t *testing.T) {
	m, env := createTestFileBrowser(t)
	assert.False(t, m.mask)

	m, cmd := press(t, m, "m")
	assert.Nil(t, cmd)
	assert.True(t, m.mask)
	assert.True(t, store.NewSettings(env.store).MaskEnabled())

	m = openScore(t, m, env)
	assert.NotEmpty(t, m.strip.Preview().Layout.Pages[1].MaskBands)

	m, cmd = press(t, m, "m")
	m = runCmd(t, m, cmd)
	assert.False(t, m.mask)
	assert.Empty(t, m.strip.Preview().Layout.Pages[1].MaskBands)
	assert.False(t, store.NewSettings(env.store).MaskEnabled())
}

func TestFileBrowser_PageScroll(t *testing.T) {
	m, env := createTestFileBrowser(t)
	m = openScore(t, m, env)

	// 缩小窗口，只能显示一页
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 45, Height: 24})
	require.Equal(t, 1, m.strip.VisiblePages())

	m, _ = press(t, m, "l")
	assert.Equal(t, 1, m.strip.First())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftRight})
	assert.Equal(t, 2, m.strip.First())
	m, _ = press(t, m, "h")
	assert.Equal(t, 1, m.strip.First())
}

func TestFileBrowser_ToggleFavorite(t *testing.T) {
	m, env := createTestFileBrowser(t)

	selectNode(t, m, env.songs)
	m, _ = press(t, m, "f")
	assert.True(t, m.favorites.Contains(env.songs))
	assert.True(t, m.rows[m.cursor].Favorite)
	assert.Contains(t, statusText(m), "Added")

	m, _ = press(t, m, "f")
	assert.False(t, m.favorites.Contains(env.songs))
	assert.False(t, m.rows[m.cursor].Favorite)
}

func TestFileBrowser_FavoritesFull(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Favorites.Capacity = 1
	m := env.newModel(t)
	m = runCmd(t, m, m.loadChildren(m.tree.Roots()[0]))

	require.NoError(t, m.favorites.Add(env.root))
	selectNode(t, m, env.songs)
	m, _ = press(t, m, "f")

	assert.False(t, m.favorites.Contains(env.songs))
	assert.Contains(t, statusText(m), "full")
}

func TestFileBrowser_FavoritesManager(t *testing.T) {
	m, env := createTestFileBrowser(t)
	require.NoError(t, m.favorites.Add(env.score))

	selectNode(t, m, env.root)
	m, _ = press(t, m, "F")
	require.NotNil(t, m.favManager)
	assert.Contains(t, m.View(), "Favorites (1/50)")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, cmd = update(t, m, cmd())

	assert.Nil(t, m.favManager)
	pos, ok := m.settings.DialogPosition("FavoritesManager")
	assert.True(t, ok)
	assert.Equal(t, "0", pos)
	assert.Equal(t, env.score, m.selectedID())

	m = runCmd(t, m, cmd)
	assert.Equal(t, env.score, m.current)
}

func TestFileBrowser_VanishedFavoriteIsRemoved(t *testing.T) {
	m, env := createTestFileBrowser(t)
	gone := filepath.Join(env.songs, "gone.png")
	require.NoError(t, m.favorites.Add(gone))

	m, cmd := update(t, m, favoriteOpenMsg{id: gone})
	assert.Nil(t, cmd)
	assert.False(t, m.favorites.Contains(gone))
	assert.Contains(t, statusText(m), "no longer exists")
}

func TestFileBrowser_SortCycle(t *testing.T) {
	env := newTestEnv(t)
	older := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(env.score, older, older))

	m := env.newModel(t)
	m = runCmd(t, m, m.loadChildren(m.tree.Roots()[0]))
	selectNode(t, m, env.songs)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, m, cmd)

	tests := []struct {
		method string
		order  []string
	}{
		{store.SortNameDesc, []string{env.score, env.bad}},
		{store.SortTimeAsc, []string{env.score, env.bad}},
		{store.SortTimeDesc, []string{env.bad, env.score}},
		{store.SortNameAsc, []string{env.bad, env.score}},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			selectNode(t, m, env.songs)
			m, _ = press(t, m, "s")
			assert.Equal(t, tt.method, env.store.SortMethod(env.songs))
			assert.Equal(t, tt.order, rowIDs(m)[2:])
			assert.Equal(t, env.songs, m.selectedID())
		})
	}
}

func TestFileBrowser_RefreshKeepsOpenDirectories(t *testing.T) {
	m, env := createTestFileBrowser(t)

	added := filepath.Join(env.root, "added.png")
	require.NoError(t, imaging.Save(imaging.New(4, 4, color.White), added))

	selectNode(t, m, env.root)
	m, _ = press(t, m, "r")

	assert.Equal(t, []string{env.root, env.songs, env.bad, env.score, added}, rowIDs(m))
	assert.Equal(t, env.root, m.selectedID())
}

func TestFileBrowser_DirectoryChangedOnDisk(t *testing.T) {
	m, env := createTestFileBrowser(t)

	added := filepath.Join(env.songs, "etude.png")
	require.NoError(t, imaging.Save(imaging.New(4, 4, color.White), added))

	m, cmd := update(t, m, dirChangedMsg{dir: env.songs})
	assert.Nil(t, cmd)
	assert.Contains(t, rowIDs(m), added)

	// 未加载的目录不处理
	m, _ = update(t, m, dirChangedMsg{dir: filepath.Join(env.root, "elsewhere")})
	assert.Len(t, m.rows, 5)
}

func TestFileBrowser_TreeWidth(t *testing.T) {
	m, env := createTestFileBrowser(t)
	assert.Equal(t, 200, m.treeWidth)
	assert.Equal(t, 25, m.treeCols())

	for i := 0; i < 4; i++ {
		m, _ = press(t, m, "<")
	}
	assert.Equal(t, store.MinTreeWidth, m.treeWidth)

	m, _ = press(t, m, ">")
	assert.Equal(t, store.MinTreeWidth+40, m.treeWidth)
	assert.Equal(t, m.treeWidth, store.NewSettings(env.store).TreeWidth())
}

func TestFileBrowser_ResizeIsDebounced(t *testing.T) {
	m, env := createTestFileBrowser(t)
	m = openScore(t, m, env)

	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.NotNil(t, cmd)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	// 旧的计时器到期时不重新分页
	m, cmd = update(t, m, resizeSettledMsg{seq: m.resizeSeq - 1})
	assert.Nil(t, cmd)

	m, cmd = update(t, m, resizeSettledMsg{seq: m.resizeSeq})
	m = runCmd(t, m, cmd)

	// 页高 27 行 = 432 像素，重叠 86，步长 346
	assert.Equal(t, 3, m.strip.Preview().PageCount())
}

func TestFileBrowser_LastOpened(t *testing.T) {
	m, env := createTestFileBrowser(t)
	selectNode(t, m, env.score)

	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, env.score, store.NewSettings(env.store).LastOpened())

	m2 := env.newModel(t)
	cmd = m2.restoreLastOpened()
	assert.Equal(t, env.score, m2.selectedID())
	assert.True(t, m2.tree.Find(env.songs).Expanded)

	m2 = runCmd(t, m2, cmd)
	assert.Equal(t, env.score, m2.current)
}

func TestFileBrowser_LastOpenedMissing(t *testing.T) {
	env := newTestEnv(t)
	store.NewSettings(env.store).SetLastOpened(filepath.Join(env.root, "deleted", "old.png"))

	m := env.newModel(t)
	assert.Nil(t, m.restoreLastOpened())
	assert.Contains(t, statusText(m), "not found")
	assert.Empty(t, m.current)
}

func TestFileBrowser_HelpDialog(t *testing.T) {
	m, _ := createTestFileBrowser(t)

	m, _ = press(t, m, "?")
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Help")

	// 帮助打开时其它按键不生效
	m, _ = press(t, m, "m")
	assert.False(t, m.mask)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)
}

func TestFileBrowser_NoticeDismissal(t *testing.T) {
	m, env := createTestFileBrowser(t)
	m.noticeTTL = time.Millisecond

	selectNode(t, m, env.songs)
	m, cmd := press(t, m, "f")
	require.NotNil(t, cmd)
	dismiss := cmd()

	// 新的提示覆盖旧的，旧的关闭请求无效
	m, _ = press(t, m, "f")
	m, _ = update(t, m, dismiss)
	assert.Contains(t, statusText(m), "Removed")
}

func TestFileBrowser_PathCopied(t *testing.T) {
	m, env := createTestFileBrowser(t)

	m, _ = update(t, m, pathCopiedMsg{path: env.score})
	assert.Equal(t, "Copied "+env.score, statusText(m))

	m, _ = update(t, m, pathCopiedMsg{path: env.score, err: errors.New("no clipboard")})
	assert.Contains(t, statusText(m), "Cannot copy path: no clipboard")
}

package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/scorepager/internal/config"
	"github.com/HaiFongPan/scorepager/internal/paginate"
	"github.com/HaiFongPan/scorepager/internal/store"
	"github.com/HaiFongPan/scorepager/internal/tree"
	tuiconfig "github.com/HaiFongPan/scorepager/internal/tui/config"
	img "github.com/HaiFongPan/scorepager/internal/tui/image"
	"github.com/HaiFongPan/scorepager/internal/tui/messaging"
	"github.com/HaiFongPan/scorepager/internal/tui/theme"
	"github.com/HaiFongPan/scorepager/internal/utils"
)

// KeyMap defines keybindings for the file browser
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	Expand      key.Binding
	Collapse    key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	MoreOverlap key.Binding
	LessOverlap key.Binding
	Mask        key.Binding
	PrevPage    key.Binding
	NextPage    key.Binding
	Favorite    key.Binding
	Favorites   key.Binding
	CopyPath    key.Binding
	Sort        key.Binding
	Refresh     key.Binding
	Narrower    key.Binding
	Wider       key.Binding
	Help        key.Binding
	Close       key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "go to start"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "go to end"),
		),
		Expand: key.NewBinding(
			key.WithKeys("enter", "right"),
			key.WithHelp("enter/→", "expand or open"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "collapse"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		MoreOverlap: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "more overlap"),
		),
		LessOverlap: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "less overlap"),
		),
		Mask: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle mask"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "shift+left"),
			key.WithHelp("h/⇧←", "previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("l", "shift+right"),
			key.WithHelp("l/⇧→", "next page"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "toggle favorite"),
		),
		Favorites: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "manage favorites"),
		),
		CopyPath: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy path"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r/f5", "refresh"),
		),
		Narrower: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "narrower tree"),
		),
		Wider: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "wider tree"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Expand, k.ZoomIn, k.ZoomOut, k.NextPage, k.Favorite, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Expand, k.Collapse, k.Refresh, k.Sort, k.Narrower, k.Wider},
		{k.ZoomIn, k.ZoomOut, k.MoreOverlap, k.LessOverlap, k.Mask, k.PrevPage, k.NextPage},
		{k.Favorite, k.Favorites, k.CopyPath, k.Help, k.Quit},
	}
}

// Messages

type listingLoadedMsg struct {
	node    *tree.Node
	listing tree.Listing
}

type previewLoadedMsg struct {
	seq     int
	path    string
	preview *img.Preview
	size    int64
	err     error
}

type dirChangedMsg struct {
	dir string
}

type pathCopiedMsg struct {
	path string
	err  error
}

type resizeSettledMsg struct {
	seq int
}

// FileBrowserModel is the score browser: directory tree on the left, the
// open image's pages side by side on the right
type FileBrowserModel struct {
	config    *config.Config
	store     *store.Store
	favorites *store.Favorites
	settings  *store.Settings
	tree      *tree.Model
	images    *img.ImageManager
	watcher   *tree.Watcher
	log       logrus.FieldLogger

	rows     []tree.Row
	cursor   int
	viewport int

	strip          PageStrip
	current        string
	view           paginate.ViewState
	opening        string // 正在打开但尚未显示的图片
	openingView    paginate.ViewState
	mask           bool
	treeWidth      int
	previewSeq     int
	loadingPreview bool

	status      messaging.StatusManager
	noticeTTL   time.Duration
	resizeSeq   int
	resizeDelay time.Duration

	showHelp   bool
	favManager *FavoritesManagerModel

	windowWidth  int
	windowHeight int
	keyMap       KeyMap
	help         help.Model
	spinner      spinner.Model
	helpViewport viewport.Model
}

// NewFileBrowserModel creates a new file browser model over the given roots
func NewFileBrowserModel(cfg *config.Config, st *store.Store, roots tree.RootsProvider) (*FileBrowserModel, error) {
	filter, err := tree.ImageFilter(cfg.UI.ImageExtensions)
	if err != nil {
		return nil, fmt.Errorf("invalid image extensions %v: %w", cfg.UI.ImageExtensions, err)
	}

	log := logrus.StandardLogger()
	favorites := store.NewFavorites(st, cfg.Favorites.Capacity)
	settings := store.NewSettings(st)

	model := tree.New(roots,
		tree.WithSortPolicies(st),
		tree.WithFavorites(favorites),
		tree.WithFilter(filter),
		tree.WithLogger(log),
	)
	images := img.NewImageManager(
		img.NewRasterCache(cfg.UI.RasterCacheEntries, log),
		cfg.UI.CellWidth, cfg.UI.CellHeight, cfg.UI.PageMargin, log,
	)

	// Initialize spinner for loading states
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.CreateLoadingStyle()

	h := help.New()
	h.ShowAll = false

	vp := viewport.New(60, tuiconfig.HelpViewportHeight)

	m := &FileBrowserModel{
		config:       cfg,
		store:        st,
		favorites:    favorites,
		settings:     settings,
		tree:         model,
		images:       images,
		log:          log,
		view:         paginate.DefaultViewState(),
		mask:         settings.MaskEnabled(),
		treeWidth:    settings.TreeWidth(),
		status:       messaging.NewStatusManager(),
		noticeTTL:    time.Duration(cfg.UI.NoticeSeconds) * time.Second,
		resizeDelay:  time.Duration(cfg.UI.ResizeDebounceMS) * time.Millisecond,
		windowWidth:  80,
		windowHeight: 24,
		keyMap:       DefaultKeyMap(),
		help:         h,
		spinner:      s,
		helpViewport: vp,
	}
	m.layout()
	m.rebuildRows("")
	return m, nil
}

// SetWatcher attaches a directory watcher; expanded directories are
// refreshed when their contents change
func (m *FileBrowserModel) SetWatcher(w *tree.Watcher) {
	m.watcher = w
}

// Init implements the bubbletea.Model interface
func (m *FileBrowserModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}

	if m.settings.LastOpened() != "" {
		cmds = append(cmds, m.restoreLastOpened())
	} else if roots := m.tree.Roots(); len(roots) == 1 {
		cmds = append(cmds, m.loadChildren(roots[0]))
	}

	m.syncWatcher()
	cmds = append(cmds, m.waitForChange())
	return tea.Batch(cmds...)
}

// Update implements the bubbletea.Model interface
func (m *FileBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.favManager != nil {
			return m, m.favManager.Update(msg)
		}
		if m.showHelp {
			return m.handleHelp(msg)
		}
		return m.handleNavigation(msg)

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.help.Width = msg.Width
		m.helpViewport.Width = max(1, min(60, msg.Width-10))
		m.helpViewport.Height = max(1, min(tuiconfig.HelpViewportHeight, msg.Height-10))
		m.layout()
		m.adjustViewport()

		// Re-pagination waits until the size stops changing
		m.resizeSeq++
		seq := m.resizeSeq
		return m, tea.Tick(m.resizeDelay, func(time.Time) tea.Msg {
			return resizeSettledMsg{seq: seq}
		})

	case resizeSettledMsg:
		if msg.seq != m.resizeSeq {
			return m, nil
		}
		return m, m.reloadPreview()

	case listingLoadedMsg:
		if m.tree.Attach(msg.node, msg.listing) {
			msg.node.Expanded = true
		}
		m.rebuildRows("")
		m.syncWatcher()
		return m, nil

	case previewLoadedMsg:
		if msg.seq != m.previewSeq {
			return m, nil
		}
		m.loadingPreview = false
		m.opening = ""
		if msg.err != nil {
			m.log.WithError(msg.err).WithField("path", msg.path).Warn("failed to open image")
			return m, m.notify(fmt.Sprintf("Cannot open %s: %v", filepath.Base(msg.path), msg.err), messaging.MessageError)
		}
		m.current = msg.path
		m.view = msg.preview.View
		m.strip.SetPreview(msg.preview, msg.size)
		return m, nil

	case dirChangedMsg:
		if n := m.tree.Find(msg.dir); n != nil && n.State() == tree.Loaded {
			m.log.WithField("dir", msg.dir).Debug("directory changed on disk")
			m.refreshNode(n)
		}
		return m, m.waitForChange()

	case favoriteOpenMsg:
		if m.favManager != nil {
			m.closeFavorites(m.favManager.selectedIndex)
		}
		return m, m.openFavorite(msg.id)

	case favoritesClosedMsg:
		m.closeFavorites(msg.position)
		return m, nil

	case favoritesChangedMsg:
		m.rebuildRows("")
		if msg.message == "" {
			return m, nil
		}
		return m, m.notify(msg.message, msg.msgType)

	case pathCopiedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("failed to copy path")
			return m, m.notify(fmt.Sprintf("Cannot copy path: %v", msg.err), messaging.MessageError)
		}
		return m, m.notify(fmt.Sprintf("Copied %s", msg.path), messaging.MessageSuccess)

	case messaging.DismissMsg:
		m.status.Dismiss(msg.Seq)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleNavigation handles keyboard input in the tree and page strip
func (m *FileBrowserModel) handleNavigation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.saveLastOpened()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keyMap.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keyMap.PageUp):
		m.moveCursor(-m.treeRows())

	case key.Matches(msg, m.keyMap.PageDown):
		m.moveCursor(m.treeRows())

	case key.Matches(msg, m.keyMap.Home):
		m.moveCursor(-len(m.rows))

	case key.Matches(msg, m.keyMap.End):
		m.moveCursor(len(m.rows))

	case key.Matches(msg, m.keyMap.Expand):
		return m, m.expandSelected()

	case key.Matches(msg, m.keyMap.Collapse):
		m.collapseSelected()

	case key.Matches(msg, m.keyMap.ZoomIn):
		return m, m.changeView(m.view.ZoomIn())

	case key.Matches(msg, m.keyMap.ZoomOut):
		return m, m.changeView(m.view.ZoomOut())

	case key.Matches(msg, m.keyMap.MoreOverlap):
		return m, m.changeView(m.view.MoreOverlap())

	case key.Matches(msg, m.keyMap.LessOverlap):
		return m, m.changeView(m.view.LessOverlap())

	case key.Matches(msg, m.keyMap.Mask):
		m.mask = !m.mask
		m.settings.SetMaskEnabled(m.mask)
		return m, m.reloadPreview()

	case key.Matches(msg, m.keyMap.PrevPage):
		m.strip.Scroll(-1)

	case key.Matches(msg, m.keyMap.NextPage):
		m.strip.Scroll(1)

	case key.Matches(msg, m.keyMap.Favorite):
		return m, m.toggleFavorite()

	case key.Matches(msg, m.keyMap.Favorites):
		m.openFavoritesManager()

	case key.Matches(msg, m.keyMap.CopyPath):
		if id := m.selectedID(); id != "" {
			return m, copyPath(id)
		}

	case key.Matches(msg, m.keyMap.Sort):
		return m, m.cycleSort()

	case key.Matches(msg, m.keyMap.Refresh):
		if dir := m.selectedDir(); dir != nil {
			m.refreshNode(dir)
			return m, m.notify(fmt.Sprintf("Refreshed %s", dir.Name), messaging.MessageInfo)
		}

	case key.Matches(msg, m.keyMap.Narrower):
		m.resizeTree(-tuiconfig.TreeWidthStep)

	case key.Matches(msg, m.keyMap.Wider):
		m.resizeTree(tuiconfig.TreeWidthStep)

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		m.setupHelpViewport()
	}

	return m, nil
}

// handleHelp handles keys while the help dialog is shown
func (m *FileBrowserModel) handleHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Help), key.Matches(msg, m.keyMap.Close), key.Matches(msg, m.keyMap.Quit):
		m.showHelp = false
		return m, nil
	}

	var cmd tea.Cmd
	m.helpViewport, cmd = m.helpViewport.Update(msg)
	return m, cmd
}

// Tree

func (m *FileBrowserModel) moveCursor(delta int) {
	m.cursor = max(0, min(len(m.rows)-1, m.cursor+delta))
	m.adjustViewport()
}

// adjustViewport adjusts the viewport to show the cursor
func (m *FileBrowserModel) adjustViewport() {
	height := m.treeRows()
	if m.cursor < m.viewport {
		m.viewport = m.cursor
	} else if m.cursor >= m.viewport+height {
		m.viewport = m.cursor - height + 1
	}
	m.viewport = max(0, min(m.viewport, len(m.rows)-height))
}

// rebuildRows flattens the tree again and puts the cursor on selectID,
// or on the previously selected node when selectID is empty
func (m *FileBrowserModel) rebuildRows(selectID string) {
	if selectID == "" {
		selectID = m.selectedID()
	}
	m.rows = m.tree.Visible()
	for i, r := range m.rows {
		if r.Node.ID == selectID {
			m.cursor = i
			break
		}
	}
	m.cursor = max(0, min(m.cursor, len(m.rows)-1))
	m.adjustViewport()
}

func (m *FileBrowserModel) selectedRow() (tree.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return tree.Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *FileBrowserModel) selectedID() string {
	if row, ok := m.selectedRow(); ok {
		return row.Node.ID
	}
	return ""
}

// selectedDir returns the selected directory, or the directory holding the
// selected file
func (m *FileBrowserModel) selectedDir() *tree.Node {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	if row.Node.IsDir() {
		return row.Node
	}
	return row.Node.Parent()
}

func (m *FileBrowserModel) expandSelected() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	n := row.Node
	if !n.IsDir() {
		return m.openImage(n.ID)
	}
	if n.State() == tree.Loaded {
		n.Expanded = true
		m.rebuildRows(n.ID)
		m.syncWatcher()
		return nil
	}
	return m.loadChildren(n)
}

func (m *FileBrowserModel) collapseSelected() {
	row, ok := m.selectedRow()
	if !ok {
		return
	}
	n := row.Node
	if n.IsDir() && n.Expanded {
		m.tree.Collapse(n)
		m.rebuildRows(n.ID)
		m.syncWatcher()
		return
	}
	if parent := n.Parent(); parent != nil {
		m.rebuildRows(parent.ID)
	}
}

// loadChildren lists n in the background
func (m *FileBrowserModel) loadChildren(n *tree.Node) tea.Cmd {
	req, ok := m.tree.Begin(n)
	if !ok {
		return nil
	}
	model := m.tree
	return func() tea.Msg {
		return listingLoadedMsg{node: n, listing: model.Fetch(req)}
	}
}

// refreshNode relists n from disk and reopens the directories below it
// that were open before
func (m *FileBrowserModel) refreshNode(n *tree.Node) {
	selected := m.selectedID()
	expanded := m.tree.ExpandedDirs()

	m.tree.Refresh(n)
	for _, id := range expanded {
		if id == n.ID || !within(n.ID, id) {
			continue
		}
		if d := m.tree.Find(id); d != nil {
			m.tree.Expand(d)
		}
	}

	m.rebuildRows(selected)
	m.syncWatcher()
}

func (m *FileBrowserModel) cycleSort() tea.Cmd {
	dir := m.selectedDir()
	if dir == nil {
		return nil
	}
	method := store.NextSortMethod(m.store.SortMethod(dir.ID))
	m.store.SetSortMethod(dir.ID, method)
	m.refreshNode(dir)
	return m.notify(fmt.Sprintf("Sort %s by %s", dir.Name, method), messaging.MessageInfo)
}

func (m *FileBrowserModel) resizeTree(delta int) {
	m.settings.SetTreeWidth(m.treeWidth + delta)
	m.treeWidth = m.settings.TreeWidth()
	m.layout()
}

// Favorites

func (m *FileBrowserModel) toggleFavorite() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	id := row.Node.ID
	added, err := m.favorites.Toggle(id)
	if errors.Is(err, store.ErrCapacityExceeded) {
		return m.notify(fmt.Sprintf("Favorites are full (%d entries)", m.favorites.Capacity()), messaging.MessageWarning)
	}

	m.rebuildRows(id)
	if added {
		return m.notify(fmt.Sprintf("Added %s to favorites", row.Node.Name), messaging.MessageSuccess)
	}
	return m.notify(fmt.Sprintf("Removed %s from favorites", row.Node.Name), messaging.MessageInfo)
}

func (m *FileBrowserModel) openFavoritesManager() {
	position := 0
	if blob, ok := m.settings.DialogPosition(tuiconfig.FavoritesDialogName); ok {
		if p, err := strconv.Atoi(blob); err == nil {
			position = p
		}
	}
	width := min(tuiconfig.DialogLargeWidth, max(tuiconfig.DialogDefaultWidth, m.windowWidth-10))
	m.favManager = NewFavoritesManagerModel(m.favorites, position, width)
}

func (m *FileBrowserModel) closeFavorites(position int) {
	m.settings.SetDialogPosition(tuiconfig.FavoritesDialogName, strconv.Itoa(position))
	m.favManager = nil
}

// openFavorite reveals a favorite in the tree and opens it when it is an
// image. Favorites that vanished from disk are dropped.
func (m *FileBrowserModel) openFavorite(id string) tea.Cmd {
	if !pathExists(id) {
		m.favorites.Remove(id)
		m.rebuildRows("")
		return m.notify(fmt.Sprintf("%s no longer exists and was removed from favorites", filepath.Base(id)), messaging.MessageWarning)
	}

	target, err := m.reveal(id)
	if err != nil {
		m.log.WithError(err).WithField("path", id).Warn("failed to open favorite")
		return m.notify(fmt.Sprintf("Cannot open %s: %v", filepath.Base(id), err), messaging.MessageError)
	}
	if target.IsDir() {
		return nil
	}
	return m.openImage(target.ID)
}

// reveal expands the tree down to path and selects it
func (m *FileBrowserModel) reveal(path string) (*tree.Node, error) {
	trail, err := m.tree.Resolve(path)
	if err != nil {
		return nil, err
	}
	target := trail[len(trail)-1]
	if target.IsDir() {
		m.tree.Expand(target)
	}
	m.rebuildRows(target.ID)
	m.syncWatcher()
	return target, nil
}

// Last opened entry

func (m *FileBrowserModel) restoreLastOpened() tea.Cmd {
	last := m.settings.LastOpened()
	if last == "" {
		return nil
	}

	target, err := m.reveal(last)
	if err != nil {
		m.log.WithError(err).WithField("path", last).Info("last opened entry not restored")
		return m.notify(fmt.Sprintf("Last opened %s not found", filepath.Base(last)), messaging.MessageWarning)
	}
	if target.IsDir() {
		return nil
	}
	return m.openImage(target.ID)
}

func (m *FileBrowserModel) saveLastOpened() {
	id := m.selectedID()
	if id == "" {
		id = m.current
	}
	if id != "" {
		m.settings.SetLastOpened(id)
	}
}

// Pages

// openImage loads the stored view state of path and paginates it
func (m *FileBrowserModel) openImage(path string) tea.Cmd {
	m.opening = path
	m.openingView = m.store.LoadViewState(path)
	return m.requestPreview(path, m.openingView)
}

// changeView persists the new view state of the open image and
// paginates it again. 切换图片期间忽略，避免覆盖正在打开的图片
func (m *FileBrowserModel) changeView(v paginate.ViewState) tea.Cmd {
	if m.current == "" || m.opening != "" || v == m.view {
		return nil
	}
	m.view = v
	m.store.SaveViewState(m.current, v)
	return m.requestPreview(m.current, v)
}

func (m *FileBrowserModel) reloadPreview() tea.Cmd {
	if m.opening != "" {
		return m.requestPreview(m.opening, m.openingView)
	}
	if m.current == "" {
		return nil
	}
	return m.requestPreview(m.current, m.view)
}

// requestPreview decodes and paginates in the background. Only the
// latest request is applied.
func (m *FileBrowserModel) requestPreview(path string, view paginate.ViewState) tea.Cmd {
	m.previewSeq++
	m.loadingPreview = true
	seq := m.previewSeq
	req := img.PreviewRequest{
		Path:         path,
		View:         view,
		ViewportRows: m.pageViewportRows(),
		Mask:         m.mask,
	}
	images := m.images

	return func() tea.Msg {
		p, err := images.Preview(req)
		msg := previewLoadedMsg{seq: seq, path: path, preview: p, err: err}
		if err != nil {
			return msg
		}
		if info, statErr := os.Stat(path); statErr == nil {
			msg.size = info.Size()
		}
		for i := 0; i < p.PageCount(); i++ {
			p.RenderPage(i)
		}
		return msg
	}
}

// Watcher

func (m *FileBrowserModel) syncWatcher() {
	if m.watcher != nil {
		m.watcher.Sync(m.tree.ExpandedDirs())
	}
}

func (m *FileBrowserModel) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	events := m.watcher.Events()
	return func() tea.Msg {
		dir, ok := <-events
		if !ok {
			return nil
		}
		return dirChangedMsg{dir: dir}
	}
}

// copyPath writes path to the system clipboard in the background
func copyPath(path string) tea.Cmd {
	return func() tea.Msg {
		return pathCopiedMsg{path: path, err: utils.CopyToClipboard(path)}
	}
}

func (m *FileBrowserModel) notify(message string, msgType messaging.MessageType) tea.Cmd {
	return m.status.Notify(message, msgType, m.noticeTTL)
}

// Layout

func (m *FileBrowserModel) contentHeight() int {
	return max(1, m.windowHeight-tuiconfig.HeaderHeight-tuiconfig.FooterHeight)
}

func (m *FileBrowserModel) treeRows() int {
	return max(1, m.contentHeight()-tuiconfig.PanelBorderSize)
}

func (m *FileBrowserModel) treeCols() int {
	return max(1, m.treeWidth/max(1, m.config.UI.CellWidth))
}

// pageViewportRows is the height available to one page, in cells
func (m *FileBrowserModel) pageViewportRows() int {
	return max(1, m.contentHeight()-tuiconfig.CaptionHeight)
}

func (m *FileBrowserModel) layout() {
	stripCols := m.windowWidth - m.treeCols() - tuiconfig.PanelBorderSize - 1
	m.strip.SetSize(max(1, stripCols), m.contentHeight())
}

// setupHelpViewport sets up the help viewport with content
func (m *FileBrowserModel) setupHelpViewport() {
	title := theme.CreateDialogTitleStyle().Render("🎼 Score Pager - Help")
	m.helpViewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, title, m.help.FullHelpView(m.keyMap.FullHelp())))
	m.helpViewport.GotoTop()
}

// View implements the bubbletea.Model interface
func (m *FileBrowserModel) View() string {
	header := "🎼 Score Pager"
	if info := m.strip.Info(m.mask); info != "" {
		header += " - " + info
	}
	if m.loadingPreview {
		header += " " + m.spinner.View()
	}
	headerLine := theme.CreateBarStyle(m.windowWidth, theme.ColorHeader).Bold(true).Render(header)

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTreePanel(),
		" ",
		m.strip.View(),
	)

	footer := m.status.RenderMessage()
	if footer == "" {
		footer = m.help.ShortHelpView(m.keyMap.ShortHelp())
	}
	footerLine := theme.CreateBarStyle(m.windowWidth, theme.ColorBrightBlack).Render(footer)

	baseView := headerLine + "\n" + content + "\n" + footerLine

	if m.favManager != nil {
		return m.renderFloatingDialog(m.favManager.View())
	}
	if m.showHelp {
		return m.renderFloatingDialog(m.renderHelpDialog())
	}
	return baseView
}

func (m *FileBrowserModel) renderTreePanel() string {
	cols := m.treeCols()
	rows := m.treeRows()

	var lines []string
	end := min(len(m.rows), m.viewport+rows)
	for i := m.viewport; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor, cols))
	}
	if len(m.rows) == 0 {
		lines = append(lines, theme.CreateSecondaryTextStyle().Render("No folders"))
	}

	return theme.CreateUnifiedPanelStyle(cols, rows).Render(strings.Join(lines, "\n"))
}

func (m *FileBrowserModel) renderRow(r tree.Row, selected bool, cols int) string {
	n := r.Node
	marker := "  "
	switch {
	case n.State() == tree.Loading:
		marker = m.spinner.View() + " "
	case n.IsDir() && n.Expanded && n.State() == tree.Loaded:
		marker = "▾ "
	case n.HasPlaceholder() || len(n.Children()) > 0:
		marker = "▸ "
	}

	label := n.DisplayName()
	if r.Favorite {
		label = theme.CreateFavoriteMarkStyle().Render("★") + " " + label
	}

	line := strings.Repeat(" ", r.Depth*tuiconfig.TreeIndent) + marker + label
	return theme.CreateTreeRowStyle(selected, n.IsDir(), r.Favorite).
		Width(cols).
		Render(ansi.Truncate(line, cols, "…"))
}

// renderFloatingDialog centers a dialog on the screen
func (m *FileBrowserModel) renderFloatingDialog(dialog string) string {
	return lipgloss.Place(
		m.windowWidth,
		m.windowHeight,
		lipgloss.Center,
		lipgloss.Center,
		dialog,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("#222222")),
	)
}

func (m *FileBrowserModel) renderHelpDialog() string {
	instructions := theme.CreateInstructionStyle().
		Align(lipgloss.Center).
		Render("Press ? or esc to close help • Use ↑↓ to scroll")

	dialogContent := lipgloss.JoinVertical(
		lipgloss.Left,
		m.helpViewport.View(),
		instructions,
	)

	return theme.CreateFloatingDialogStyle(min(tuiconfig.DialogLargeWidth, m.windowWidth-10), "").Render(dialogContent)
}

// within reports whether path lies strictly below dir
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

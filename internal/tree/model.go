// Package tree models a filesystem hierarchy that is listed lazily: a
// directory's contents are read the first time it is expanded and kept
// until an explicit refresh.
package tree

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/scorepager/internal/store"
)

// ErrNotFound is returned when a path cannot be reached from any root
var ErrNotFound = errors.New("path not found in tree")

// SortPolicies yields the sort policy of a directory
type SortPolicies interface {
	SortMethod(dir string) string
}

// FavoriteSet yields the current favorites
type FavoriteSet interface {
	List() []string
}

type defaultPolicy struct{}

func (defaultPolicy) SortMethod(string) string { return store.DefaultSortMethod }

type noFavorites struct{}

func (noFavorites) List() []string { return nil }

// Model is the tree. It is not safe for concurrent use; only Fetch may run
// off the owning goroutine.
type Model struct {
	roots     []*Node
	lister    Lister
	policies  SortPolicies
	favorites FavoriteSet
	filter    Filter
	log       logrus.FieldLogger
}

// Option configures a Model
type Option func(*Model)

func WithLister(l Lister) Option {
	return func(m *Model) { m.lister = l }
}

func WithSortPolicies(p SortPolicies) Option {
	return func(m *Model) { m.policies = p }
}

func WithFavorites(f FavoriteSet) Option {
	return func(m *Model) { m.favorites = f }
}

func WithFilter(f Filter) Option {
	return func(m *Model) { m.filter = f }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Model) { m.log = l }
}

// New builds the tree from the roots provider. Roots start unloaded.
func New(roots RootsProvider, opts ...Option) *Model {
	m := &Model{
		lister:    OSLister{},
		policies:  defaultPolicy{},
		favorites: noFavorites{},
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.filter == nil {
		m.filter, _ = ImageFilter(DefaultExtensions)
	}

	for _, r := range roots.Roots() {
		root := &Node{
			ID:   r.ID,
			Name: r.Label,
			Kind: KindRoot,
		}
		root.hasEntries, _ = m.lister.HasEntries(r.ID)
		m.roots = append(m.roots, root)
	}
	return m
}

// Roots returns the top-level nodes
func (m *Model) Roots() []*Node {
	return m.roots
}

// Request identifies one listing of a node
type Request struct {
	Path       string
	generation uint64
}

// Listing is the result of Fetch, ready to be attached
type Listing struct {
	Request
	Children []*Node
	Err      error
}

// Begin marks n as loading and returns the request to Fetch. It reports
// false when n is a file or already loading or loaded.
func (m *Model) Begin(n *Node) (Request, bool) {
	if !n.IsDir() || n.state != Unloaded {
		return Request{}, false
	}
	n.state = Loading
	return Request{Path: n.ID, generation: n.generation}, true
}

// Fetch lists, filters and sorts the children named by req. It touches no
// node and may run on any goroutine.
func (m *Model) Fetch(req Request) Listing {
	out := Listing{Request: req}

	entries, err := m.lister.List(req.Path)
	if err != nil {
		m.log.WithError(err).WithField("dir", req.Path).Debug("listing failed, treating as empty")
		out.Err = err
		return out
	}

	var dirs, files []Entry
	for _, e := range entries {
		switch {
		case e.IsDir:
			dirs = append(dirs, e)
		case m.filter(e.Name):
			files = append(files, e)
		}
	}

	method := m.policies.SortMethod(req.Path)
	SortEntries(dirs, method)
	SortEntries(files, method)

	children := make([]*Node, 0, len(dirs)+len(files))
	for _, e := range dirs {
		id := filepath.Join(req.Path, e.Name)
		has, err := m.lister.HasEntries(id)
		if err != nil {
			// unreadable directories are left out
			m.log.WithError(err).WithField("dir", id).Debug("skipping inaccessible directory")
			continue
		}
		children = append(children, &Node{
			ID:         id,
			Name:       e.Name,
			Kind:       KindDirectory,
			ModTime:    e.ModTime,
			hasEntries: has,
		})
	}
	for _, e := range files {
		children = append(children, &Node{
			ID:      filepath.Join(req.Path, e.Name),
			Name:    e.Name,
			Kind:    KindFile,
			ModTime: e.ModTime,
			Size:    e.Size,
			state:   Loaded,
		})
	}

	out.Children = children
	return out
}

// Attach installs a listing into n. Listings made before the last refresh
// of n are dropped and reported as false.
func (m *Model) Attach(n *Node, l Listing) bool {
	if n.ID != l.Path || n.generation != l.generation || n.state != Loading {
		return false
	}
	for _, c := range l.Children {
		c.parent = n
	}
	n.children = l.Children
	n.hasEntries = len(l.Children) > 0
	n.state = Loaded
	return true
}

// Expand loads n if needed and opens it. A listing still in flight for n
// is superseded and will be refused by Attach.
func (m *Model) Expand(n *Node) {
	if !n.IsDir() {
		return
	}
	if n.state == Loading {
		n.reset()
	}
	if req, ok := m.Begin(n); ok {
		m.Attach(n, m.Fetch(req))
	}
	n.Expanded = true
}

// Collapse closes n, keeping its loaded children
func (m *Model) Collapse(n *Node) {
	n.Expanded = false
}

// Toggle expands a collapsed node and collapses an expanded one
func (m *Model) Toggle(n *Node) {
	if n.Expanded {
		m.Collapse(n)
		return
	}
	m.Expand(n)
}

// Refresh drops the children of n and expands it again from disk.
// Expanded descendants come back collapsed.
func (m *Model) Refresh(n *Node) {
	if !n.IsDir() {
		return
	}
	n.reset()
	has, err := m.lister.HasEntries(n.ID)
	if err != nil {
		m.log.WithError(err).WithField("dir", n.ID).Debug("refresh of inaccessible directory")
	}
	n.hasEntries = has
	m.Expand(n)
}

// Resolve walks from a root to path, expanding each directory on the way,
// and returns the nodes from the root to the target.
func (m *Model) Resolve(path string) ([]*Node, error) {
	target := filepath.Clean(path)

	root := m.rootFor(target)
	if root == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	trail := []*Node{root}
	rel, err := filepath.Rel(root.ID, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if rel == "." {
		return trail, nil
	}

	cur := root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if !cur.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		m.Expand(cur)

		id := filepath.Join(cur.ID, part)
		var next *Node
		for _, c := range cur.Children() {
			if c.ID == id {
				next = c
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		trail = append(trail, next)
		cur = next
	}
	return trail, nil
}

// rootFor returns the root with the longest ID that contains path
func (m *Model) rootFor(path string) *Node {
	var best *Node
	for _, r := range m.roots {
		if !contains(r.ID, path) {
			continue
		}
		if best == nil || len(r.ID) > len(best.ID) {
			best = r
		}
	}
	return best
}

func contains(dir, path string) bool {
	dir = filepath.Clean(dir)
	if dir == path {
		return true
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Find returns the loaded node with the given id
func (m *Model) Find(id string) *Node {
	id = filepath.Clean(id)
	var walk func(nodes []*Node) *Node
	walk = func(nodes []*Node) *Node {
		for _, n := range nodes {
			if filepath.Clean(n.ID) == id {
				return n
			}
			if n.state == Loaded && contains(n.ID, id) {
				if found := walk(n.children); found != nil {
					return found
				}
			}
		}
		return nil
	}
	return walk(m.roots)
}

// Row is one line of the flattened tree
type Row struct {
	Node     *Node
	Depth    int
	Favorite bool
}

// Visible flattens the expanded part of the tree in display order.
// Favorite flags are taken from the favorites at call time.
func (m *Model) Visible() []Row {
	favs := make(map[string]bool)
	for _, id := range m.favorites.List() {
		favs[id] = true
	}

	var rows []Row
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			rows = append(rows, Row{Node: n, Depth: depth, Favorite: favs[n.ID]})
			if n.Expanded && n.state == Loaded {
				walk(n.children, depth+1)
			}
		}
	}
	walk(m.roots, 0)
	return rows
}

// ExpandedDirs returns the ids of expanded, loaded directories
func (m *Model) ExpandedDirs() []string {
	var dirs []string
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if n.IsDir() && n.Expanded && n.state == Loaded {
				dirs = append(dirs, n.ID)
				walk(n.children)
			}
		}
	}
	walk(m.roots)
	return dirs
}

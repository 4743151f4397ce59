package tree

import (
	"time"
)

// Kind is the variant of a tree node
type Kind int

const (
	KindRoot Kind = iota
	KindDirectory
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// LoadState tracks whether a node's children have been listed
type LoadState int

const (
	Unloaded LoadState = iota
	Loading
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Node is one entry of the tree. ID is the canonical absolute path and
// doubles as the persistence and favorites key.
//
// Children are in one of two states. Before loading, a node with
// hasEntries set stands for a directory whose contents exist but have not
// been listed. After loading, children holds the real entries, possibly
// none. A node never carries both.
type Node struct {
	ID      string
	Name    string
	Kind    Kind
	ModTime time.Time
	Size    int64

	Expanded bool

	state      LoadState
	hasEntries bool
	children   []*Node
	parent     *Node
	generation uint64
}

// State returns the load state
func (n *Node) State() LoadState {
	return n.state
}

// IsDir reports whether n can have children
func (n *Node) IsDir() bool {
	return n.Kind != KindFile
}

// HasPlaceholder reports whether n stands for unlisted, non-empty contents
func (n *Node) HasPlaceholder() bool {
	return n.IsDir() && n.state != Loaded && n.hasEntries
}

// Children returns the loaded children, nil until n is loaded
func (n *Node) Children() []*Node {
	if n.state != Loaded {
		return nil
	}
	return n.children
}

// Parent returns the owning node, nil for roots
func (n *Node) Parent() *Node {
	return n.parent
}

// DisplayName is the label shown in the tree. Image files carry their
// modification date.
func (n *Node) DisplayName() string {
	if n.Kind == KindFile && !n.ModTime.IsZero() {
		return n.Name + " (" + n.ModTime.Format("2006-01-02") + ")"
	}
	return n.Name
}

// Depth counts the ancestors of n
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// reset drops the subtree and invalidates in-flight listings
func (n *Node) reset() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	n.state = Unloaded
	n.generation++
}

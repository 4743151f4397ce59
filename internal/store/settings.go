package store

import (
	"strconv"
)

// Global keys
const (
	LastFileKey    = "LastFile"
	TreeWidthKey   = "TreeWidth"
	MaskEnabledKey = "MaskEnabled"
)

const (
	DefaultTreeWidth = 200
	MinTreeWidth     = 100
)

// Settings is a typed view of the global scope
type Settings struct {
	store *Store
}

// NewSettings wraps the global scope of s
func NewSettings(s *Store) *Settings {
	return &Settings{store: s}
}

// LastOpened returns the last opened entity id, empty when unknown
func (g *Settings) LastOpened() string {
	v, _ := g.store.Get(Global(), LastFileKey)
	return v
}

// SetLastOpened records the last opened entity id
func (g *Settings) SetLastOpened(id string) {
	g.store.Set(Global(), LastFileKey, id)
}

// TreeWidth returns the tree panel width, never below MinTreeWidth
func (g *Settings) TreeWidth() int {
	v, ok := g.store.Get(Global(), TreeWidthKey)
	if !ok {
		return DefaultTreeWidth
	}
	w, err := strconv.Atoi(v)
	if err != nil {
		g.store.log.WithError(err).WithField("value", v).Warn("ignoring malformed tree width")
		return DefaultTreeWidth
	}
	return max(w, MinTreeWidth)
}

// SetTreeWidth stores the tree panel width, raised to MinTreeWidth if needed
func (g *Settings) SetTreeWidth(width int) {
	g.store.Set(Global(), TreeWidthKey, strconv.Itoa(max(width, MinTreeWidth)))
}

// MaskEnabled reports whether overlap bands are highlighted
func (g *Settings) MaskEnabled() bool {
	v, _ := g.store.Get(Global(), MaskEnabledKey)
	return v == "1"
}

// SetMaskEnabled stores the mask flag as "0" or "1"
func (g *Settings) SetMaskEnabled(enabled bool) {
	v := "0"
	if enabled {
		v = "1"
	}
	g.store.Set(Global(), MaskEnabledKey, v)
}

// DialogPosition returns the opaque position blob of a dialog
func (g *Settings) DialogPosition(name string) (string, bool) {
	return g.store.Get(Global(), name+"Pos")
}

// SetDialogPosition stores the opaque position blob of a dialog
func (g *Settings) SetDialogPosition(name, blob string) {
	g.store.Set(Global(), name+"Pos", blob)
}

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings(t *testing.T) {
	s, _ := newTestStore(t)
	g := NewSettings(s)

	assert.Empty(t, g.LastOpened())
	assert.Equal(t, DefaultTreeWidth, g.TreeWidth())
	assert.False(t, g.MaskEnabled())

	g.SetLastOpened("/scores/a.png")
	g.SetTreeWidth(40)
	g.SetMaskEnabled(true)
	g.SetDialogPosition("FavoritesManager", "+120+80")

	assert.Equal(t, "/scores/a.png", g.LastOpened())
	assert.Equal(t, MinTreeWidth, g.TreeWidth())
	assert.True(t, g.MaskEnabled())

	pos, ok := g.DialogPosition("FavoritesManager")
	assert.True(t, ok)
	assert.Equal(t, "+120+80", pos)

	v, _ := s.Get(Global(), MaskEnabledKey)
	assert.Equal(t, "1", v)

	g.SetMaskEnabled(false)
	v, _ = s.Get(Global(), MaskEnabledKey)
	assert.Equal(t, "0", v)
}

func TestSettings_MalformedTreeWidth(t *testing.T) {
	s, hook := newTestStore(t)
	g := NewSettings(s)

	s.Set(Global(), TreeWidthKey, "wide")
	assert.Equal(t, DefaultTreeWidth, g.TreeWidth())
	assert.NotNil(t, hook.LastEntry())

	s.Set(Global(), TreeWidthKey, "50")
	assert.Equal(t, MinTreeWidth, g.TreeWidth())
}

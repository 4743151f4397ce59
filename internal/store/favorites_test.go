package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavorites_ToggleIsItsOwnInverse(t *testing.T) {
	s, _ := newTestStore(t)
	f := NewFavorites(s, 0)
	assert.Equal(t, DefaultCapacity, f.Capacity())

	on, err := f.Toggle("/scores/a.png")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, f.Contains("/scores/a.png"))

	on, err = f.Toggle("/scores/a.png")
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, f.Contains("/scores/a.png"))
	assert.Empty(t, f.List())
}

func TestFavorites_CapacityExceeded(t *testing.T) {
	s, _ := newTestStore(t)
	f := NewFavorites(s, 50)

	for i := 0; i < 50; i++ {
		on, err := f.Toggle(fmt.Sprintf("/scores/%02d.png", i))
		require.NoError(t, err)
		require.True(t, on)
	}

	on, err := f.Toggle("/scores/new.png")
	assert.False(t, on)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Len(t, f.List(), 50)
	assert.False(t, f.Contains("/scores/new.png"))

	assert.ErrorIs(t, f.Add("/scores/new.png"), ErrCapacityExceeded)

	// removing from a full list still works
	on, err = f.Toggle("/scores/00.png")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Len(t, f.List(), 49)
}

func TestFavorites_AddRemove(t *testing.T) {
	s, _ := newTestStore(t)
	f := NewFavorites(s, 5)

	require.NoError(t, f.Add("/a"))
	require.NoError(t, f.Add("/b"))
	require.NoError(t, f.Add("/a"))
	assert.Equal(t, []string{"/a", "/b"}, f.List())

	f.Remove("/missing")
	f.Remove("/a")
	assert.Equal(t, []string{"/b"}, f.List())
}

func TestFavorites_Reorder(t *testing.T) {
	s, _ := newTestStore(t)
	f := NewFavorites(s, 5)
	for _, id := range []string{"/a", "/b", "/c"} {
		require.NoError(t, f.Add(id))
	}

	require.NoError(t, f.Reorder([]string{"/c", "/a", "/b"}))
	assert.Equal(t, []string{"/c", "/a", "/b"}, f.List())

	tests := []struct {
		name  string
		order []string
	}{
		{"short", []string{"/a", "/b"}},
		{"unknown id", []string{"/a", "/b", "/x"}},
		{"duplicate", []string{"/a", "/a", "/b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.Reorder(tt.order), ErrNotPermutation)
			assert.Equal(t, []string{"/c", "/a", "/b"}, f.List())
		})
	}
}

func TestFavorites_Move(t *testing.T) {
	s, _ := newTestStore(t)
	f := NewFavorites(s, 5)
	for _, id := range []string{"/a", "/b", "/c"} {
		require.NoError(t, f.Add(id))
	}

	assert.True(t, f.Move("/c", -1))
	assert.Equal(t, []string{"/a", "/c", "/b"}, f.List())

	assert.True(t, f.Move("/a", 10))
	assert.Equal(t, []string{"/c", "/b", "/a"}, f.List())

	assert.False(t, f.Move("/c", -1))
	assert.False(t, f.Move("/missing", 1))
}

func TestFavorites_PruneAndClear(t *testing.T) {
	s, _ := newTestStore(t)
	f := NewFavorites(s, 5)
	for _, id := range []string{"/a", "/gone", "/b"} {
		require.NoError(t, f.Add(id))
	}

	removed := f.Prune(func(id string) bool { return id != "/gone" })
	assert.Equal(t, []string{"/gone"}, removed)
	assert.Equal(t, []string{"/a", "/b"}, f.List())

	assert.Empty(t, f.Prune(func(string) bool { return true }))

	f.Clear()
	assert.Empty(t, f.List())
	v, ok := s.Get(Global(), FavoritesKey)
	require.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestFavorites_NormalizesStoredList(t *testing.T) {
	s, _ := newTestStore(t)
	s.Set(Global(), FavoritesKey, `["/a", "/a", "", "/b", "/c"]`)

	f := NewFavorites(s, 2)
	assert.Equal(t, []string{"/a", "/b"}, f.List())

	s.Set(Global(), FavoritesKey, `not json`)
	assert.Empty(t, f.List())
}

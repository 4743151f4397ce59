package tree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/scorepager/internal/store"
)

func TestSortEntries_TieBreak(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	entries := []Entry{
		{Name: "b.png", ModTime: ts},
		{Name: "B.png", ModTime: ts},
		{Name: "a.png", ModTime: ts},
	}

	SortEntries(entries, store.SortTimeDesc)
	assert.Equal(t, "a.png", entries[0].Name)
	assert.Equal(t, "B.png", entries[1].Name)
	assert.Equal(t, "b.png", entries[2].Name)
}

func TestSortEntries_UnknownMethodIsNameAsc(t *testing.T) {
	entries := []Entry{{Name: "Zeta"}, {Name: "alpha"}, {Name: "Mu"}}
	SortEntries(entries, "by_color")
	assert.Equal(t, "alpha", entries[0].Name)
	assert.Equal(t, "Mu", entries[1].Name)
	assert.Equal(t, "Zeta", entries[2].Name)
}

func TestImageFilter(t *testing.T) {
	filter, err := ImageFilter(DefaultExtensions)
	require.NoError(t, err)

	tests := []struct {
		name string
		want bool
	}{
		{"score.png", true},
		{"SCORE.PNG", true},
		{"photo.JpEg", true},
		{"anim.gif", true},
		{"scan.bmp", true},
		{"image_config.json", false},
		{"png", false},
		{"notes.png.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter(tt.name))
		})
	}
}

func TestImageFilter_Custom(t *testing.T) {
	filter, err := ImageFilter([]string{".WEBP"})
	require.NoError(t, err)
	assert.True(t, filter("page.webp"))
	assert.False(t, filter("page.png"))

	none, err := ImageFilter(nil)
	require.NoError(t, err)
	assert.False(t, none("page.png"))
}

package paginate

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	src := imaging.New(40, 250, color.White)
	layout, err := Paginate(Request{
		Raster:       Dims{Width: 40, Height: 250},
		Viewport:     100,
		OverlapRatio: 0.2,
		Mask:         true,
	})
	require.NoError(t, err)
	require.Len(t, layout.Pages, 4)

	page := Compose(src, layout.Pages[1], ComposeOptions{})
	assert.Equal(t, image.Rect(0, 0, 40, 100), page.Bounds())

	// divider rows are opaque red
	assert.Equal(t, DividerColor, page.NRGBAAt(5, 20))
	assert.Equal(t, DividerColor, page.NRGBAAt(5, 80))

	// mask band tints white towards green, the middle stays white
	tinted := page.NRGBAAt(5, 10)
	assert.Less(t, tinted.R, uint8(0xFF))
	assert.Less(t, tinted.R, tinted.G)
	assert.Equal(t, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, page.NRGBAAt(5, 50))

	// source untouched
	assert.Equal(t, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, src.NRGBAAt(5, 100))
}

func TestCompose_NoMask(t *testing.T) {
	src := imaging.New(10, 300, color.White)
	layout, err := Paginate(Request{
		Raster:       Dims{Width: 10, Height: 300},
		Viewport:     100,
		OverlapRatio: 0.2,
	})
	require.NoError(t, err)

	page := Compose(src, layout.Pages[0], ComposeOptions{})
	assert.Equal(t, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, page.NRGBAAt(0, 90))
	assert.Equal(t, DividerColor, page.NRGBAAt(0, 80))
}

func TestComposeStrip(t *testing.T) {
	src := imaging.New(30, 180, color.Black)
	layout, err := Paginate(Request{
		Raster:       Dims{Width: 30, Height: 180},
		Viewport:     100,
		OverlapRatio: 0.2,
	})
	require.NoError(t, err)

	strip := ComposeStrip(src, layout, ComposeOptions{})
	assert.Equal(t, layout.CanvasWidth, strip.Bounds().Dx())
	assert.Equal(t, 120, strip.Bounds().Dy())

	// margin is white, page content is black
	assert.Equal(t, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, strip.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{A: 0xFF}, strip.NRGBAAt(15, 50))
	assert.Equal(t, color.NRGBA{A: 0xFF}, strip.NRGBAAt(layout.SlotWidth+15, 50))
}

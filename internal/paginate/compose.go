package paginate

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

var (
	// MaskColor is the overlap highlight, drawn translucent over the page
	MaskColor = color.NRGBA{R: 0x90, G: 0xEE, B: 0x90, A: 0xFF}
	// DividerColor marks the exact overlap boundary
	DividerColor = color.NRGBA{R: 0xFF, A: 0xFF}
)

// ComposeOptions controls how a page is drawn
type ComposeOptions struct {
	// MaskOpacity of the overlap band, 0..1. Zero means 0.3.
	MaskOpacity float64
	// DividerWidth in pixels. Zero means 2.
	DividerWidth int
}

// Compose renders one page from the scaled source raster: the crop, its mask
// bands and the divider lines. src is not modified.
func Compose(src image.Image, page Page, opts ComposeOptions) *image.NRGBA {
	if opts.MaskOpacity <= 0 {
		opts.MaskOpacity = 0.3
	}
	if opts.DividerWidth <= 0 {
		opts.DividerWidth = 2
	}

	crop := page.SourceCrop.Add(src.Bounds().Min)
	dst := imaging.Crop(src, crop)

	for _, band := range page.MaskBands {
		fill := imaging.New(band.Dx(), band.Dy(), MaskColor)
		dst = imaging.Overlay(dst, fill, band.Min, opts.MaskOpacity)
	}

	w := dst.Bounds().Dx()
	h := dst.Bounds().Dy()
	for _, y := range page.Dividers {
		top := min(max(y-opts.DividerWidth/2, 0), h)
		bottom := min(top+opts.DividerWidth, h)
		for row := top; row < bottom; row++ {
			for x := 0; x < w; x++ {
				dst.SetNRGBA(x, row, DividerColor)
			}
		}
	}

	return dst
}

// ComposeStrip draws every page of the layout onto one canvas at its
// canvas offset, leaving the margins white. Captions are left to the caller.
func ComposeStrip(src image.Image, layout Layout, opts ComposeOptions) *image.NRGBA {
	height := 0
	for _, p := range layout.Pages {
		height = max(height, p.CanvasOffset.Y*2+p.SourceCrop.Dy())
	}

	canvas := imaging.New(max(layout.CanvasWidth, 1), max(height, 1), color.White)
	for _, p := range layout.Pages {
		canvas = imaging.Paste(canvas, Compose(src, p, opts), p.CanvasOffset)
	}
	return canvas
}

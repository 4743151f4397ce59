// Package paginate splits a tall raster into overlapping, viewport-high
// pages laid out left to right. Paginate is a pure function of the raster
// dimensions and the view parameters.
package paginate

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// DefaultMargin is the horizontal gap between page slots
const DefaultMargin = 20

var (
	// ErrInvalidViewport is returned for a non-positive viewport height
	ErrInvalidViewport = errors.New("invalid viewport height")
	// ErrEmptyRaster is returned for a raster without pixels
	ErrEmptyRaster = errors.New("raster has no pixels")
)

// Dims is the size of a raster in pixels
type Dims struct {
	Width  int
	Height int
}

// Request holds the inputs of one pagination
type Request struct {
	Raster       Dims
	Viewport     int
	OverlapRatio float64
	Mask         bool
	// Margin is the presentation gap between page slots; zero means DefaultMargin.
	Margin int
}

// Page describes one page of the strip. Rectangles in MaskBands and the
// rows in Dividers are page-local: (0,0) is the top-left of SourceCrop.
type Page struct {
	Index        int
	Count        int
	SourceCrop   image.Rectangle
	CanvasOffset image.Point
	MaskBands    []image.Rectangle
	Dividers     []int
	OverlapRatio float64
}

// Caption is the label drawn under the page
func (p Page) Caption() string {
	return fmt.Sprintf("Page %d/%d (overlap: %d%%)", p.Index+1, p.Count, int(math.Round(p.OverlapRatio*100)))
}

// Layout is the result of a pagination
type Layout struct {
	Pages []Page
	// Overlap is the number of rows shared by consecutive pages.
	Overlap int
	// Step is the vertical advance between page starts.
	Step int
	// SlotWidth is the horizontal extent of one page including margin.
	SlotWidth int
	// CanvasWidth spans all slots.
	CanvasWidth int
}

// Paginate computes the page layout. Given identical requests it returns
// identical layouts.
func Paginate(req Request) (Layout, error) {
	if req.Viewport <= 0 {
		return Layout{}, fmt.Errorf("%w: %d", ErrInvalidViewport, req.Viewport)
	}
	if req.Raster.Width <= 0 || req.Raster.Height <= 0 {
		return Layout{}, fmt.Errorf("%w: %dx%d", ErrEmptyRaster, req.Raster.Width, req.Raster.Height)
	}

	margin := req.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}
	ratio := ClampOverlap(req.OverlapRatio)

	w, h, vh := req.Raster.Width, req.Raster.Height, req.Viewport
	slot := w + margin
	half := margin / 2

	// Nothing to align: one page, no bands or dividers.
	if h <= vh {
		return Layout{
			Pages: []Page{{
				Index:        0,
				Count:        1,
				SourceCrop:   image.Rect(0, 0, w, h),
				CanvasOffset: image.Pt(half, half),
				OverlapRatio: ratio,
			}},
			Step:        h,
			SlotWidth:   slot,
			CanvasWidth: slot,
		}, nil
	}

	overlap := int(math.Floor(float64(vh) * ratio))
	step := vh - overlap
	count := (h + step - 1) / step

	pages := make([]Page, count)
	for i := 0; i < count; i++ {
		startY := i * step
		cropH := min(vh, h-startY)

		page := Page{
			Index:        i,
			Count:        count,
			SourceCrop:   image.Rect(0, startY, w, startY+cropH),
			CanvasOffset: image.Pt(i*slot+half, half),
			OverlapRatio: ratio,
		}

		if overlap > 0 {
			if i > 0 {
				// top band: rows shared with the previous page
				page.Dividers = append(page.Dividers, min(overlap, cropH))
				if req.Mask {
					page.MaskBands = appendBand(page.MaskBands, image.Rect(0, 0, w, overlap), cropH)
				}
			}
			if i < count-1 {
				// bottom band: rows shared with the next page
				if step < cropH {
					page.Dividers = append(page.Dividers, step)
				}
				if req.Mask {
					page.MaskBands = appendBand(page.MaskBands, image.Rect(0, step, w, vh), cropH)
				}
			}
		}

		pages[i] = page
	}

	return Layout{
		Pages:       pages,
		Overlap:     overlap,
		Step:        step,
		SlotWidth:   slot,
		CanvasWidth: count * slot,
	}, nil
}

// appendBand clips band to the crop height and drops it when empty
func appendBand(bands []image.Rectangle, band image.Rectangle, cropH int) []image.Rectangle {
	if band.Max.Y > cropH {
		band.Max.Y = cropH
	}
	if band.Empty() {
		return bands
	}
	return append(bands, band)
}

// ScaleDims applies a zoom factor, keeping at least one pixel per side
func ScaleDims(d Dims, scale float64) Dims {
	return Dims{
		Width:  max(1, int(float64(d.Width)*scale)),
		Height: max(1, int(float64(d.Height)*scale)),
	}
}

// PageAt returns the index of the page whose slot contains canvas column x
func (l Layout) PageAt(x int) int {
	if len(l.Pages) == 0 || l.SlotWidth <= 0 {
		return 0
	}
	i := x / l.SlotWidth
	if i < 0 {
		return 0
	}
	if i >= len(l.Pages) {
		return len(l.Pages) - 1
	}
	return i
}

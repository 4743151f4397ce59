package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	tuiconfig "github.com/HaiFongPan/scorepager/internal/tui/config"
	img "github.com/HaiFongPan/scorepager/internal/tui/image"
	"github.com/HaiFongPan/scorepager/internal/tui/theme"
)

// PageStrip shows the pages of one image side by side, scrolled a page
// at a time
type PageStrip struct {
	preview *img.Preview
	size    int64
	first   int
	width   int
	height  int
}

// SetPreview replaces the shown pages. The scroll position is kept when
// the same image is re-paginated.
func (s *PageStrip) SetPreview(p *img.Preview, size int64) {
	if s.preview == nil || p == nil || s.preview.Path != p.Path {
		s.first = 0
	}
	s.preview = p
	s.size = size
	s.clamp()
}

// SetSize sets the area available to the strip in cells
func (s *PageStrip) SetSize(width, height int) {
	s.width = max(width, 1)
	s.height = max(height, 1)
	s.clamp()
}

// Preview returns the shown pagination, nil when nothing is open
func (s *PageStrip) Preview() *img.Preview {
	return s.preview
}

// First returns the index of the leftmost visible page
func (s *PageStrip) First() int {
	return s.first
}

// VisiblePages returns how many whole pages fit side by side, at least one
func (s *PageStrip) VisiblePages() int {
	if s.preview == nil {
		return 0
	}
	return max(1, s.width/max(1, s.preview.SlotCols()))
}

// Scroll moves the strip by delta pages
func (s *PageStrip) Scroll(delta int) bool {
	if s.preview == nil {
		return false
	}
	before := s.first
	s.first += delta
	s.clamp()
	return s.first != before
}

func (s *PageStrip) clamp() {
	if s.preview == nil {
		s.first = 0
		return
	}
	last := s.preview.PageCount() - s.VisiblePages()
	if s.first > last {
		s.first = last
	}
	if s.first < 0 {
		s.first = 0
	}
}

// Info is the one-line description of the open image
func (s *PageStrip) Info(mask bool) string {
	p := s.preview
	if p == nil {
		return ""
	}
	maskState := "off"
	if mask {
		maskState = "on"
	}
	parts := []string{
		filepath.Base(p.Path),
		p.Stats.OriginalSize.String(),
	}
	if s.size > 0 {
		parts = append(parts, humanize.Bytes(uint64(s.size)))
	}
	parts = append(parts,
		fmt.Sprintf("zoom %d%%", int(p.View.Scale*100+0.5)),
		fmt.Sprintf("overlap %d%%", int(p.View.OverlapRatio*100+0.5)),
		"mask "+maskState,
	)
	if last := s.first + s.VisiblePages(); last < p.PageCount() {
		parts = append(parts, fmt.Sprintf("▶ %d more", p.PageCount()-last))
	}
	return strings.Join(parts, " · ")
}

// View renders the visible pages with their captions
func (s *PageStrip) View() string {
	p := s.preview
	if p == nil {
		return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center,
			theme.CreateSecondaryTextStyle().Render("Select an image in the tree and press enter"))
	}

	// 第一页最高，分隔线与它等高
	gap := theme.PageSeparator(max(0, p.SlotCols()-p.PageCols), tuiconfig.CaptionHeight+p.PageRows[s.first])
	var blocks []string
	last := min(p.PageCount(), s.first+s.VisiblePages())
	for i := s.first; i < last; i++ {
		caption := theme.CreateCaptionStyle(p.PageCols).Render(ansi.Truncate(p.Layout.Pages[i].Caption(), p.PageCols, ""))
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, caption, p.RenderPage(i)))
		if i < last-1 {
			blocks = append(blocks, gap)
		}
	}

	strip := lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
	return lipgloss.NewStyle().MaxWidth(s.width).MaxHeight(s.height).Render(strip)
}

package image

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/scorepager/internal/paginate"
)

// ImageManager 负责把一张图片变成可显示的分页：解码、缩放、分页、渲染
type ImageManager struct {
	cache *RasterCache
	log   logrus.FieldLogger

	// 终端单元格对应的像素尺寸
	cellWidth  int
	cellHeight int
	margin     int
}

// NewImageManager 创建新的图片管理器实例
func NewImageManager(cache *RasterCache, cellWidth, cellHeight, margin int, log logrus.FieldLogger) *ImageManager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ImageManager{
		cache:      cache,
		log:        log,
		cellWidth:  max(cellWidth, 1),
		cellHeight: max(cellHeight, 1),
		margin:     margin,
	}
}

// PreviewRequest 一次预览的输入
type PreviewRequest struct {
	Path         string
	View         paginate.ViewState
	ViewportRows int
	Mask         bool
}

// Preview 一张图片在当前视图参数下的分页结果
type Preview struct {
	Path   string
	View   paginate.ViewState
	Layout paginate.Layout
	Stats  PreviewStats

	// 每页占用的终端单元格
	PageCols int
	PageRows []int

	raster     image.Image
	cellWidth  int
	cellHeight int

	mu       sync.Mutex
	rendered map[int]string
}

// Preview 生成分页。解码失败返回 DecodeError，视口非法返回 paginate.ErrInvalidViewport
func (m *ImageManager) Preview(req PreviewRequest) (*Preview, error) {
	startTime := time.Now()

	view := req.View.Normalize()
	scaled, hit, err := m.cache.Scaled(req.Path, view.Scale)
	if err != nil {
		return nil, err
	}

	b := scaled.Bounds()
	layout, err := paginate.Paginate(paginate.Request{
		Raster:       paginate.Dims{Width: b.Dx(), Height: b.Dy()},
		Viewport:     req.ViewportRows * m.cellHeight,
		OverlapRatio: view.OverlapRatio,
		Mask:         req.Mask,
		Margin:       m.margin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to paginate %s: %w", req.Path, err)
	}

	p := &Preview{
		Path:       req.Path,
		View:       view,
		Layout:     layout,
		PageCols:   ceilDiv(b.Dx(), m.cellWidth),
		raster:     scaled,
		cellWidth:  m.cellWidth,
		cellHeight: m.cellHeight,
		rendered:   make(map[int]string),
	}
	for _, page := range layout.Pages {
		p.PageRows = append(p.PageRows, ceilDiv(page.SourceCrop.Dy(), m.cellHeight))
	}

	// 原始尺寸来自缓存，缩放比例为 1 时与 scaled 相同
	p.Stats.ScaledSize = ImageSize{Width: b.Dx(), Height: b.Dy()}
	p.Stats.OriginalSize = p.Stats.ScaledSize
	if view.Scale != 1.0 {
		if orig, _, err := m.cache.Decode(req.Path); err == nil {
			ob := orig.Bounds()
			p.Stats.OriginalSize = ImageSize{Width: ob.Dx(), Height: ob.Dy()}
		}
	}
	p.Stats.CacheHit = hit
	p.Stats.LoadTime = time.Since(startTime)

	m.log.WithFields(logrus.Fields{
		"path":      req.Path,
		"scale":     view.Scale,
		"overlap":   view.OverlapRatio,
		"pages":     len(layout.Pages),
		"cache_hit": hit,
		"duration":  p.Stats.LoadTime,
	}).Debug("preview ready")

	return p, nil
}

// Invalidate 丢弃某个文件的缓存位图
func (m *ImageManager) Invalidate(path string) {
	m.cache.Invalidate(path)
}

// Stats 获取缓存统计信息
func (m *ImageManager) Stats() CacheStats {
	return m.cache.Stats()
}

// PageCount 返回页数
func (p *Preview) PageCount() int {
	return len(p.Layout.Pages)
}

// SlotCols 每页连同页间距占用的列数
func (p *Preview) SlotCols() int {
	return ceilDiv(p.Layout.SlotWidth, p.cellWidth)
}

// Compose 合成某一页的位图（裁剪、遮罩、分隔线）。
// 分隔线至少占半个单元格，文本渲染时才不会被缩放抹掉
func (p *Preview) Compose(i int) *image.NRGBA {
	return paginate.Compose(p.raster, p.Layout.Pages[i], paginate.ComposeOptions{
		DividerWidth: max(2, p.cellHeight/2),
	})
}

// ComposeStrip 合成整条页带，页与页之间留白
func (p *Preview) ComposeStrip() *image.NRGBA {
	return paginate.ComposeStrip(p.raster, p.Layout, paginate.ComposeOptions{})
}

// RenderPage 以 ANSI 文本渲染某一页，结果会被缓存
func (p *Preview) RenderPage(i int) string {
	if i < 0 || i >= len(p.Layout.Pages) {
		return ""
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.rendered[i]; ok {
		return s
	}
	s := RenderText(p.Compose(i), p.PageCols, p.PageRows[i])
	p.rendered[i] = s
	return s
}

func ceilDiv(a, b int) int {
	return max(1, (a+b-1)/b)
}

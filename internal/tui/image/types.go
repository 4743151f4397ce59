package image

import (
	"fmt"
	"time"
)

// ImageSize 图片尺寸信息
type ImageSize struct {
	Width  int
	Height int
}

func (s ImageSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// DecodeError 图片无法读取或解码
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RenderError 渲染错误类型
type RenderError struct {
	Terminal string
	Protocol string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error on %s terminal with %s protocol: %v", e.Terminal, e.Protocol, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// CacheStats 缓存统计信息
type CacheStats struct {
	Entries    int
	MaxEntries int
	Hits       int64
	Misses     int64
}

// HitRate 命中率，无访问时为 0
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// PreviewStats 一次预览的统计信息
type PreviewStats struct {
	OriginalSize ImageSize
	ScaledSize   ImageSize
	CacheHit     bool
	LoadTime     time.Duration
}

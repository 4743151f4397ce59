package image

import (
	"fmt"
	"image"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxEntries 默认缓存的位图数量
const DefaultMaxEntries = 4

// RasterCache 在内存中缓存解码及缩放后的位图
type RasterCache struct {
	maxEntries int
	index      map[string]*CacheEntry
	mutex      sync.Mutex
	group      singleflight.Group
	log        logrus.FieldLogger

	hits   int64
	misses int64
}

// CacheEntry 缓存条目
type CacheEntry struct {
	Key        string
	Path       string
	Scale      float64
	Image      image.Image
	ModTime    time.Time
	AccessTime time.Time
}

// NewRasterCache 创建新的位图缓存
func NewRasterCache(maxEntries int, log logrus.FieldLogger) *RasterCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RasterCache{
		maxEntries: maxEntries,
		index:      make(map[string]*CacheEntry),
		log:        log,
	}
}

// Decode 读取原始尺寸的图片
func (c *RasterCache) Decode(path string) (image.Image, bool, error) {
	return c.Scaled(path, 1.0)
}

// Scaled 返回按比例缩放后的图片，并报告是否命中缓存。
// 同一张图片同一比例的并发请求只会解码一次。
func (c *RasterCache) Scaled(path string, scale float64) (image.Image, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, &DecodeError{Path: path, Err: err}
	}

	key := cacheKey(path, scale)
	if img, ok := c.get(key, info.ModTime()); ok {
		return img, true, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		var img image.Image
		if scale == 1.0 {
			src, err := decodeFile(path)
			if err != nil {
				return nil, err
			}
			img = src
		} else {
			src, _, err := c.Scaled(path, 1.0)
			if err != nil {
				return nil, err
			}
			b := src.Bounds()
			w := max(1, int(float64(b.Dx())*scale))
			h := max(1, int(float64(b.Dy())*scale))
			img = imaging.Resize(src, w, h, imaging.Lanczos)
		}

		c.put(key, path, scale, img, info.ModTime())
		return img, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(image.Image), false, nil
}

// Invalidate 移除某个文件的全部缓存
func (c *RasterCache) Invalidate(path string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key, entry := range c.index {
		if entry.Path == path {
			delete(c.index, key)
		}
	}
}

// Stats 获取缓存统计信息
func (c *RasterCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return CacheStats{
		Entries:    len(c.index),
		MaxEntries: c.maxEntries,
		Hits:       c.hits,
		Misses:     c.misses,
	}
}

func (c *RasterCache) get(key string, modTime time.Time) (image.Image, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.index[key]
	if !exists {
		c.misses++
		return nil, false
	}

	// 文件已被修改，缓存失效
	if !entry.ModTime.Equal(modTime) {
		delete(c.index, key)
		c.misses++
		return nil, false
	}

	entry.AccessTime = time.Now()
	c.hits++
	return entry.Image, true
}

func (c *RasterCache) put(key, path string, scale float64, img image.Image, modTime time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.index[key] = &CacheEntry{
		Key:        key,
		Path:       path,
		Scale:      scale,
		Image:      img,
		ModTime:    modTime,
		AccessTime: time.Now(),
	}

	if len(c.index) > c.maxEntries {
		c.cleanupByLRU()
	}
}

// cleanupByLRU 删除最久未访问的条目，直到数量满足要求
func (c *RasterCache) cleanupByLRU() {
	entries := make([]*CacheEntry, 0, len(c.index))
	for _, entry := range c.index {
		entries = append(entries, entry)
	}

	// 按访问时间排序 (最久未访问的在前)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AccessTime.Before(entries[j].AccessTime)
	})

	for _, entry := range entries {
		if len(c.index) <= c.maxEntries {
			break
		}
		c.log.WithField("key", entry.Key).Debug("evicting raster from cache")
		delete(c.index, entry.Key)
	}
}

func cacheKey(path string, scale float64) string {
	return path + "@" + strconv.FormatFloat(scale, 'f', 2, 64)
}

// decodeFile 解码图片文件，自动处理 EXIF 方向
func decodeFile(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())}
	}
	return img, nil
}

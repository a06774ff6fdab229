package dataset

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultCacheSize bounds the number of decoded images kept in memory.
const DefaultCacheSize = 8

// ImageLoader decodes images from disk and keeps the most recently used
// ones so that stepping back and forth does not hit the decoder again.
// It is safe for concurrent use.
type ImageLoader struct {
	cache  *lru.Cache[string, image.Image]
	logger *slog.Logger
}

// NewImageLoader returns a loader caching up to size images. Non-positive
// sizes fall back to DefaultCacheSize.
func NewImageLoader(size int, logger *slog.Logger) (*ImageLoader, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, fmt.Errorf("image cache: %w", err)
	}
	return &ImageLoader{cache: c, logger: logger}, nil
}

// Load returns the decoded image at path.
func (l *ImageLoader) Load(path string) (image.Image, error) {
	if img, ok := l.cache.Get(path); ok {
		return img, nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("load image %s: empty bounds", path)
	}
	l.cache.Add(path, img)
	if l.logger != nil {
		l.logger.Debug("image decoded", "path", path, "w", b.Dx(), "h", b.Dy(), "cached", l.cache.Len())
	}
	return img, nil
}

// Prefetch decodes path into the cache, ignoring errors. Meant to run on a
// background goroutine for the neighbouring image.
func (l *ImageLoader) Prefetch(path string) {
	if path == "" || l.cache.Contains(path) {
		return
	}
	if _, err := l.Load(path); err != nil && l.logger != nil {
		l.logger.Debug("prefetch failed", "path", path, "error", err)
	}
}

// Forget drops path from the cache.
func (l *ImageLoader) Forget(path string) { l.cache.Remove(path) }

// Cached reports the number of cached images.
func (l *ImageLoader) Cached() int { return l.cache.Len() }

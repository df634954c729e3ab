package preview

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/golang/groupcache/lru"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"photo-catalog/internal/database"
	"photo-catalog/internal/logging"
	"photo-catalog/internal/media"
	"photo-catalog/internal/memory"
	"photo-catalog/internal/metrics"
)

// DefaultCapacity is the number of decoded previews kept when none is
// configured.
const DefaultCapacity = 20

// Source resolves a picture id to its catalog record.
type Source interface {
	GetPicture(ctx context.Context, id uuid.UUID) (database.Picture, error)
}

// Image is a decoded, upright full-resolution picture.
type Image struct {
	ID     uuid.UUID
	Path   string
	Width  int
	Height int
	Pixels *image.NRGBA
}

// EncodeJPEG writes the image as JPEG, first fitting it into a
// maxDimension box when maxDimension is positive.
func (img *Image) EncodeJPEG(w io.Writer, maxDimension, quality int) error {
	var out image.Image = img.Pixels
	if maxDimension > 0 && (img.Width > maxDimension || img.Height > maxDimension) {
		out = imaging.Fit(img.Pixels, maxDimension, maxDimension, imaging.Lanczos)
	}
	return jpeg.Encode(w, out, &jpeg.Options{Quality: quality})
}

// Cache keeps the most recently used previews decoded in memory.
type Cache struct {
	source  Source
	monitor *memory.Monitor

	maxDimension int
	maxPixels    int

	loads singleflight.Group

	mu       sync.Mutex
	capacity int
	entries  *lru.Cache
	adding   bool
	// loading tracks decodes in flight. A flight marked stale is returned to
	// its callers but not cached.
	loading map[uuid.UUID]*flight
}

type flight struct {
	path  string
	stale bool
}

// New creates a cache holding at most capacity previews. Non-positive
// capacities select DefaultCapacity.
func New(source Source, capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		source:       source,
		capacity:     capacity,
		maxDimension: media.MaxImageDimension,
		maxPixels:    media.MaxImagePixels,
		loading:      make(map[uuid.UUID]*flight),
	}
	c.entries = c.newLRU()
	return c
}

// WithMonitor makes loads wait while m reports memory pressure.
func (c *Cache) WithMonitor(m *memory.Monitor) *Cache {
	c.monitor = m
	return c
}

func (c *Cache) newLRU() *lru.Cache {
	l := lru.New(c.capacity)
	l.OnEvicted = func(key lru.Key, _ any) {
		// Remove and Purge also land here; only count capacity evictions.
		if c.adding {
			metrics.PreviewCacheEvictions.Inc()
			logging.Debug("Preview cache evicted %v", key)
		}
	}
	return l
}

// Capacity returns the maximum number of cached previews.
func (c *Cache) Capacity() int {
	return c.capacity
}

// GetOrLoad returns the preview for id, decoding it from disk on a miss.
// Concurrent misses for the same id share one decode, which keeps running
// when the caller that started it gives up.
func (c *Cache) GetOrLoad(ctx context.Context, id uuid.UUID) (*Image, error) {
	if img, ok := c.get(id); ok {
		metrics.PreviewCacheHits.Inc()
		return img, nil
	}
	metrics.PreviewCacheMisses.Inc()

	detached := context.WithoutCancel(ctx)
	ch := c.loads.DoChan(id.String(), func() (any, error) {
		return c.load(detached, id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Image), nil
	}
}

func (c *Cache) get(id uuid.UUID) (*Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Image), true
}

func (c *Cache) load(ctx context.Context, id uuid.UUID) (*Image, error) {
	f := &flight{}
	c.mu.Lock()
	c.loading[id] = f
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.loading, id)
		c.mu.Unlock()
	}()

	p, err := c.source.GetPicture(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve picture %s: %w", id, err)
	}
	c.mu.Lock()
	f.path = p.Path()
	c.mu.Unlock()

	if err := c.monitor.Wait(ctx); err != nil {
		return nil, err
	}

	path := p.Path()
	start := time.Now()
	pixels, err := media.LoadUpright(path, c.maxDimension, c.maxPixels)
	metrics.PreviewDecodeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("load preview %s: %w", path, err)
	}

	b := pixels.Bounds()
	img := &Image{
		ID:     id,
		Path:   path,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: pixels,
	}

	c.mu.Lock()
	if f.stale {
		c.mu.Unlock()
		logging.Debug("Preview for %s changed while loading %s, not caching", id, path)
		return img, nil
	}
	c.adding = true
	c.entries.Add(id, img)
	c.adding = false
	metrics.PreviewCacheEntries.Set(float64(c.entries.Len()))
	c.mu.Unlock()

	logging.Debug("Preview cache loaded %s (%dx%d)", path, img.Width, img.Height)
	return img, nil
}

// Invalidate drops the preview for id.
func (c *Cache) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.loading[id]; ok {
		f.stale = true
	}
	c.entries.Remove(id)
	metrics.PreviewCacheEntries.Set(float64(c.entries.Len()))
}

// PathChanged drops the preview for id if it was decoded from a path other
// than path. It reports whether an entry was dropped. A load for id that is
// in flight from another path is not cached when it completes.
func (c *Cache) PathChanged(id uuid.UUID, path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.loading[id]; ok && f.path != path {
		f.stale = true
	}

	v, ok := c.entries.Get(id)
	if !ok || v.(*Image).Path == path {
		return false
	}
	c.entries.Remove(id)
	metrics.PreviewCacheEntries.Set(float64(c.entries.Len()))
	return true
}

// Len returns the number of cached previews.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Purge drops every cached preview.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.loading {
		f.stale = true
	}
	c.entries = c.newLRU()
	metrics.PreviewCacheEntries.Set(0)
}

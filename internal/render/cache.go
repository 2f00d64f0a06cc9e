package render

import (
	"context"
	"crypto/sha256"
	"sync"
)

type cacheKey struct {
	doc   [sha256.Size]byte
	page  int
	scale float64
}

// Cache memoizes rendered pages by document digest, page and scale. It is owned by
// one pipeline run and passed in explicitly.
type Cache struct {
	mu     sync.Mutex
	images map[cacheKey][]byte
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{images: make(map[cacheKey][]byte)}
}

// Len reports the number of cached images.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

// Cached wraps a Renderer so that pages already in cache are not rendered again.
func Cached(inner Renderer, cache *Cache) Renderer {
	return &cachedRenderer{inner: inner, cache: cache}
}

type cachedRenderer struct {
	inner Renderer
	cache *Cache
}

func (r *cachedRenderer) Render(ctx context.Context, doc []byte, pages []int, scale float64) (map[int][]byte, error) {
	digest := sha256.Sum256(doc)
	out := make(map[int][]byte, len(pages))
	var missing []int

	r.cache.mu.Lock()
	for _, n := range pages {
		if img, ok := r.cache.images[cacheKey{digest, n, scale}]; ok {
			out[n] = img
		} else {
			missing = append(missing, n)
		}
	}
	r.cache.mu.Unlock()

	if len(missing) == 0 {
		return out, nil
	}

	rendered, err := r.inner.Render(ctx, doc, missing, scale)
	if err != nil {
		return nil, err
	}

	r.cache.mu.Lock()
	defer r.cache.mu.Unlock()
	for n, img := range rendered {
		r.cache.images[cacheKey{digest, n, scale}] = img
		out[n] = img
	}
	return out, nil
}

package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/cache"
	"github.com/ebogdum/browsefs/metrics"
)

// CachingFetcher wraps a fetcher with a listing page cache. Cache keys embed
// the storage kind and root path, so pages never leak between independent
// tree roots. Pages carrying a soft error are not cached.
type CachingFetcher struct {
	inner  Fetcher
	store  cache.Store
	logger *zap.Logger
}

// NewCachingFetcher wraps inner with the given page cache.
func NewCachingFetcher(inner Fetcher, store cache.Store, logger *zap.Logger) *CachingFetcher {
	return &CachingFetcher{
		inner:  inner,
		store:  store,
		logger: logger,
	}
}

// FetchPage serves the page from cache when possible and delegates to the
// wrapped fetcher otherwise.
func (c *CachingFetcher) FetchPage(ctx context.Context, req Request) (*Page, error) {
	key := pageKey(req)

	if data, ok := c.store.Get(ctx, key); ok {
		var page Page
		if err := json.Unmarshal(data, &page); err == nil {
			metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
			return &page, nil
		}
		c.logger.Debug("discarding undecodable cached page", zap.String("key", key))
	}
	metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()

	page, err := c.inner.FetchPage(ctx, req)
	if err != nil {
		return nil, err
	}

	if page.SoftError == "" {
		if data, err := json.Marshal(page); err == nil {
			c.store.Set(ctx, key, data)
		}
	}

	return page, nil
}

// FetchContent delegates to the wrapped fetcher's content capability.
// Previews are not cached.
func (c *CachingFetcher) FetchContent(ctx context.Context, req Request) (io.ReadCloser, error) {
	cf, ok := c.inner.(ContentFetcher)
	if !ok {
		return nil, ErrContentNotSupported
	}
	return cf.FetchContent(ctx, req)
}

// Close closes the wrapped fetcher. The cache store is shared across
// connectors and closed by its owner.
func (c *CachingFetcher) Close() error {
	return c.inner.Close()
}

func pageKey(req Request) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d|%s",
		req.Kind, req.RootPath, strings.Join(req.Segments, "/"), req.Page, req.PageSize, req.Filter)
}

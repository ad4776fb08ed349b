package connectors

import (
	"context"
	"io"
	"time"

	"github.com/ebogdum/browsefs/metrics"
)

// InstrumentedFetcher wraps a fetcher with Prometheus metrics for page
// fetch counts, outcomes, and latency.
type InstrumentedFetcher struct {
	inner Fetcher
	kind  StorageKind
}

// NewInstrumentedFetcher wraps inner with metrics recording for kind.
func NewInstrumentedFetcher(inner Fetcher, kind StorageKind) *InstrumentedFetcher {
	return &InstrumentedFetcher{inner: inner, kind: kind}
}

// FetchPage delegates to the wrapped fetcher and records the outcome.
func (f *InstrumentedFetcher) FetchPage(ctx context.Context, req Request) (*Page, error) {
	start := time.Now()
	page, err := f.inner.FetchPage(ctx, req)
	metrics.FetchPageDuration.WithLabelValues(string(f.kind)).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.FetchPagesTotal.WithLabelValues(string(f.kind), "error").Inc()
	case page.SoftError != "":
		metrics.FetchPagesTotal.WithLabelValues(string(f.kind), "soft_error").Inc()
	default:
		metrics.FetchPagesTotal.WithLabelValues(string(f.kind), "ok").Inc()
	}

	return page, err
}

// FetchContent delegates to the wrapped fetcher's content capability.
func (f *InstrumentedFetcher) FetchContent(ctx context.Context, req Request) (io.ReadCloser, error) {
	cf, ok := f.inner.(ContentFetcher)
	if !ok {
		return nil, ErrContentNotSupported
	}

	start := time.Now()
	rc, err := cf.FetchContent(ctx, req)
	metrics.ContentFetchDuration.WithLabelValues(string(f.kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchPagesTotal.WithLabelValues(string(f.kind), "error").Inc()
	}

	return rc, err
}

// Close closes the wrapped fetcher.
func (f *InstrumentedFetcher) Close() error {
	return f.inner.Close()
}

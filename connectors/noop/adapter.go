// Package noop provides a no-op fetcher for storage kinds that are enabled
// without usable settings. Every listing is empty and content previews are
// unsupported.
package noop

import (
	"context"

	"github.com/ebogdum/browsefs/connectors"
)

// Adapter implements connectors.Fetcher with empty results.
type Adapter struct{}

// NewAdapter creates a new no-op fetcher.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// FetchPage returns an empty, final page.
func (a *Adapter) FetchPage(ctx context.Context, req connectors.Request) (*connectors.Page, error) {
	return &connectors.Page{
		Entries:        []connectors.Entry{},
		NextPageNumber: req.Page,
	}, nil
}

// Close is a no-op.
func (a *Adapter) Close() error {
	return nil
}

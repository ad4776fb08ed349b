// Package connectors provides storage connector adapters and interfaces for
// browsefs. It includes implementations for WebHDFS, S3 object storage, and
// the Azure Data Lake Storage REST API.
package connectors

import (
	"context"
	"errors"
	"io"
	"time"
)

// Common connector errors
var (
	// ErrUnresolvedConnector is returned when no connector is registered
	// for a storage kind a path resolved to.
	ErrUnresolvedConnector = errors.New("no connector registered for storage kind")

	// ErrContentNotSupported is returned by fetchers that cannot serve
	// file content previews.
	ErrContentNotSupported = errors.New("content preview not supported")
)

// EntryKind distinguishes file entries from directory entries.
type EntryKind string

const (
	EntryFile EntryKind = "file"
	EntryDir  EntryKind = "dir"
)

// Entry is one child entry from a directory listing.
type Entry struct {
	Name  string    `json:"name"`
	Kind  EntryKind `json:"kind"`
	Size  int64     `json:"size"`
	MTime time.Time `json:"mtime"`
}

// Request identifies one page of one directory listing.
type Request struct {
	Kind     StorageKind `json:"kind"`
	Segments []string    `json:"segments"` // path segments from the tree root down to the directory
	RootPath string      `json:"root_path"`
	Page     int         `json:"page"` // 1-based
	PageSize int         `json:"page_size"`
	Filter   string      `json:"filter"` // server-side name filter, empty for none
}

// Page is one page of a directory listing. NextPageNumber greater than the
// requested page means more pages exist. SoftError carries a backend
// condition (listing denied, partial result) that is shown inline without
// discarding entries already loaded; it is distinct from a transport failure,
// which is reported as an error from FetchPage.
type Page struct {
	Entries        []Entry `json:"entries"`
	NextPageNumber int     `json:"next_page_number"`
	SoftError      string  `json:"soft_error,omitempty"`
}

// Fetcher retrieves directory listing pages from one storage backend.
// Listings must arrive in non-decreasing name order across pages; the deep
// walk's early termination relies on it.
type Fetcher interface {
	// FetchPage returns one page of child entries for the directory
	// identified by the request.
	FetchPage(ctx context.Context, req Request) (*Page, error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// ContentFetcher is implemented by fetchers that can additionally return
// file content for previews. The request's segments identify the file.
type ContentFetcher interface {
	FetchContent(ctx context.Context, req Request) (io.ReadCloser, error)
}

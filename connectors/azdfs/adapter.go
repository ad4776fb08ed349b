// Package azdfs implements the connectors.Fetcher interface over the Azure
// Data Lake Storage Gen2 REST API. One adapter serves both the adls and
// abfs kinds: they differ only in the URI scheme a path was written with.
package azdfs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/config"
	"github.com/ebogdum/browsefs/connectors"
)

// Adapter implements connectors.Fetcher against an ADLS Gen2 account.
type Adapter struct {
	client      *http.Client
	accountName string
	accountURL  string
	accessToken string
	logger      *zap.Logger

	mu     sync.Mutex
	tokens map[string]string // listing key -> x-ms-continuation for that page
}

// NewAdapter creates a new ADLS Gen2 fetcher.
func NewAdapter(cfg config.AzureConfig, logger *zap.Logger) (*Adapter, error) {
	if cfg.AccountName == "" {
		return nil, fmt.Errorf("azure account name is required")
	}

	suffix := cfg.EndpointSuffix
	if suffix == "" {
		suffix = "dfs.core.windows.net"
	}

	accountURL := cfg.Endpoint
	if accountURL == "" {
		accountURL = fmt.Sprintf("https://%s.%s", cfg.AccountName, suffix)
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Adapter{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		accountName: cfg.AccountName,
		accountURL:  accountURL,
		accessToken: cfg.AccessToken,
		logger:      logger,
		tokens:      make(map[string]string),
	}, nil
}

// Close closes any resources used by the adapter.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

// pathRecord is one entry of a list-paths response.
type pathRecord struct {
	Name          string `json:"name"`
	IsDirectory   string `json:"isDirectory"`
	ContentLength string `json:"contentLength"`
	LastModified  string `json:"lastModified"`
}

type listPathsResponse struct {
	Paths []pathRecord `json:"paths"`
}

type listFilesystemsResponse struct {
	Filesystems []struct {
		Name string `json:"name"`
	} `json:"filesystems"`
}

// FetchPage returns one page of child entries. The root level lists the
// bound account as a single directory so account-qualified paths have a
// matching child to descend into. The first segment is the account name;
// the next names the filesystem and the rest form the directory path.
// Paging by page number is mapped onto x-ms-continuation tokens.
func (a *Adapter) FetchPage(ctx context.Context, req connectors.Request) (*connectors.Page, error) {
	if len(req.Segments) == 0 {
		return a.listAccount(req), nil
	}

	segments := req.Segments
	if segments[0] == a.accountName {
		segments = segments[1:]
	}

	if len(segments) == 0 {
		return a.listFilesystems(ctx, req)
	}

	filesystem := segments[0]
	directory := strings.Join(segments[1:], "/")

	q := url.Values{}
	q.Set("resource", "filesystem")
	q.Set("recursive", "false")
	q.Set("maxResults", strconv.Itoa(req.PageSize))
	if directory != "" {
		q.Set("directory", directory)
	}

	key := fmt.Sprintf("%s|%s|%s|%d", filesystem, directory, req.Filter, req.Page)
	continuation := ""
	if req.Page > 1 {
		tok, ok := a.tokenFor(key)
		if !ok {
			return &connectors.Page{Entries: []connectors.Entry{}, NextPageNumber: req.Page}, nil
		}
		continuation = tok
	}

	reqURL := fmt.Sprintf("%s/%s?%s", a.accountURL, url.PathEscape(filesystem), q.Encode())
	body, headers, softErr, err := a.doList(ctx, reqURL, continuation)
	if err != nil {
		return nil, err
	}
	if softErr != "" {
		return &connectors.Page{
			Entries:        []connectors.Entry{},
			NextPageNumber: req.Page,
			SoftError:      softErr,
		}, nil
	}

	var listing listPathsResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode adls listing: %w", err)
	}

	entries := make([]connectors.Entry, 0, len(listing.Paths))
	for _, p := range listing.Paths {
		name := p.Name
		if directory != "" {
			name = strings.TrimPrefix(name, directory+"/")
		}
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		if req.Filter != "" && !strings.HasPrefix(name, req.Filter) {
			continue
		}
		kind := connectors.EntryFile
		if p.IsDirectory == "true" {
			kind = connectors.EntryDir
		}
		entry := connectors.Entry{Name: name, Kind: kind}
		if p.ContentLength != "" {
			if size, err := strconv.ParseInt(p.ContentLength, 10, 64); err == nil {
				entry.Size = size
			}
		}
		if p.LastModified != "" {
			if mtime, err := time.Parse(http.TimeFormat, p.LastModified); err == nil {
				entry.MTime = mtime
			}
		}
		entries = append(entries, entry)
	}

	nextPage := req.Page
	if token := headers.Get("x-ms-continuation"); token != "" {
		nextPage = req.Page + 1
		a.storeToken(fmt.Sprintf("%s|%s|%s|%d", filesystem, directory, req.Filter, nextPage), token)
	}

	a.logger.Debug("ADLS page fetched",
		zap.String("filesystem", filesystem),
		zap.String("directory", directory),
		zap.Int("page", req.Page),
		zap.Int("entries", len(entries)))

	return &connectors.Page{Entries: entries, NextPageNumber: nextPage}, nil
}

// listAccount serves the tree root: one directory entry named after the
// bound account, never paged.
func (a *Adapter) listAccount(req connectors.Request) *connectors.Page {
	entries := []connectors.Entry{}
	if req.Filter == "" || strings.HasPrefix(a.accountName, req.Filter) {
		entries = append(entries, connectors.Entry{Name: a.accountName, Kind: connectors.EntryDir})
	}
	return &connectors.Page{Entries: entries, NextPageNumber: req.Page}
}

// listFilesystems serves the account root, where filesystems appear as
// directories.
func (a *Adapter) listFilesystems(ctx context.Context, req connectors.Request) (*connectors.Page, error) {
	q := url.Values{}
	q.Set("resource", "account")
	q.Set("maxResults", strconv.Itoa(req.PageSize))
	if req.Filter != "" {
		q.Set("prefix", req.Filter)
	}

	key := fmt.Sprintf("account||%s|%d", req.Filter, req.Page)
	continuation := ""
	if req.Page > 1 {
		tok, ok := a.tokenFor(key)
		if !ok {
			return &connectors.Page{Entries: []connectors.Entry{}, NextPageNumber: req.Page}, nil
		}
		continuation = tok
	}

	reqURL := fmt.Sprintf("%s/?%s", a.accountURL, q.Encode())
	body, headers, softErr, err := a.doList(ctx, reqURL, continuation)
	if err != nil {
		return nil, err
	}
	if softErr != "" {
		return &connectors.Page{
			Entries:        []connectors.Entry{},
			NextPageNumber: req.Page,
			SoftError:      softErr,
		}, nil
	}

	var listing listFilesystemsResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem listing: %w", err)
	}

	entries := make([]connectors.Entry, 0, len(listing.Filesystems))
	for _, fs := range listing.Filesystems {
		entries = append(entries, connectors.Entry{Name: fs.Name, Kind: connectors.EntryDir})
	}

	nextPage := req.Page
	if token := headers.Get("x-ms-continuation"); token != "" {
		nextPage = req.Page + 1
		a.storeToken(fmt.Sprintf("account||%s|%d", req.Filter, nextPage), token)
	}

	return &connectors.Page{Entries: entries, NextPageNumber: nextPage}, nil
}

// FetchContent returns a file's content for previews.
func (a *Adapter) FetchContent(ctx context.Context, req connectors.Request) (io.ReadCloser, error) {
	segments := req.Segments
	if len(segments) > 0 && segments[0] == a.accountName {
		segments = segments[1:]
	}
	if len(segments) < 2 {
		return nil, fmt.Errorf("adls content fetch needs a filesystem and a path")
	}

	reqURL := fmt.Sprintf("%s/%s/%s", a.accountURL, url.PathEscape(segments[0]), strings.Join(segments[1:], "/"))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	a.authorize(httpReq)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("adls request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("adls read failed with status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// doList performs one listing request. A 403 comes back as a soft error
// string; other non-200 responses are hard errors.
func (a *Adapter) doList(ctx context.Context, reqURL, continuation string) ([]byte, http.Header, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	a.authorize(httpReq)
	if continuation != "" {
		q := httpReq.URL.Query()
		q.Set("continuation", continuation)
		httpReq.URL.RawQuery = q.Encode()
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, nil, "", fmt.Errorf("adls request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to read adls response: %w", err)
	}

	if resp.StatusCode == http.StatusForbidden {
		return nil, nil, "listing denied by storage account", nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, "", fmt.Errorf("adls listing failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, resp.Header, "", nil
}

func (a *Adapter) authorize(req *http.Request) {
	req.Header.Set("x-ms-version", "2021-06-08")
	if a.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.accessToken)
	}
}

func (a *Adapter) tokenFor(key string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	tok, ok := a.tokens[key]
	return tok, ok
}

func (a *Adapter) storeToken(key, token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens[key] = token
}

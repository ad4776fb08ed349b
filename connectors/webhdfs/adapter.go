// Package webhdfs implements the connectors.Fetcher interface over the
// WebHDFS REST API. It serves the hdfs kind directly and the ofs kind
// through Ozone's WebHDFS-compatible endpoint.
package webhdfs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/config"
	"github.com/ebogdum/browsefs/connectors"
)

// Adapter implements connectors.Fetcher against a WebHDFS endpoint.
type Adapter struct {
	client   *http.Client
	baseURL  string
	username string
	logger   *zap.Logger
}

// NewAdapter creates a new WebHDFS fetcher.
func NewAdapter(cfg config.WebHDFSConfig, logger *zap.Logger) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhdfs URL is required")
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
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		username: cfg.Username,
		logger:   logger,
	}, nil
}

// Close closes any resources used by the WebHDFS adapter.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

// fileStatus is the WebHDFS FileStatus record.
type fileStatus struct {
	PathSuffix       string `json:"pathSuffix"`
	Type             string `json:"type"` // "FILE" or "DIRECTORY"
	Length           int64  `json:"length"`
	ModificationTime int64  `json:"modificationTime"` // epoch millis
}

type listStatusResponse struct {
	FileStatuses struct {
		FileStatus []fileStatus `json:"FileStatus"`
	} `json:"FileStatuses"`
}

type remoteException struct {
	RemoteException struct {
		Exception string `json:"exception"`
		Message   string `json:"message"`
	} `json:"RemoteException"`
}

// FetchPage lists a directory via LISTSTATUS and slices the result into
// pages locally. The name filter is applied as a prefix match before
// pagination, mirroring the server-side filter of the paginating backends.
func (a *Adapter) FetchPage(ctx context.Context, req connectors.Request) (*connectors.Page, error) {
	statuses, softErr, err := a.listStatus(ctx, req.Segments)
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

	entries := make([]connectors.Entry, 0, len(statuses))
	for _, st := range statuses {
		if req.Filter != "" && !strings.HasPrefix(st.PathSuffix, req.Filter) {
			continue
		}
		kind := connectors.EntryFile
		if st.Type == "DIRECTORY" {
			kind = connectors.EntryDir
		}
		entries = append(entries, connectors.Entry{
			Name:  st.PathSuffix,
			Kind:  kind,
			Size:  st.Length,
			MTime: time.UnixMilli(st.ModificationTime),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	start := (req.Page - 1) * req.PageSize
	if start > len(entries) {
		start = len(entries)
	}
	end := start + req.PageSize
	if end > len(entries) {
		end = len(entries)
	}

	nextPage := req.Page
	if end < len(entries) {
		nextPage = req.Page + 1
	}

	return &connectors.Page{Entries: entries[start:end], NextPageNumber: nextPage}, nil
}

// listStatus issues the LISTSTATUS call. An AccessControlException comes
// back as a soft error string; other failures are hard errors.
func (a *Adapter) listStatus(ctx context.Context, segments []string) ([]fileStatus, string, error) {
	reqURL := a.opURL(segments, "LISTSTATUS")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("webhdfs request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read webhdfs response: %w", err)
	}

	if resp.StatusCode == http.StatusForbidden {
		var re remoteException
		msg := "listing forbidden"
		if json.Unmarshal(body, &re) == nil && re.RemoteException.Message != "" {
			msg = re.RemoteException.Message
		}
		return nil, msg, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("webhdfs listing failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var listing listStatusResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, "", fmt.Errorf("failed to decode webhdfs listing: %w", err)
	}

	a.logger.Debug("WebHDFS listing fetched",
		zap.Strings("segments", segments),
		zap.Int("entries", len(listing.FileStatuses.FileStatus)))

	return listing.FileStatuses.FileStatus, "", nil
}

// FetchContent returns a file's content for previews via the OPEN op.
func (a *Adapter) FetchContent(ctx context.Context, req connectors.Request) (io.ReadCloser, error) {
	reqURL := a.opURL(req.Segments, "OPEN")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("webhdfs request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("webhdfs open failed with status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// opURL builds the WebHDFS URL for one operation on one path.
func (a *Adapter) opURL(segments []string, op string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	path := "/" + strings.Join(escaped, "/")

	q := url.Values{}
	q.Set("op", op)
	if a.username != "" {
		q.Set("user.name", a.username)
	}

	return fmt.Sprintf("%s/webhdfs/v1%s?%s", a.baseURL, path, q.Encode())
}

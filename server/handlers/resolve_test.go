package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/browser"
	"github.com/ebogdum/browsefs/connectors"
)

// stubFetcher serves canned pages keyed by the joined request segments.
type stubFetcher struct {
	pages map[string]*connectors.Page
}

func (f *stubFetcher) FetchPage(ctx context.Context, req connectors.Request) (*connectors.Page, error) {
	key := strings.Join(req.Segments, "/")
	if page, ok := f.pages[key]; ok {
		return page, nil
	}
	return &connectors.Page{Entries: []connectors.Entry{}, NextPageNumber: req.Page}, nil
}

func (f *stubFetcher) Close() error {
	return nil
}

func newResolveHandler(t *testing.T) http.HandlerFunc {
	t.Helper()

	fetcher := &stubFetcher{pages: map[string]*connectors.Page{
		"": {
			Entries: []connectors.Entry{
				{Name: "tmp", Kind: connectors.EntryDir},
				{Name: "user", Kind: connectors.EntryDir},
			},
			NextPageNumber: 1,
		},
		"user": {
			Entries: []connectors.Entry{
				{Name: "hue", Kind: connectors.EntryDir},
			},
			NextPageNumber: 1,
		},
		"user/hue": {
			Entries: []connectors.Entry{
				{Name: "report.csv", Kind: connectors.EntryFile, Size: 42},
			},
			NextPageNumber: 1,
		},
	}}

	registry := connectors.NewRegistry()
	registry.Register(connectors.Connector{
		Kind:     connectors.KindHDFS,
		RootPath: "/",
		Fetcher:  fetcher,
	})

	resolver := browser.NewResolver(registry)
	return V1Resolve(resolver, registry, 5*time.Second, zap.NewNop())
}

func TestV1ResolveFullMatch(t *testing.T) {
	handler := newResolveHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/resolve?path=/user/hue", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ResolveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Kind != "hdfs" {
		t.Errorf("expected kind hdfs, got %q", resp.Kind)
	}
	if !resp.FullMatch {
		t.Error("expected full match")
	}
	if resp.Node.Path != "/user/hue" {
		t.Errorf("expected reached path /user/hue, got %q", resp.Node.Path)
	}
	if len(resp.Node.Children) != 1 || resp.Node.Children[0].Name != "report.csv" {
		t.Errorf("expected one child report.csv, got %+v", resp.Node.Children)
	}
}

func TestV1ResolvePartialMatch(t *testing.T) {
	handler := newResolveHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/resolve?path=/user/nobody/deeper", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for partial match, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ResolveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.FullMatch {
		t.Error("expected partial match")
	}
	if resp.Node.Path != "/user" {
		t.Errorf("expected walk to stop at /user, got %q", resp.Node.Path)
	}
}

func TestV1ResolveErrors(t *testing.T) {
	handler := newResolveHandler(t)

	tests := []struct {
		name         string
		target       string
		expectedCode int
	}{
		{"missing path", "/v1/resolve", http.StatusBadRequest},
		{"parent traversal", "/v1/resolve?path=/tmp/../etc", http.StatusBadRequest},
		{"unknown kind parameter", "/v1/resolve?path=/tmp&kind=gcs", http.StatusBadRequest},
		{"unregistered connector", "/v1/resolve?path=s3a://bucket/key", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected %d, got %d: %s", tt.expectedCode, rec.Code, rec.Body.String())
			}
		})
	}
}

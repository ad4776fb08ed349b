package azdfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/browser"
	"github.com/ebogdum/browsefs/config"
	"github.com/ebogdum/browsefs/connectors"
)

// newTestServer serves a minimal ADLS Gen2 listing surface: one account
// with one filesystem "data" holding a single directory "reports".
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("resource") == "account" {
			w.Write([]byte(`{"filesystems":[{"name":"data"}]}`))
			return
		}

		if r.URL.Path != "/data" {
			http.Error(w, `{"error":"filesystem not found"}`, http.StatusNotFound)
			return
		}
		switch r.URL.Query().Get("directory") {
		case "":
			w.Write([]byte(`{"paths":[{"name":"reports","isDirectory":"true"}]}`))
		case "reports":
			w.Write([]byte(`{"paths":[{"name":"q1.csv","contentLength":"12"}]}`))
		default:
			w.Write([]byte(`{"paths":[]}`))
		}
	}))
}

func newTestAdapter(t *testing.T, endpoint string) *Adapter {
	t.Helper()

	adapter, err := NewAdapter(config.AzureConfig{
		AccountName: "acct",
		Endpoint:    endpoint,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	return adapter
}

func TestFetchPageRootListsAccount(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()
	adapter := newTestAdapter(t, server.URL)
	defer adapter.Close()

	page, err := adapter.FetchPage(context.Background(), connectors.Request{
		Kind:     connectors.KindABFS,
		Segments: []string{},
		Page:     1,
		PageSize: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Entries) != 1 {
		t.Fatalf("expected one root entry, got %d", len(page.Entries))
	}
	if page.Entries[0].Name != "acct" || page.Entries[0].Kind != connectors.EntryDir {
		t.Errorf("expected account directory entry, got %+v", page.Entries[0])
	}
	if page.NextPageNumber != 1 {
		t.Errorf("expected final page, got next page %d", page.NextPageNumber)
	}
}

func TestFetchPageStripsAccountSegment(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()
	adapter := newTestAdapter(t, server.URL)
	defer adapter.Close()

	page, err := adapter.FetchPage(context.Background(), connectors.Request{
		Kind:     connectors.KindABFS,
		Segments: []string{"acct"},
		Page:     1,
		PageSize: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Entries) != 1 || page.Entries[0].Name != "data" {
		t.Fatalf("expected filesystem listing under the account, got %+v", page.Entries)
	}
}

func TestWalkAccountQualifiedPath(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()
	adapter := newTestAdapter(t, server.URL)
	defer adapter.Close()

	registry := connectors.NewRegistry()
	registry.Register(connectors.Connector{
		Kind:     connectors.KindABFS,
		RootPath: "abfs://",
		Fetcher:  adapter,
	})
	resolver := browser.NewResolver(registry)

	res, err := resolver.Resolve("abfs://acct@container.dfs.core.windows.net/data/reports", "")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}

	tree := browser.NewTree(res.Kind, res.RootPath, adapter, zap.NewNop())
	walker := browser.NewWalker(zap.NewNop())
	reached := walker.Descend(context.Background(), tree.Root(), res.Segments)

	depth := len(reached.Hierarchy()) - len(tree.Root().Hierarchy())
	if depth != len(res.Segments) {
		t.Fatalf("expected full resolution to depth %d, reached %d at %q", len(res.Segments), depth, reached.Path())
	}
	if reached.Path() != "abfs://acct/data/reports" {
		t.Errorf("expected path abfs://acct/data/reports, got %q", reached.Path())
	}
}

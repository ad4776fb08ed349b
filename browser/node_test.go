package browser

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/connectors"
)

// fakeFetcher serves scripted pages keyed by the joined request segments.
// Pages for a directory are indexed by page number; requests past the
// script return an empty final page. An entry in errs fails that exact
// page with a hard error. When fn is set it overrides everything.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string][]*connectors.Page
	errs  map[string]error
	calls []connectors.Request
	fn    func(req connectors.Request) (*connectors.Page, error)
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string][]*connectors.Page),
		errs:  make(map[string]error),
	}
}

func (f *fakeFetcher) FetchPage(ctx context.Context, req connectors.Request) (*connectors.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)

	if f.fn != nil {
		return f.fn(req)
	}

	dir := strings.Join(req.Segments, "/")
	if err, ok := f.errs[fmt.Sprintf("%s|%d", dir, req.Page)]; ok {
		return nil, err
	}
	if pages := f.pages[dir]; req.Page <= len(pages) {
		return pages[req.Page-1], nil
	}
	return &connectors.Page{Entries: []connectors.Entry{}, NextPageNumber: req.Page}, nil
}

func (f *fakeFetcher) Close() error { return nil }

func (f *fakeFetcher) callsFor(dir string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.Join(c.Segments, "/") == dir {
			n++
		}
	}
	return n
}

func (f *fakeFetcher) lastCall() connectors.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// dirPage builds one listing page of directory entries. nextPage greater
// than page signals more pages.
func dirPage(nextPage int, names ...string) *connectors.Page {
	entries := make([]connectors.Entry, 0, len(names))
	for _, n := range names {
		entries = append(entries, connectors.Entry{Name: n, Kind: connectors.EntryDir})
	}
	return &connectors.Page{Entries: entries, NextPageNumber: nextPage}
}

func newTestTree(rootPath string, f *fakeFetcher) *Tree {
	return NewTree(connectors.KindHDFS, rootPath, f, zap.NewNop())
}

func TestOpenIdempotent(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = []*connectors.Page{dirPage(1, "a", "b")}

	tree := newTestTree("/", f)
	root := tree.Root()

	if err := root.Open(context.Background()); err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	if err := root.Open(context.Background()); err != nil {
		t.Fatalf("second open failed: %v", err)
	}

	if got := f.callsFor(""); got != 1 {
		t.Errorf("expected exactly one fetch for an already-loaded node, got %d", got)
	}
}

func TestLoadPageExcludesDotEntries(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = []*connectors.Page{dirPage(1, ".", "..", "data")}

	tree := newTestTree("/", f)
	root := tree.Root()

	if err := root.LoadPage(context.Background(), 1); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	children := root.Children()
	if len(children) != 1 || children[0].Name() != "data" {
		t.Errorf("expected only %q, got %d children", "data", len(children))
	}
}

func TestFetchMoreAppends(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = []*connectors.Page{
		dirPage(2, "a", "b"),
		dirPage(2, "c"),
	}

	tree := newTestTree("/", f)
	root := tree.Root()

	if err := root.LoadPage(context.Background(), 1); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !root.HasMore() {
		t.Fatal("expected more pages after page 1")
	}
	if err := root.FetchMore(context.Background()); err != nil {
		t.Fatalf("fetch more failed: %v", err)
	}

	children := root.Children()
	if len(children) != 3 {
		t.Fatalf("expected 3 children after two pages, got %d", len(children))
	}
	if children[2].Name() != "c" {
		t.Errorf("expected appended child %q, got %q", "c", children[2].Name())
	}
	if root.CurrentPage() != 2 {
		t.Errorf("expected current page 2, got %d", root.CurrentPage())
	}
	if root.HasMore() {
		t.Error("expected no more pages after final page")
	}
}

func TestFetchMoreNoopWhenExhausted(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = []*connectors.Page{dirPage(1, "a")}

	tree := newTestTree("/", f)
	root := tree.Root()

	if err := root.LoadPage(context.Background(), 1); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := root.FetchMore(context.Background()); err != nil {
		t.Fatalf("fetch more failed: %v", err)
	}

	if got := f.callsFor(""); got != 1 {
		t.Errorf("expected no fetch when pages are exhausted, got %d calls", got)
	}
}

func TestSetFilterResetsPagination(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = []*connectors.Page{
		dirPage(2, "a"),
		dirPage(3, "b"),
		dirPage(3, "c"),
	}

	tree := newTestTree("/", f)
	root := tree.Root()

	if err := root.LoadPage(context.Background(), 1); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := root.FetchMore(context.Background()); err != nil {
			t.Fatalf("fetch more failed: %v", err)
		}
	}
	if root.CurrentPage() != 3 {
		t.Fatalf("expected current page 3 before filtering, got %d", root.CurrentPage())
	}

	if err := root.SetFilter(context.Background(), "abc"); err != nil {
		t.Fatalf("set filter failed: %v", err)
	}

	if root.CurrentPage() != 1 {
		t.Errorf("expected current page reset to 1, got %d", root.CurrentPage())
	}
	last := f.lastCall()
	if last.Page != 1 || last.Filter != "abc" {
		t.Errorf("expected reload of page 1 with filter %q, got page %d filter %q", "abc", last.Page, last.Filter)
	}
}

func TestSoftErrorPreservesChildren(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = []*connectors.Page{
		dirPage(2, "a"),
		dirPage(3, "b"),
		dirPage(4, "c"),
		{Entries: []connectors.Entry{}, NextPageNumber: 4, SoftError: "listing denied"},
	}

	tree := newTestTree("/", f)
	root := tree.Root()

	if err := root.LoadPage(context.Background(), 1); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := root.FetchMore(context.Background()); err != nil {
			t.Fatalf("fetch more failed: %v", err)
		}
	}

	if err := root.FetchMore(context.Background()); err != nil {
		t.Fatalf("soft error must not be a hard failure: %v", err)
	}

	if got := len(root.Children()); got != 3 {
		t.Errorf("expected 3 children preserved across soft error, got %d", got)
	}
	hasErr, msg := root.Err()
	if !hasErr || msg != "listing denied" {
		t.Errorf("expected inline error %q, got hasErr=%v msg=%q", "listing denied", hasErr, msg)
	}
	if root.HasMore() {
		t.Error("expected pagination cursor to reflect the final soft-error page")
	}

	calls := f.callsFor("")
	if err := root.FetchMore(context.Background()); err != nil {
		t.Fatalf("fetch more failed: %v", err)
	}
	if got := f.callsFor(""); got != calls {
		t.Errorf("expected no fetch after a final soft-error page, got %d extra", got-calls)
	}
}

func TestHardErrorPreservesChildren(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = []*connectors.Page{dirPage(2, "a")}
	f.errs["|2"] = errors.New("connection reset")

	tree := newTestTree("/", f)
	root := tree.Root()

	if err := root.LoadPage(context.Background(), 1); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := root.FetchMore(context.Background()); err == nil {
		t.Fatal("expected hard error from fetch more")
	}

	if got := len(root.Children()); got != 1 {
		t.Errorf("expected children preserved across hard error, got %d", got)
	}
	if hasErr, _ := root.Err(); !hasErr {
		t.Error("expected inline error state after hard failure")
	}
}

func TestHierarchy(t *testing.T) {
	f := newFakeFetcher()
	f.pages["user/hue"] = []*connectors.Page{dirPage(1, "demo")}
	f.pages["user/hue/demo"] = []*connectors.Page{dirPage(1, "data.csv")}

	tree := newTestTree("/user/hue", f)
	root := tree.Root()

	if err := root.LoadPage(context.Background(), 1); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	demo := root.Children()[0]
	if err := demo.LoadPage(context.Background(), 1); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	leaf := demo.Children()[0]

	expected := []string{"user", "hue", "demo", "data.csv"}
	if got := leaf.Hierarchy(); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected hierarchy %v, got %v", expected, got)
	}
	if got := leaf.Path(); got != "/user/hue/demo/data.csv" {
		t.Errorf("expected path %q, got %q", "/user/hue/demo/data.csv", got)
	}
}

func TestSchemeRootPath(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = []*connectors.Page{dirPage(1, "bucket")}

	tree := NewTree(connectors.KindS3, "s3a://", f, zap.NewNop())
	root := tree.Root()

	if err := root.LoadPage(context.Background(), 1); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	bucket := root.Children()[0]

	if got := bucket.Path(); got != "s3a://bucket" {
		t.Errorf("expected path %q, got %q", "s3a://bucket", got)
	}
	if got := bucket.Hierarchy(); !reflect.DeepEqual(got, []string{"bucket"}) {
		t.Errorf("expected hierarchy [bucket], got %v", got)
	}
}

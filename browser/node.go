package browser

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ebogdum/browsefs/connectors"
	"github.com/ebogdum/browsefs/internal/pathutil"
)

// DefaultPageSize is the page size requested from backends.
const DefaultPageSize = 100

// previewLimit caps how many bytes of file content a preview fetch keeps.
const previewLimit = 4096

// LoadState tracks which fetch, if any, is in flight for a node.
type LoadState int

const (
	// LoadIdle means no fetch is in flight.
	LoadIdle LoadState = iota
	// LoadInitial means the first page (or a filter reload) is in flight.
	LoadInitial
	// LoadMore means a follow-up page fetch is in flight.
	LoadMore
)

// EntryNode is one file-system-like entry in the lazily loaded tree. A node
// exclusively owns its children; the parent pointer is non-owning and used
// only for upward traversal and path derivation. Name and entry kind are
// immutable after construction, so they may be read without the lock.
type EntryNode struct {
	name string
	kind connectors.EntryKind

	tree   *Tree
	parent *EntryNode

	mu          sync.Mutex
	children    []*EntryNode
	currentPage int
	hasMore     bool
	filterText  string
	loaded      bool
	loadState   LoadState
	hasError    bool
	errMsg      string
	size        int64
	mtime       time.Time
	preview     []byte
}

// Name returns the entry's name. The root node's name is the root path.
func (n *EntryNode) Name() string { return n.name }

// Kind returns whether the entry is a file or a directory.
func (n *EntryNode) Kind() connectors.EntryKind { return n.kind }

// Parent returns the owning parent node, or nil for the root.
func (n *EntryNode) Parent() *EntryNode { return n.parent }

// Path derives the node's full path from its ancestor chain. It is never
// stored, so it cannot diverge from the tree structure.
func (n *EntryNode) Path() string {
	if n.parent == nil {
		return n.tree.rootPath
	}
	return pathutil.Join(n.parent.Path(), n.name)
}

// Hierarchy returns the ordered path segments from the tree root down to
// this node. The root contributes its own path split into segments, so a
// composite root path like "/user/hue" is recovered component by component.
func (n *EntryNode) Hierarchy() []string {
	var names []string
	cur := n
	for cur.parent != nil {
		names = append(names, cur.name)
		cur = cur.parent
	}

	segs := cur.tree.rootSegments()
	for i := len(names) - 1; i >= 0; i-- {
		segs = append(segs, names[i])
	}
	return segs
}

// Children returns a copy of the currently loaded children.
func (n *EntryNode) Children() []*EntryNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*EntryNode, len(n.children))
	copy(out, n.children)
	return out
}

// Loaded reports whether the first page has successfully returned. It is
// independent of the error state.
func (n *EntryNode) Loaded() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.loaded
}

// HasMore reports whether the backend has more pages for this node.
func (n *EntryNode) HasMore() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hasMore
}

// CurrentPage returns the highest page number fetched so far (1-based).
func (n *EntryNode) CurrentPage() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.currentPage
}

// Filter returns the current server-side name filter.
func (n *EntryNode) Filter() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.filterText
}

// Err returns the node's inline error state.
func (n *EntryNode) Err() (bool, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hasError, n.errMsg
}

// Size returns the entry size reported by the backend listing.
func (n *EntryNode) Size() int64 { return n.size }

// MTime returns the modification time reported by the backend listing.
func (n *EntryNode) MTime() time.Time { return n.mtime }

// Preview returns the content snippet loaded by opening a file node.
func (n *EntryNode) Preview() []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.preview
}

// Open loads the node's content on demand. For directories it triggers the
// first page load; for files it fetches a content preview. Opening a
// directory that already has loaded children, or one with a fetch in
// flight, is a no-op.
func (n *EntryNode) Open(ctx context.Context) error {
	if n.kind == connectors.EntryFile {
		return n.loadPreview(ctx)
	}

	n.mu.Lock()
	if (n.loaded && len(n.children) > 0) || n.loadState != LoadIdle {
		n.mu.Unlock()
		return nil
	}
	n.mu.Unlock()

	return n.LoadPage(ctx, 1)
}

// LoadPage fetches one page of children, replacing the loaded set. A soft
// listing error from the backend sets the inline error state and advances
// the pagination cursor but leaves existing children alone. A hard fetch
// failure is recorded inline and returned; it too preserves existing
// children.
func (n *EntryNode) LoadPage(ctx context.Context, page int) error {
	n.mu.Lock()
	if n.loadState != LoadIdle {
		n.mu.Unlock()
		return nil
	}
	n.loadState = LoadInitial
	n.hasError = false
	n.errMsg = ""
	n.currentPage = page
	req := n.requestLocked(page)
	n.mu.Unlock()

	res, err := n.tree.fetcher.FetchPage(ctx, req)

	n.mu.Lock()
	n.loadState = LoadIdle
	if err != nil {
		n.hasError = true
		n.errMsg = err.Error()
		n.mu.Unlock()
		n.tree.notify(EventError, n)
		return err
	}

	if res.SoftError != "" {
		n.hasError = true
		n.errMsg = res.SoftError
		n.hasMore = res.NextPageNumber > page
		n.loaded = true
		n.mu.Unlock()
		n.tree.notify(EventError, n)
		return nil
	}

	n.children = n.newChildren(res.Entries)
	n.hasMore = res.NextPageNumber > page
	n.loaded = true
	n.mu.Unlock()

	n.tree.notify(EventLoaded, n)
	return nil
}

// FetchMore fetches the next page and appends its entries to the loaded
// children. It is a no-op when the backend has no more pages or a follow-up
// fetch is already in flight.
func (n *EntryNode) FetchMore(ctx context.Context) error {
	n.mu.Lock()
	if !n.hasMore || n.loadState != LoadIdle {
		n.mu.Unlock()
		return nil
	}
	n.loadState = LoadMore
	n.currentPage++
	page := n.currentPage
	req := n.requestLocked(page)
	n.mu.Unlock()

	res, err := n.tree.fetcher.FetchPage(ctx, req)

	n.mu.Lock()
	n.loadState = LoadIdle
	if err != nil {
		n.hasError = true
		n.errMsg = err.Error()
		n.mu.Unlock()
		n.tree.notify(EventError, n)
		return err
	}

	if res.SoftError != "" {
		n.hasError = true
		n.errMsg = res.SoftError
		n.hasMore = res.NextPageNumber > page
		n.mu.Unlock()
		n.tree.notify(EventError, n)
		return nil
	}

	n.children = append(n.children, n.newChildren(res.Entries)...)
	n.hasMore = res.NextPageNumber > page
	n.mu.Unlock()

	n.tree.notify(EventAppended, n)
	return nil
}

// SetFilter changes the server-side name filter, resets the pagination
// cursor, invalidates the loaded children, and reloads the first page.
func (n *EntryNode) SetFilter(ctx context.Context, text string) error {
	n.mu.Lock()
	n.filterText = text
	n.currentPage = 1
	n.hasMore = true
	n.loaded = false
	n.mu.Unlock()

	n.tree.notify(EventFiltered, n)
	return n.LoadPage(ctx, 1)
}

// loadPreview fetches a bounded content snippet for a file node through the
// connector's content capability, when it has one.
func (n *EntryNode) loadPreview(ctx context.Context) error {
	cf, ok := n.tree.fetcher.(connectors.ContentFetcher)
	if !ok {
		return connectors.ErrContentNotSupported
	}

	n.mu.Lock()
	if n.loadState != LoadIdle || n.loaded {
		n.mu.Unlock()
		return nil
	}
	n.loadState = LoadInitial
	n.hasError = false
	n.errMsg = ""
	req := n.requestLocked(1)
	n.mu.Unlock()

	rc, err := cf.FetchContent(ctx, req)

	n.mu.Lock()
	n.loadState = LoadIdle
	if err != nil {
		n.hasError = true
		n.errMsg = err.Error()
		n.mu.Unlock()
		n.tree.notify(EventError, n)
		return err
	}
	n.mu.Unlock()
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, previewLimit))

	n.mu.Lock()
	if err != nil {
		n.hasError = true
		n.errMsg = err.Error()
		n.mu.Unlock()
		n.tree.notify(EventError, n)
		return err
	}
	n.preview = data
	n.loaded = true
	n.mu.Unlock()

	n.tree.notify(EventLoaded, n)
	return nil
}

// requestLocked builds the fetch request for one page. Callers hold n.mu for
// the filter read; the hierarchy itself only touches immutable fields.
func (n *EntryNode) requestLocked(page int) connectors.Request {
	return connectors.Request{
		Kind:     n.tree.kind,
		Segments: n.Hierarchy(),
		RootPath: n.tree.rootPath,
		Page:     page,
		PageSize: DefaultPageSize,
		Filter:   strings.TrimSpace(n.filterText),
	}
}

// newChildren maps fetched entries to child nodes. The "." and ".." entries
// some backends report are always excluded.
func (n *EntryNode) newChildren(entries []connectors.Entry) []*EntryNode {
	children := make([]*EntryNode, 0, len(entries))
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		children = append(children, &EntryNode{
			name:        e.Name,
			kind:        e.Kind,
			tree:        n.tree,
			parent:      n,
			currentPage: 1,
			hasMore:     true,
			size:        e.Size,
			mtime:       e.MTime,
		})
	}
	return children
}

// childByName returns the unique loaded child with the given name. Zero and
// multiple matches both return nil: duplicate names from a misbehaving
// backend degrade to not-found rather than an error.
func (n *EntryNode) childByName(name string) *EntryNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	var found *EntryNode
	for _, c := range n.children {
		if c.name == name {
			if found != nil {
				return nil
			}
			found = c
		}
	}
	return found
}

// passed reports whether the loaded, alphabetically ordered prefix of the
// children has already moved lexicographically past name, so no later page
// can contain it.
func (n *EntryNode) passed(name string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.children) == 0 {
		return false
	}
	return n.children[len(n.children)-1].name > name
}

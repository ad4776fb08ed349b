package browser

import (
	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/connectors"
	"github.com/ebogdum/browsefs/internal/pathutil"
)

// Tree binds a lazily loaded entry tree to the connector that serves it.
// The root node is synthesized from the connector's root path; every other
// node is produced by a page fetch and owned by its parent.
type Tree struct {
	kind     connectors.StorageKind
	rootPath string
	fetcher  connectors.Fetcher
	logger   *zap.Logger
	notifier *Notifier
	root     *EntryNode
}

// NewTree creates a tree rooted at the connector's root path.
func NewTree(kind connectors.StorageKind, rootPath string, fetcher connectors.Fetcher, logger *zap.Logger) *Tree {
	t := &Tree{
		kind:     kind,
		rootPath: rootPath,
		fetcher:  fetcher,
		logger:   logger,
		notifier: &Notifier{},
	}
	t.root = &EntryNode{
		name:        rootPath,
		kind:        connectors.EntryDir,
		tree:        t,
		currentPage: 1,
		hasMore:     true,
	}
	return t
}

// Root returns the tree's root node.
func (t *Tree) Root() *EntryNode {
	return t.root
}

// Kind returns the storage kind the tree is bound to.
func (t *Tree) Kind() connectors.StorageKind {
	return t.kind
}

// Subscribe registers a listener for node state change events.
func (t *Tree) Subscribe(l Listener) {
	t.notifier.Subscribe(l)
}

func (t *Tree) notify(ev EventType, n *EntryNode) {
	t.notifier.notify(ev, n)
}

// rootSegments recovers the segments contributed by the root path itself.
// A composite root like "/user/hue" contributes one segment per component;
// a scheme-style root like "s3a://" contributes none.
func (t *Tree) rootSegments() []string {
	remainder := t.rootPath
	if m := schemePattern.FindStringSubmatch(t.rootPath); m != nil {
		remainder = m[2]
	}
	return pathutil.Segments(remainder)
}

package browser

import (
	"context"

	"go.uber.org/zap"
)

// MaxWalkPages bounds how many pages the walker fetches at a single node
// while searching for one segment. It guarantees termination even when a
// backend violates the alphabetical listing order or the target never
// appears.
const MaxWalkPages = 50

// Walker descends a lazily loaded tree toward a target path, fetching
// listing pages only when the loaded prefix cannot rule the target out.
type Walker struct {
	logger *zap.Logger
}

// NewWalker creates a deep path walker.
func NewWalker(logger *zap.Logger) *Walker {
	return &Walker{logger: logger}
}

// Descend walks from node toward the remaining segments and returns the
// deepest node reached. It never fails: a missing path, an exhausted
// listing, or a node that cannot load further pages all terminate the walk
// at that level and the node reached so far is the result.
//
// At each level the walker first looks for the target among the loaded
// children. When it is absent, the next page is fetched only while the last
// loaded child still sorts at or before the target; once the ordered prefix
// has moved past it, no later page can contain it. Duplicate child names
// degrade to not-found at that level.
func (w *Walker) Descend(ctx context.Context, node *EntryNode, segments []string) *EntryNode {
	if len(segments) == 0 {
		return node
	}

	if !node.Loaded() {
		if err := node.LoadPage(ctx, 1); err != nil {
			w.logger.Debug("initial load failed during walk",
				zap.String("path", node.Path()),
				zap.Error(err))
			return node
		}
	}

	target := segments[0]
	rest := segments[1:]

	for fetched := 0; ; fetched++ {
		if child := node.childByName(target); child != nil {
			return w.Descend(ctx, child, rest)
		}

		if node.passed(target) || !node.HasMore() || fetched >= MaxWalkPages {
			w.logger.Debug("walk stopped",
				zap.String("path", node.Path()),
				zap.String("target", target),
				zap.Int("pages_fetched", fetched))
			return node
		}

		if err := node.FetchMore(ctx); err != nil {
			// a node that cannot load further pages is treated the
			// same as one whose pages are exhausted
			return node
		}
	}
}

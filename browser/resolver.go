// Package browser implements the lazily-loaded storage tree and the
// pagination-aware deep path walk that resolves a raw path string down to
// the deepest reachable node without fetching whole directories.
package browser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ebogdum/browsefs/connectors"
	"github.com/ebogdum/browsefs/internal/pathutil"
)

// schemePattern splits "scheme://rest" into the scheme token and the
// remainder including its leading slash.
var schemePattern = regexp.MustCompile(`^([^:]+):/(/.*)$`)

// abfsAuthorityPattern splits an ABFS/ADLS authority into an optional
// account prefix, a container name, its domain suffix, and a trailing path.
// The container host must carry at least one domain label; a bare host is
// treated as malformed and falls back to plain segment splitting.
var abfsAuthorityPattern = regexp.MustCompile(`^(?:([^@/]+)@)?([^./]+)((?:\.[^./]+)+)(/.*)?$`)

// Resolution is the outcome of resolving a raw path string.
type Resolution struct {
	Kind      connectors.StorageKind
	RootPath  string
	SchemeTag string // raw scheme token as written, kept for display only
	Segments  []string
}

// Resolver parses raw path strings against the connector registry.
type Resolver struct {
	registry *connectors.Registry
}

// NewResolver creates a resolver backed by the given connector registry.
func NewResolver(registry *connectors.Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve parses a path string with an optional scheme prefix into a
// canonical storage kind, the connector's root path, and an ordered list of
// path segments. When the path carries no scheme the hint decides the kind,
// defaulting to hdfs. ABFS and ADLS paths embed account and container names
// inside the host component and are split separately; the container and its
// domain suffix do not become segments.
func (r *Resolver) Resolve(path string, hint connectors.StorageKind) (*Resolution, error) {
	schemeTag := ""
	remainder := path
	if m := schemePattern.FindStringSubmatch(path); m != nil {
		schemeTag = m[1]
		remainder = m[2]
	}

	kind := hint
	if schemeTag != "" {
		kind = connectors.KindFromScheme(schemeTag)
	}
	if kind == "" {
		kind = connectors.KindHDFS
	}

	rootPath, ok := r.registry.RootPathFor(kind)
	if !ok {
		return nil, fmt.Errorf("resolve %q: %s: %w", path, kind, connectors.ErrUnresolvedConnector)
	}

	segments := pathutil.Segments(remainder)
	if kind == connectors.KindABFS || kind == connectors.KindADLS {
		if authoritySegs, ok := splitAuthority(remainder); ok {
			segments = authoritySegs
		}
	}

	return &Resolution{
		Kind:      kind,
		RootPath:  rootPath,
		SchemeTag: schemeTag,
		Segments:  segments,
	}, nil
}

// splitAuthority parses an ABFS/ADLS remainder of the form
// "//account@container.domain.../path". It returns the account (when
// present) followed by the trailing path segments; the container name and
// domain suffix are dropped. A host without a domain suffix reports false
// and the caller falls back to treating the remainder as an opaque path.
func splitAuthority(remainder string) ([]string, bool) {
	authority := strings.TrimLeft(remainder, "/")
	if authority == "" {
		return []string{}, true
	}

	m := abfsAuthorityPattern.FindStringSubmatch(authority)
	if m == nil {
		return nil, false
	}

	account, trailing := m[1], m[4]
	segments := make([]string, 0, 4)
	if account != "" {
		segments = append(segments, account)
	}
	segments = append(segments, pathutil.Segments(trailing)...)
	return segments, true
}

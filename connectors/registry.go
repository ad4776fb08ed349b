package connectors

import "sort"

// Connector binds a storage kind to its root path and page fetcher.
type Connector struct {
	Kind     StorageKind
	RootPath string
	Fetcher  Fetcher
}

// Registry maps storage kinds to registered connectors. It is populated at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	connectors map[StorageKind]Connector
}

// NewRegistry creates an empty connector registry.
func NewRegistry() *Registry {
	return &Registry{
		connectors: make(map[StorageKind]Connector),
	}
}

// Register adds a connector for its storage kind, replacing any previous
// registration for the same kind.
func (r *Registry) Register(c Connector) {
	r.connectors[c.Kind] = c
}

// RootPathFor returns the root path registered for a storage kind.
func (r *Registry) RootPathFor(kind StorageKind) (string, bool) {
	c, ok := r.connectors[kind]
	if !ok {
		return "", false
	}
	return c.RootPath, true
}

// FetcherFor returns the page fetcher registered for a storage kind.
func (r *Registry) FetcherFor(kind StorageKind) (Fetcher, bool) {
	c, ok := r.connectors[kind]
	if !ok {
		return nil, false
	}
	return c.Fetcher, true
}

// Kinds returns the registered storage kinds in stable order.
func (r *Registry) Kinds() []StorageKind {
	kinds := make([]StorageKind, 0, len(r.connectors))
	for k := range r.connectors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Close closes every registered fetcher, returning the first error seen.
func (r *Registry) Close() error {
	var firstErr error
	for _, c := range r.connectors {
		if err := c.Fetcher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

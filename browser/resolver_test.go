package browser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ebogdum/browsefs/connectors"
	"github.com/ebogdum/browsefs/connectors/noop"
)

func newTestRegistry(kinds map[connectors.StorageKind]string) *connectors.Registry {
	registry := connectors.NewRegistry()
	for kind, rootPath := range kinds {
		registry.Register(connectors.Connector{
			Kind:     kind,
			RootPath: rootPath,
			Fetcher:  noop.NewAdapter(),
		})
	}
	return registry
}

func TestResolve(t *testing.T) {
	registry := newTestRegistry(map[connectors.StorageKind]string{
		connectors.KindHDFS: "/",
		connectors.KindS3:   "s3a://",
		connectors.KindADLS: "adl://",
		connectors.KindABFS: "abfs://",
	})
	resolver := NewResolver(registry)

	tests := []struct {
		name         string
		path         string
		hint         connectors.StorageKind
		expectedKind connectors.StorageKind
		expectedTag  string
		expectedSegs []string
	}{
		{
			name:         "s3a scheme",
			path:         "s3a://bucket/a/b",
			expectedKind: connectors.KindS3,
			expectedTag:  "s3a",
			expectedSegs: []string{"bucket", "a", "b"},
		},
		{
			name:         "s3n alias",
			path:         "s3n://bucket/key",
			expectedKind: connectors.KindS3,
			expectedTag:  "s3n",
			expectedSegs: []string{"bucket", "key"},
		},
		{
			name:         "adl scheme without domain host",
			path:         "adl://x/y",
			expectedKind: connectors.KindADLS,
			expectedTag:  "adl",
			expectedSegs: []string{"x", "y"},
		},
		{
			name:         "abfs account and container",
			path:         "abfs://acct@container.dfs.core.windows.net/folder/sub",
			expectedKind: connectors.KindABFS,
			expectedTag:  "abfs",
			expectedSegs: []string{"acct", "folder", "sub"},
		},
		{
			name:         "abfs container without account",
			path:         "abfss://container.dfs.core.windows.net/folder",
			expectedKind: connectors.KindABFS,
			expectedTag:  "abfss",
			expectedSegs: []string{"folder"},
		},
		{
			name:         "plain path defaults to hdfs",
			path:         "/tmp/x",
			expectedKind: connectors.KindHDFS,
			expectedSegs: []string{"tmp", "x"},
		},
		{
			name:         "plain path with hint",
			path:         "/bucket/data",
			hint:         connectors.KindS3,
			expectedKind: connectors.KindS3,
			expectedSegs: []string{"bucket", "data"},
		},
		{
			name:         "scheme only resolves to root",
			path:         "hdfs://",
			expectedKind: connectors.KindHDFS,
			expectedTag:  "hdfs",
			expectedSegs: []string{},
		},
		{
			name:         "abfs scheme only",
			path:         "abfs://",
			expectedKind: connectors.KindABFS,
			expectedTag:  "abfs",
			expectedSegs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := resolver.Resolve(tt.path, tt.hint)
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.path, err)
			}
			if res.Kind != tt.expectedKind {
				t.Errorf("expected kind %q, got %q", tt.expectedKind, res.Kind)
			}
			if res.SchemeTag != tt.expectedTag {
				t.Errorf("expected scheme tag %q, got %q", tt.expectedTag, res.SchemeTag)
			}
			if !reflect.DeepEqual(res.Segments, tt.expectedSegs) {
				t.Errorf("expected segments %v, got %v", tt.expectedSegs, res.Segments)
			}
		})
	}
}

func TestResolveRootPath(t *testing.T) {
	registry := newTestRegistry(map[connectors.StorageKind]string{
		connectors.KindHDFS: "/user/hue",
	})
	resolver := NewResolver(registry)

	res, err := resolver.Resolve("/tmp/x", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RootPath != "/user/hue" {
		t.Errorf("expected registry root path %q, got %q", "/user/hue", res.RootPath)
	}
}

func TestResolveUnresolvedConnector(t *testing.T) {
	registry := newTestRegistry(map[connectors.StorageKind]string{
		connectors.KindHDFS: "/",
	})
	resolver := NewResolver(registry)

	_, err := resolver.Resolve("ofs://vol/bucket/key", "")
	if err == nil {
		t.Fatal("expected error for unregistered kind")
	}
	if !errors.Is(err, connectors.ErrUnresolvedConnector) {
		t.Errorf("expected ErrUnresolvedConnector, got %v", err)
	}
}

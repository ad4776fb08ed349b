package connectors

import "strings"

// StorageKind identifies one of the supported storage backends.
type StorageKind string

const (
	KindHDFS StorageKind = "hdfs"
	KindS3   StorageKind = "s3"
	KindADLS StorageKind = "adls"
	KindABFS StorageKind = "abfs"
	KindOFS  StorageKind = "ofs"
)

// KindFromScheme canonicalizes a URI scheme token to a storage kind.
// Scheme families collapse to one kind: s3, s3a and s3n are all s3, adl and
// adls are adls, abfs and abfss are abfs. Anything unrecognized, including
// an empty token, is treated as hdfs.
func KindFromScheme(token string) StorageKind {
	switch t := strings.ToLower(token); {
	case strings.HasPrefix(t, "s3"):
		return KindS3
	case strings.HasPrefix(t, "abfs"):
		return KindABFS
	case strings.HasPrefix(t, "adl"):
		return KindADLS
	case strings.HasPrefix(t, "ofs"):
		return KindOFS
	default:
		return KindHDFS
	}
}

// ParseKind converts an explicit kind string (from config or an API query
// parameter) to a StorageKind. Unlike KindFromScheme it reports whether the
// value named a known kind at all.
func ParseKind(s string) (StorageKind, bool) {
	switch StorageKind(strings.ToLower(s)) {
	case KindHDFS:
		return KindHDFS, true
	case KindS3:
		return KindS3, true
	case KindADLS:
		return KindADLS, true
	case KindABFS:
		return KindABFS, true
	case KindOFS:
		return KindOFS, true
	}
	return "", false
}

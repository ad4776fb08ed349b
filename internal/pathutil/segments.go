// Package pathutil provides path segment handling utilities for browsefs.
package pathutil

import (
	"errors"
	"strings"
)

// ErrForbidden is returned for paths that must never reach a backend.
var ErrForbidden = errors.New("path forbidden")

// Segments splits a slash-separated path into its non-empty components.
// Leading, trailing and repeated slashes contribute no segments.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// Join appends a child name to a parent path, normalizing the parent's
// trailing slash so "/a/" and "/a" both produce "/a/name".
func Join(parent, name string) string {
	return strings.TrimSuffix(parent, "/") + "/" + name
}

// Validate rejects raw path input that is unsafe to pass to a backend.
// It checks for null bytes, control characters, and traversal components.
func Validate(path string) error {
	if path == "" {
		return errors.New("path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return ErrForbidden
	}

	for _, char := range path {
		if char < 32 && char != '\t' {
			return ErrForbidden
		}
	}

	for _, seg := range Segments(path) {
		if seg == ".." {
			return ErrForbidden
		}
	}

	return nil
}

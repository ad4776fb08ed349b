package pathutil

import (
	"reflect"
	"testing"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty path",
			input:    "",
			expected: []string{},
		},
		{
			name:     "root path",
			input:    "/",
			expected: []string{},
		},
		{
			name:     "simple path",
			input:    "/tmp/x",
			expected: []string{"tmp", "x"},
		},
		{
			name:     "no leading slash",
			input:    "bucket/a/b",
			expected: []string{"bucket", "a", "b"},
		},
		{
			name:     "trailing slash",
			input:    "/user/hue/",
			expected: []string{"user", "hue"},
		},
		{
			name:     "repeated slashes",
			input:    "//dir///file.txt",
			expected: []string{"dir", "file.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Segments(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("for input %q, expected %v, got %v", tt.input, tt.expected, result)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name     string
		parent   string
		child    string
		expected string
	}{
		{
			name:     "plain parent",
			parent:   "/user/hue",
			child:    "demo",
			expected: "/user/hue/demo",
		},
		{
			name:     "parent with trailing slash",
			parent:   "/user/hue/",
			child:    "demo",
			expected: "/user/hue/demo",
		},
		{
			name:     "root parent",
			parent:   "/",
			child:    "tmp",
			expected: "/tmp",
		},
		{
			name:     "scheme root parent",
			parent:   "s3a://",
			child:    "bucket",
			expected: "s3a://bucket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Join(tt.parent, tt.child)
			if result != tt.expected {
				t.Errorf("Join(%q, %q) = %q, expected %q", tt.parent, tt.child, result, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		shouldError bool
	}{
		{
			name:  "valid path",
			input: "/user/hue/demo.csv",
		},
		{
			name:  "scheme path",
			input: "s3a://bucket/key",
		},
		{
			name:        "empty path",
			input:       "",
			shouldError: true,
		},
		{
			name:        "null byte",
			input:       "file\x00.txt",
			shouldError: true,
		},
		{
			name:        "control character",
			input:       "file\x01.txt",
			shouldError: true,
		},
		{
			name:        "traversal component",
			input:       "/tmp/../etc/passwd",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)

			if tt.shouldError && err == nil {
				t.Errorf("expected error for input %q, got none", tt.input)
			}
			if !tt.shouldError && err != nil {
				t.Errorf("unexpected error for input %q: %v", tt.input, err)
			}
		})
	}
}

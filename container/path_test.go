package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"/", "/"},
		{"foo", "/foo"},
		{"/foo/../bar", "/bar"},
		{"/foo/./bar/", "/foo/bar/"},
		{"//foo", "/foo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanPath(tt.in), "cleanPath(%q)", tt.in)
	}
}

func TestStripContextPath(t *testing.T) {
	tests := []struct {
		base, path string
		rel        string
		ok         bool
	}{
		{"", "/foo", "/foo", true},
		{"", "/", "/", true},
		{"/dummy", "/dummy", "", true},
		{"/dummy", "/dummy/", "/", true},
		{"/dummy", "/dummy/foo/bar", "/foo/bar", true},
		{"/dummy", "/dummyfoo", "", false},
		{"/dummy", "/other", "", false},
		{"/dummy", "/", "", false},
	}
	for _, tt := range tests {
		rel, ok := stripContextPath(tt.base, tt.path)
		assert.Equal(t, tt.ok, ok, "stripContextPath(%q, %q)", tt.base, tt.path)
		assert.Equal(t, tt.rel, rel, "stripContextPath(%q, %q)", tt.base, tt.path)
	}
}

func TestResolveDispatchPath(t *testing.T) {
	tests := []struct {
		current, target, want string
	}{
		{"/a/b", "/x", "/x"},
		{"/a/b", "x", "/a/x"},
		{"/a/b/", "x", "/a/b/x"},
		{"", "x", "/x"},
		{"/a/b", "../x?q=1", "/x"},
		{"/a/b", "/x#frag", "/x"},
		{"/a/b", "/x/./y/", "/x/y/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveDispatchPath(tt.current, tt.target), "resolveDispatchPath(%q, %q)", tt.current, tt.target)
	}
}

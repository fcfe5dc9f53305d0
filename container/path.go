package container

import (
	"path"
	"strings"
)

// cleanPath returns the canonical path for p, eliminating . and .. elements
// per RFC 3986 Section 5.2.4 (remove dot segments).
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	// path.Clean removes trailing slash except for root;
	// put the trailing slash back if necessary.
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}

// ValidContextPath reports whether p is usable as a context base path: empty
// for the root context, otherwise starting with "/" and not ending with it.
func ValidContextPath(p string) bool {
	if p == "" {
		return true
	}
	return p[0] == '/' && p[len(p)-1] != '/' && !strings.ContainsAny(p, "*?#") && cleanPath(p) == p
}

// stripContextPath returns the part of urlPath below base, and whether
// urlPath is below base at all.
func stripContextPath(base, urlPath string) (string, bool) {
	if base == "" {
		return urlPath, true
	}
	if urlPath == base {
		return "", true
	}
	if strings.HasPrefix(urlPath, base) && urlPath[len(base)] == '/' {
		return urlPath[len(base):], true
	}
	return "", false
}

// resolveDispatchPath turns the path of a dispatcher into a context-relative
// path. The query string and fragment are dropped, relative paths are taken
// relative to the directory of current, and dot segments are removed.
func resolveDispatchPath(current, p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = current[:strings.LastIndexByte(current, '/')+1] + p
	}
	return cleanPath(p)
}

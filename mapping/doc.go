// Package mapping resolves request paths to handlers using servlet-style
// URL patterns.
//
// Four pattern shapes are recognized, plus the context root:
//
//	""          context root, matches only the empty relative path
//	"/foo/bar"  exact match
//	"/foo/*"    path prefix, matched at a "/" segment boundary
//	"*.jsp"     extension of the last path segment
//	"/"         default, matches anything not matched otherwise
//
// # Precedence
//
// Resolution checks the kinds in a fixed order and stops at the first kind
// that matches:
//
//	CONTEXT_ROOT > EXACT > PATH (longest prefix) > EXTENSION (longest) > DEFAULT
//
// When nothing matches and no default is registered, Resolve returns an
// error wrapping ErrNoMatch.
//
// # Building a Mapper
//
// A Mapper is built once from its registrations and is read-only afterwards,
// so a single Mapper can serve any number of goroutines without locking:
//
//	m, err := mapping.New(
//	    mapping.Registration{Pattern: "/foo/bar/*", Handler: "H1"},
//	    mapping.Registration{Pattern: "*.test", Handler: "H2"},
//	    mapping.Registration{Pattern: "/", Handler: "default"},
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := m.Resolve("/foo/bar/foo2")
//	// res.MatchValue == "/foo2", res.MatchType == mapping.MatchPath
//
// # Match Values
//
// The MatchValue of a result depends on the match type:
//
//	CONTEXT_ROOT  ""
//	EXACT         the whole relative path
//	PATH          the remainder after the prefix, e.g. "/foo2"
//	EXTENSION     the path without ".ext", e.g. "/foo/bar"
//	DEFAULT       always "/"
//
// Resolution uses a hash for exact patterns, a segment trie for path
// prefixes and a hash keyed on extension, so the cost of Resolve depends on
// the length of the path and not on the number of registered patterns.
package mapping

package mapping

import (
	"fmt"
	"sort"
	"strings"
)

// Registration binds a URL pattern to a handler name.
type Registration struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Handler string `json:"handler" yaml:"handler"`
}

// Mapper resolves relative request paths against a fixed set of patterns.
//
// A Mapper is immutable once New returns, and its methods are safe for
// concurrent use.
type Mapper struct {
	patterns []Pattern

	contextRoot *Pattern
	defaultPat  *Pattern
	exact       map[string]*Pattern
	extensions  map[string]*Pattern
	prefixes    *prefixTree
}

// New builds a Mapper from the given registrations. Registration order is
// irrelevant. It returns an error wrapping ErrInvalidPattern for a malformed
// pattern and ErrDuplicatePattern when a pattern is registered twice.
func New(regs ...Registration) (*Mapper, error) {
	m := &Mapper{
		patterns:   make([]Pattern, 0, len(regs)),
		exact:      make(map[string]*Pattern),
		extensions: make(map[string]*Pattern),
		prefixes:   newPrefixTree(),
	}

	seen := make(map[string]string, len(regs))
	for _, reg := range regs {
		p, err := ParsePattern(reg.Pattern, reg.Handler)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[reg.Pattern]; ok {
			return nil, fmt.Errorf("%w: %q is mapped to both %q and %q", ErrDuplicatePattern, reg.Pattern, prev, reg.Handler)
		}
		seen[reg.Pattern] = reg.Handler
		m.patterns = append(m.patterns, p)
	}

	// Index pointers into m.patterns only after it stops growing.
	for i := range m.patterns {
		p := &m.patterns[i]
		switch p.kind {
		case KindContextRoot:
			m.contextRoot = p
		case KindDefault:
			m.defaultPat = p
		case KindExact:
			m.exact[p.key] = p
		case KindExtension:
			m.extensions[p.key] = p
		case KindPath:
			m.prefixes.insert(p)
		}
	}

	return m, nil
}

// Resolve returns the best Mapping for relativePath, the request path with
// the context path already removed. The empty string addresses the context
// root.
//
// It returns an error wrapping ErrNoMatch when no pattern matches and no
// default pattern is registered.
func (m *Mapper) Resolve(relativePath string) (Mapping, error) {
	if relativePath == "" && m.contextRoot != nil {
		return m.contextRoot.mapping(""), nil
	}

	if p, ok := m.exact[relativePath]; ok {
		return p.mapping(relativePath), nil
	}

	if p, n := m.prefixes.longest(relativePath); p != nil {
		return p.mapping(relativePath[n:]), nil
	}

	if p, n := m.matchExtension(relativePath); p != nil {
		return p.mapping(relativePath[:n]), nil
	}

	if m.defaultPat != nil {
		return m.defaultPat.mapping("/"), nil
	}

	return Mapping{}, fmt.Errorf("%w: %q", ErrNoMatch, relativePath)
}

// matchExtension finds the longest registered extension of the last path
// segment. It returns the pattern and the index of the dot preceding the
// extension.
func (m *Mapper) matchExtension(p string) (*Pattern, int) {
	if len(m.extensions) == 0 {
		return nil, 0
	}

	start := strings.LastIndexByte(p, '/') + 1
	for i := start; i < len(p); i++ {
		if p[i] != '.' {
			continue
		}
		if pat, ok := m.extensions[p[i+1:]]; ok {
			return pat, i
		}
	}

	return nil, 0
}

// Patterns returns the registered patterns in registration order.
func (m *Mapper) Patterns() []Pattern {
	out := make([]Pattern, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// Handlers returns the sorted, de-duplicated handler names referenced by
// the registered patterns.
func (m *Mapper) Handlers() []string {
	set := make(map[string]struct{}, len(m.patterns))
	for _, p := range m.patterns {
		set[p.handler] = struct{}{}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// HasContextRoot reports whether the empty pattern is registered.
func (m *Mapper) HasContextRoot() bool {
	return m.contextRoot != nil
}

// HasDefault reports whether a "/" pattern is registered.
func (m *Mapper) HasDefault() bool {
	return m.defaultPat != nil
}

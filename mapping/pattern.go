package mapping

import (
	"fmt"
	"strings"
)

// Kind is the shape of a registered pattern.
type Kind uint8

const (
	KindContextRoot Kind = iota + 1
	KindExact
	KindPath
	KindExtension
	KindDefault
)

// MatchType returns the match type produced when a pattern of this kind
// matches.
func (k Kind) MatchType() MatchType {
	switch k {
	case KindContextRoot:
		return MatchContextRoot
	case KindExact:
		return MatchExact
	case KindPath:
		return MatchPath
	case KindExtension:
		return MatchExtension
	case KindDefault:
		return MatchDefault
	}
	return MatchUnknown
}

func (k Kind) String() string {
	return k.MatchType().String()
}

// Pattern is a parsed URL pattern bound to a handler name.
type Pattern struct {
	raw     string
	kind    Kind
	handler string

	// key is the lookup key: the literal path for exact patterns, the
	// prefix without "/*" for path patterns and the extension without
	// "*." for extension patterns.
	key string
}

// ParsePattern classifies raw and returns the parsed pattern bound to
// handler. It returns an error wrapping ErrInvalidPattern when raw is not one
// of the supported shapes.
func ParsePattern(raw, handler string) (Pattern, error) {
	p := Pattern{raw: raw, handler: handler}

	switch {
	case raw == "":
		p.kind = KindContextRoot
	case raw == "/":
		p.kind = KindDefault
	case strings.HasPrefix(raw, "*."):
		ext := raw[2:]
		if ext == "" || strings.ContainsAny(ext, "/*") {
			return Pattern{}, fmt.Errorf("%w: %q", ErrInvalidPattern, raw)
		}
		p.kind = KindExtension
		p.key = ext
	case raw[0] != '/':
		return Pattern{}, fmt.Errorf("%w: %q must start with \"/\" or \"*.\"", ErrInvalidPattern, raw)
	case strings.HasSuffix(raw, "/*"):
		prefix := raw[:len(raw)-2]
		if strings.Contains(prefix, "*") {
			return Pattern{}, fmt.Errorf("%w: %q", ErrInvalidPattern, raw)
		}
		p.kind = KindPath
		p.key = prefix
	case strings.Contains(raw, "*"):
		return Pattern{}, fmt.Errorf("%w: %q has a wildcard outside the trailing \"/*\"", ErrInvalidPattern, raw)
	default:
		p.kind = KindExact
		p.key = raw
	}

	return p, nil
}

// String returns the raw pattern.
func (p Pattern) String() string { return p.raw }

// Kind returns the shape of the pattern.
func (p Pattern) Kind() Kind { return p.kind }

// Handler returns the handler name bound to the pattern.
func (p Pattern) Handler() string { return p.handler }

// mapping builds the result for a match of this pattern. The value argument
// is ignored for kinds whose match value is fixed.
func (p *Pattern) mapping(value string) Mapping {
	switch p.kind {
	case KindContextRoot:
		value = ""
	case KindDefault:
		value = "/"
	}
	return Mapping{
		MatchValue:  value,
		Pattern:     p.raw,
		MatchType:   p.kind.MatchType(),
		HandlerName: p.handler,
	}
}

package mapping

import (
	"errors"
	"fmt"
)

// MatchType describes how a request path was matched.
type MatchType uint8

const (
	// MatchUnknown is the zero value; no pattern matched.
	MatchUnknown MatchType = iota
	// MatchContextRoot is the empty pattern matching the context root.
	MatchContextRoot
	// MatchDefault is the "/" pattern.
	MatchDefault
	// MatchExact is a literal pattern without wildcards.
	MatchExact
	// MatchExtension is a "*.ext" pattern.
	MatchExtension
	// MatchPath is a "/prefix/*" pattern.
	MatchPath
)

var matchTypeNames = [...]string{
	MatchUnknown:     "UNKNOWN",
	MatchContextRoot: "CONTEXT_ROOT",
	MatchDefault:     "DEFAULT",
	MatchExact:       "EXACT",
	MatchExtension:   "EXTENSION",
	MatchPath:        "PATH",
}

// String returns the upper-case name of the match type, e.g. "EXACT".
func (t MatchType) String() string {
	if int(t) < len(matchTypeNames) {
		return matchTypeNames[t]
	}
	return fmt.Sprintf("MatchType(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t MatchType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *MatchType) UnmarshalText(text []byte) error {
	for i, name := range matchTypeNames {
		if name == string(text) {
			*t = MatchType(i)
			return nil
		}
	}
	return fmt.Errorf("mapping: unknown match type %q", text)
}

// Mapping describes one resolved match. It is a plain value and is never
// modified after Resolve returns it.
type Mapping struct {
	// MatchValue is the part of the path selected by the match type.
	MatchValue string `json:"matchValue" yaml:"matchValue"`

	// Pattern is the registered pattern that matched, verbatim.
	Pattern string `json:"pattern" yaml:"pattern"`

	// MatchType is determined by the kind of the matching pattern.
	MatchType MatchType `json:"matchType" yaml:"matchType"`

	// HandlerName is the handler registered with the pattern.
	HandlerName string `json:"handlerName" yaml:"handlerName"`
}

// IsZero reports whether m is the zero Mapping.
func (m Mapping) IsZero() bool {
	return m == Mapping{}
}

func (m Mapping) String() string {
	return fmt.Sprintf("%s pattern=%q value=%q handler=%q", m.MatchType, m.Pattern, m.MatchValue, m.HandlerName)
}

// ErrNoMatch is returned when no registered pattern, including a default,
// matches the path. Containers answer it with 404 Not Found.
var ErrNoMatch = errors.New("no matching pattern was found")

// ErrInvalidPattern is returned when a pattern is not one of the supported
// shapes.
var ErrInvalidPattern = errors.New("invalid url pattern")

// ErrDuplicatePattern is returned when the same pattern is registered twice.
var ErrDuplicatePattern = errors.New("duplicate url pattern")

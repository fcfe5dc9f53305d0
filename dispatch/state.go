package dispatch

import (
	"errors"
	"fmt"

	"github.com/vitalvas/servlet/mapping"
)

// Well-known names of the side attributes, as seen by code that looks
// them up by key.
const (
	IncludeMappingKey = "javax.servlet.include.mapping"
	ForwardMappingKey = "javax.servlet.forward.mapping"
)

// Attribute identifies the side attribute exposed to the handler invoked by
// a sub-dispatch.
type Attribute uint8

const (
	AttributeNone Attribute = iota
	AttributeIncludeMapping
	AttributeForwardMapping
)

// String returns the well-known key of the attribute, or "" for
// AttributeNone.
func (a Attribute) String() string {
	switch a {
	case AttributeIncludeMapping:
		return IncludeMappingKey
	case AttributeForwardMapping:
		return ForwardMappingKey
	}
	return ""
}

// Resolver resolves a context-relative path to a Mapping.
// *mapping.Mapper implements it.
type Resolver interface {
	Resolve(relativePath string) (mapping.Mapping, error)
}

// Registry reports whether a handler name is registered.
type Registry interface {
	HasHandler(name string) bool
}

var (
	// ErrBadDispatchTarget is returned when the target of a sub-dispatch
	// does not correspond to a registered handler.
	ErrBadDispatchTarget = errors.New("bad dispatch target")

	// ErrNotSeeded is returned by Begin before Seed was called.
	ErrNotSeeded = errors.New("dispatch state is not seeded")

	// ErrAlreadySeeded is returned by a second call to Seed.
	ErrAlreadySeeded = errors.New("dispatch state is already seeded")

	// ErrCompleted is returned when the request lifecycle has ended.
	ErrCompleted = errors.New("dispatch state is completed")
)

type phase uint8

const (
	phaseUnseeded phase = iota
	phaseSeeded
	phaseCompleted
)

// Frame describes an entered sub-dispatch.
type Frame struct {
	Kind   Kind
	Target Target

	// Attribute is the side attribute visible to the invoked handler.
	Attribute Attribute

	// HandlerName is the handler selected by the dispatch.
	HandlerName string

	// Mapping is the resolved mapping of a Path target. It is the zero
	// Mapping for Named targets.
	Mapping mapping.Mapping
}

type sideAttrs struct {
	include *mapping.Mapping
	forward *mapping.Mapping
}

// State tracks the mapping visible to handlers during one request,
// including its nested includes and forwards.
//
// Current is the mapping of the direct request or of the most recent
// forward by path. Includes and named dispatches never change it. While a
// sub-dispatch is active, the invoked handler additionally sees at most one
// side attribute: the include mapping for an include by path, the previous
// current mapping for a forward by path, and nothing for a named dispatch.
//
// A State belongs to a single request and is not safe for concurrent use.
type State struct {
	resolver Resolver
	registry Registry

	phase   phase
	current mapping.Mapping
	side    sideAttrs
	saved   []sideAttrs
}

// NewState returns an unseeded State that resolves path targets with
// resolver. When registry is non-nil, every dispatch target is checked
// against it before the state changes.
func NewState(resolver Resolver, registry Registry) *State {
	return &State{
		resolver: resolver,
		registry: registry,
	}
}

// Seed sets the mapping of the directly addressed request. It must be called
// exactly once, before any sub-dispatch.
func (s *State) Seed(m mapping.Mapping) error {
	switch s.phase {
	case phaseSeeded:
		return ErrAlreadySeeded
	case phaseCompleted:
		return ErrCompleted
	}
	s.current = m
	s.phase = phaseSeeded
	return nil
}

// Seeded reports whether Seed has been called.
func (s *State) Seeded() bool {
	return s.phase != phaseUnseeded
}

// Current returns the request's authoritative mapping. It is the zero
// Mapping before Seed.
func (s *State) Current() mapping.Mapping {
	return s.current
}

// IncludeMapping returns the mapping of the active include by path.
func (s *State) IncludeMapping() (mapping.Mapping, bool) {
	if s.side.include == nil {
		return mapping.Mapping{}, false
	}
	return *s.side.include, true
}

// ForwardMapping returns the mapping that was current before the active
// forward by path.
func (s *State) ForwardMapping() (mapping.Mapping, bool) {
	if s.side.forward == nil {
		return mapping.Mapping{}, false
	}
	return *s.side.forward, true
}

// Attribute looks up a side attribute by its well-known key.
func (s *State) Attribute(key string) (mapping.Mapping, bool) {
	switch key {
	case IncludeMappingKey:
		return s.IncludeMapping()
	case ForwardMappingKey:
		return s.ForwardMapping()
	}
	return mapping.Mapping{}, false
}

// Depth returns the number of active sub-dispatches.
func (s *State) Depth() int {
	return len(s.saved)
}

// Begin enters a sub-dispatch and applies its effect on the visible
// mappings. A Path target is resolved first; when it cannot be resolved the
// returned error wraps mapping.ErrNoMatch. Targets unknown to the registry
// yield ErrBadDispatchTarget. The state is unchanged when Begin fails.
//
// Every successful Begin must be paired with End, on every exit path.
func (s *State) Begin(kind Kind, target Target) (Frame, error) {
	switch s.phase {
	case phaseUnseeded:
		return Frame{}, ErrNotSeeded
	case phaseCompleted:
		return Frame{}, ErrCompleted
	}
	if kind != Include && kind != Forward {
		return Frame{}, fmt.Errorf("dispatch: invalid kind %s", kind)
	}

	frame := Frame{Kind: kind, Target: target}

	switch t := target.(type) {
	case Path:
		if s.resolver == nil {
			return Frame{}, fmt.Errorf("%w: no resolver for %s", ErrBadDispatchTarget, t)
		}
		m, err := s.resolver.Resolve(string(t))
		if err != nil {
			return Frame{}, fmt.Errorf("%s %s: %w", kind, t, err)
		}
		if err := s.checkHandler(m.HandlerName); err != nil {
			return Frame{}, err
		}
		frame.HandlerName = m.HandlerName
		frame.Mapping = m

		s.saved = append(s.saved, s.side)
		if kind == Include {
			frame.Attribute = AttributeIncludeMapping
			s.side = sideAttrs{include: &m}
		} else {
			prev := s.current
			frame.Attribute = AttributeForwardMapping
			s.current = m
			s.side = sideAttrs{forward: &prev}
		}

	case Named:
		if t == "" {
			return Frame{}, fmt.Errorf("%w: empty handler name", ErrBadDispatchTarget)
		}
		if err := s.checkHandler(string(t)); err != nil {
			return Frame{}, err
		}
		frame.HandlerName = string(t)

		s.saved = append(s.saved, s.side)
		s.side = sideAttrs{}

	default:
		return Frame{}, fmt.Errorf("%w: unsupported target %v", ErrBadDispatchTarget, target)
	}

	return frame, nil
}

// End leaves the innermost sub-dispatch and restores the side attributes
// of the enclosing level. A current mapping set by a forward is kept.
//
// End panics when no sub-dispatch is active.
func (s *State) End() {
	n := len(s.saved)
	if n == 0 {
		panic("dispatch: End called without a matching Begin")
	}
	s.side = s.saved[n-1]
	s.saved[n-1] = sideAttrs{}
	s.saved = s.saved[:n-1]
}

// Dispatch runs fn inside a Begin/End pair. End runs even when fn panics.
func (s *State) Dispatch(kind Kind, target Target, fn func(Frame) error) error {
	frame, err := s.Begin(kind, target)
	if err != nil {
		return err
	}
	defer s.End()

	return fn(frame)
}

// Complete ends the request lifecycle. Later calls to Seed and Begin fail
// with ErrCompleted; Current keeps returning the final mapping.
func (s *State) Complete() {
	s.phase = phaseCompleted
}

func (s *State) checkHandler(name string) error {
	if s.registry != nil && !s.registry.HasHandler(name) {
		return fmt.Errorf("%w: no handler named %q", ErrBadDispatchTarget, name)
	}
	return nil
}

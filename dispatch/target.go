package dispatch

import "fmt"

// Kind is the kind of a sub-dispatch.
type Kind uint8

const (
	// Include composes the target's output into the current response. The
	// including handler stays responsible for the request.
	Include Kind = iota + 1
	// Forward hands the request over to the target.
	Forward
)

func (k Kind) String() string {
	switch k {
	case Include:
		return "INCLUDE"
	case Forward:
		return "FORWARD"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Target addresses the handler of a sub-dispatch. It is either a Path,
// resolved through the mapper, or a Named handler.
type Target interface {
	fmt.Stringer
	target()
}

// Path targets the handler mapped to a context-relative path.
type Path string

// Named targets a handler by its registered name, bypassing the mapper.
type Named string

func (Path) target()  {}
func (Named) target() {}

func (p Path) String() string  { return "path " + string(p) }
func (n Named) String() string { return "name " + string(n) }

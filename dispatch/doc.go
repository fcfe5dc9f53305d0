// Package dispatch tracks which mapping a request exposes while it is
// composed from nested includes and forwards.
//
// A State is seeded with the mapping of the directly addressed request.
// Each sub-dispatch is bracketed by Begin and End:
//
//	err := st.Dispatch(dispatch.Include, dispatch.Path("/header"), func(f dispatch.Frame) error {
//	    // st.Current() is still the including handler's mapping.
//	    // st.IncludeMapping() is the mapping of "/header".
//	    return render(f.HandlerName)
//	})
//
// The effect of each dispatch kind:
//
//	INCLUDE by path   current unchanged,        include mapping = resolved path
//	INCLUDE by name   current unchanged,        no side attribute
//	FORWARD by path   current = resolved path,  forward mapping = previous current
//	FORWARD by name   current unchanged,        no side attribute
//
// Side attributes are only visible between Begin and End; End restores
// whatever the enclosing level saw. A forward's new current mapping outlives
// its End.
package dispatch

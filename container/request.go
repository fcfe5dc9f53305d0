package container

import (
	"context"
	"net/http"

	"github.com/vitalvas/servlet/dispatch"
	"github.com/vitalvas/servlet/mapping"
)

// requestKey is an unexported type for the single context key.
type requestKey struct{}

// ctxKey is the context key holding the *request of a dispatched request.
var ctxKey = requestKey{}

// request is the per-request data a Context attaches before invoking a
// servlet. It is shared by the direct invocation and every nested
// sub-dispatch of the same request.
type request struct {
	context *Context
	rt      *runtime
	state   *dispatch.State

	// path is the context-relative path the request is currently
	// addressed to. Forwards by path replace it; includes do not.
	path string
}

func fromRequest(r *http.Request) *request {
	if rq, ok := r.Context().Value(ctxKey).(*request); ok {
		return rq
	}
	return nil
}

func withRequest(r *http.Request, rq *request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey, rq))
}

// Mapping returns the current mapping of the request: the mapping of the
// directly addressed servlet, or of the most recent forward by path. It
// returns the zero Mapping for requests not served by a Context.
func Mapping(r *http.Request) mapping.Mapping {
	if rq := fromRequest(r); rq != nil {
		return rq.state.Current()
	}
	return mapping.Mapping{}
}

// IncludeMapping returns the mapping of the include by path that invoked
// the running servlet.
func IncludeMapping(r *http.Request) (mapping.Mapping, bool) {
	if rq := fromRequest(r); rq != nil {
		return rq.state.IncludeMapping()
	}
	return mapping.Mapping{}, false
}

// ForwardMapping returns the mapping that was current before the forward by
// path that invoked the running servlet.
func ForwardMapping(r *http.Request) (mapping.Mapping, bool) {
	if rq := fromRequest(r); rq != nil {
		return rq.state.ForwardMapping()
	}
	return mapping.Mapping{}, false
}

// DispatchState returns the dispatch state of the request, or nil.
func DispatchState(r *http.Request) *dispatch.State {
	if rq := fromRequest(r); rq != nil {
		return rq.state
	}
	return nil
}

// ContextPath returns the base path of the Context serving the request.
// The root context has the empty path.
func ContextPath(r *http.Request) string {
	if rq := fromRequest(r); rq != nil {
		return rq.context.path
	}
	return ""
}

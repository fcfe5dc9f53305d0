package container

import (
	"net/http"

	"github.com/vitalvas/servlet/dispatch"
)

// RequestDispatcher includes or forwards to another servlet of the Context
// serving the current request.
type RequestDispatcher struct {
	target dispatch.Target
}

// PathDispatcher returns a dispatcher for the servlet mapped to path. A path
// without a leading "/" is relative to the path the request is currently
// addressed to. Query strings are ignored. "" and "/" address the context
// root pattern when one is registered, and the default pattern otherwise.
func PathDispatcher(path string) *RequestDispatcher {
	return &RequestDispatcher{target: dispatch.Path(path)}
}

// NamedDispatcher returns a dispatcher for the servlet registered as name.
// Named dispatches do not change the request's mapping and expose no
// include or forward mapping.
func NamedDispatcher(name string) *RequestDispatcher {
	return &RequestDispatcher{target: dispatch.Named(name)}
}

// Target returns the dispatch target.
func (d *RequestDispatcher) Target() dispatch.Target {
	return d.target
}

// Include invokes the target servlet as part of the current response. The
// request keeps its mapping; a dispatch by path makes the target's mapping
// available through IncludeMapping for the duration of the call.
func (d *RequestDispatcher) Include(w http.ResponseWriter, r *http.Request) error {
	return d.dispatch(dispatch.Include, w, r)
}

// Forward hands the request to the target servlet. A dispatch by path
// replaces the request's mapping with the target's mapping for the rest of
// the request, and exposes the previous one through ForwardMapping for the
// duration of the call.
//
// Response buffering is up to the caller; Forward does not reset anything
// already written to w.
func (d *RequestDispatcher) Forward(w http.ResponseWriter, r *http.Request) error {
	return d.dispatch(dispatch.Forward, w, r)
}

func (d *RequestDispatcher) dispatch(kind dispatch.Kind, w http.ResponseWriter, r *http.Request) error {
	rq := fromRequest(r)
	if rq == nil {
		return ErrNoDispatchState
	}

	target := d.target
	path, byPath := target.(dispatch.Path)
	if byPath {
		path = dispatch.Path(rq.rt.rootPath(resolveDispatchPath(rq.path, string(path))))
		target = path
	}

	logger := rq.context.logger()

	err := rq.state.Dispatch(kind, target, func(f dispatch.Frame) error {
		if kind == dispatch.Forward && byPath {
			rq.path = string(path)
		}

		logger.Debug("sub-dispatch",
			"context", rq.context.path,
			"kind", kind.String(),
			"target", target.String(),
			"servlet", f.HandlerName,
			"depth", rq.state.Depth(),
			"request_id", RequestID(r),
		)

		rq.rt.servlets[f.HandlerName].ServeHTTP(w, r)
		return nil
	})
	if err != nil {
		logger.Error("sub-dispatch failed",
			"context", rq.context.path,
			"kind", kind.String(),
			"target", target.String(),
			"request_id", RequestID(r),
			"error", err,
		)
		return err
	}

	return nil
}

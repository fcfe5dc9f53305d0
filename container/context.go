package container

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/vitalvas/servlet/dispatch"
	"github.com/vitalvas/servlet/mapping"
)

var (
	// ErrStarted is returned when a Context is modified after Start.
	ErrStarted = errors.New("context is already started")

	// ErrNotStarted is returned when a Context is used before Start.
	ErrNotStarted = errors.New("context is not started")

	// ErrInvalidContextPath is returned for a malformed context base path.
	ErrInvalidContextPath = errors.New("invalid context path")

	// ErrDuplicateServlet is returned when a servlet name is registered twice.
	ErrDuplicateServlet = errors.New("duplicate servlet name")

	// ErrNoDispatchState is returned when a dispatcher is used with a request
	// that was not served by a Context.
	ErrNoDispatchState = errors.New("request was not dispatched by a context")
)

var (
	defaultNotFoundHandler    = http.NotFoundHandler()
	defaultUnavailableHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
	})
)

// Context is a routable unit: a set of named servlets reachable below a
// common base path through URL pattern mappings.
//
// Servlets, mappings and middleware are registered first; Start then builds
// the pattern mapper and publishes it. After Start the Context is read-only
// and serves requests concurrently:
//
//	c, _ := container.NewContext("/shop")
//	c.AddServlet("cart", cartHandler)
//	c.AddMapping("/cart/*", "cart")
//	if err := c.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", c)
type Context struct {
	// NotFoundHandler is called when no pattern matches the request.
	// If nil, http.NotFoundHandler() is used.
	NotFoundHandler http.Handler

	// Logger receives dispatch diagnostics. If nil, slog.Default() is used.
	Logger *slog.Logger

	path string

	mu          sync.Mutex
	servlets    map[string]http.Handler
	regs        []mapping.Registration
	middlewares []MiddlewareFunc

	rt atomic.Pointer[runtime]
}

// runtime is the immutable state published by Start.
type runtime struct {
	mapper   *mapping.Mapper
	servlets map[string]http.Handler

	// filtered holds the middleware-wrapped servlets used for direct
	// requests, so wrapping happens once and not per request.
	filtered map[string]http.Handler
}

// HasHandler implements dispatch.Registry.
func (rt *runtime) HasHandler(name string) bool {
	_, ok := rt.servlets[name]
	return ok
}

// NewContext returns a Context rooted at path. The root context has the
// empty path; any other path starts with "/" and has no trailing slash.
func NewContext(path string) (*Context, error) {
	if !ValidContextPath(path) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContextPath, path)
	}
	return &Context{
		path:     path,
		servlets: make(map[string]http.Handler),
	}, nil
}

// Path returns the base path of the context.
func (c *Context) Path() string {
	return c.path
}

// AddServlet registers handler under name.
func (c *Context) AddServlet(name string, handler http.Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rt.Load() != nil {
		return ErrStarted
	}
	if name == "" || handler == nil {
		return fmt.Errorf("container: servlet needs a name and a handler")
	}
	if _, ok := c.servlets[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateServlet, name)
	}
	c.servlets[name] = handler
	return nil
}

// AddServletFunc registers a handler function under name.
func (c *Context) AddServletFunc(name string, f func(http.ResponseWriter, *http.Request)) error {
	return c.AddServlet(name, http.HandlerFunc(f))
}

// AddMapping maps a URL pattern to the servlet registered as name. The
// servlet may be registered later, but before Start.
func (c *Context) AddMapping(pattern, name string) error {
	if _, err := mapping.ParsePattern(pattern, name); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rt.Load() != nil {
		return ErrStarted
	}
	c.regs = append(c.regs, mapping.Registration{Pattern: pattern, Handler: name})
	return nil
}

// Use appends middleware applied to servlets invoked by direct requests.
// Includes and forwards call servlets without it.
func (c *Context) Use(mwf ...MiddlewareFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rt.Load() != nil {
		return ErrStarted
	}
	c.middlewares = append(c.middlewares, mwf...)
	return nil
}

// Start builds the pattern mapper and makes the context serve requests. It
// fails when a pattern is invalid or duplicated, or when a mapping names a
// servlet that is not registered.
func (c *Context) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rt.Load() != nil {
		return ErrStarted
	}

	for _, reg := range c.regs {
		if _, ok := c.servlets[reg.Handler]; !ok {
			return fmt.Errorf("%w: pattern %q maps to unknown servlet %q", dispatch.ErrBadDispatchTarget, reg.Pattern, reg.Handler)
		}
	}

	m, err := mapping.New(c.regs...)
	if err != nil {
		return fmt.Errorf("context %q: %w", c.path, err)
	}

	rt := &runtime{
		mapper:   m,
		servlets: make(map[string]http.Handler, len(c.servlets)),
		filtered: make(map[string]http.Handler, len(c.servlets)),
	}
	for name, h := range c.servlets {
		rt.servlets[name] = h
		rt.filtered[name] = c.applyMiddleware(h)
	}

	c.rt.Store(rt)
	c.logger().Debug("context started", "context", c.path, "servlets", len(rt.servlets), "patterns", len(c.regs))

	return nil
}

// Started reports whether Start has completed.
func (c *Context) Started() bool {
	return c.rt.Load() != nil
}

// Mapper returns the pattern mapper, or nil before Start.
func (c *Context) Mapper() *mapping.Mapper {
	if rt := c.rt.Load(); rt != nil {
		return rt.mapper
	}
	return nil
}

// Servlets returns the sorted names of the registered servlets.
func (c *Context) Servlets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.servlets))
	for name := range c.servlets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasHandler reports whether a servlet is registered under name.
func (c *Context) HasHandler(name string) bool {
	if rt := c.rt.Load(); rt != nil {
		return rt.HasHandler(name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.servlets[name]
	return ok
}

// Resolve resolves a context-relative path with the context's mapper.
func (c *Context) Resolve(relativePath string) (mapping.Mapping, error) {
	rt := c.rt.Load()
	if rt == nil {
		return mapping.Mapping{}, ErrNotStarted
	}
	return rt.mapper.Resolve(relativePath)
}

// ResolveURL resolves a request path, context path included, the way
// ServeHTTP does. Paths outside the context yield mapping.ErrNoMatch.
func (c *Context) ResolveURL(urlPath string) (mapping.Mapping, error) {
	rt := c.rt.Load()
	if rt == nil {
		return mapping.Mapping{}, ErrNotStarted
	}

	rel, ok := rt.relativePath(c.path, urlPath)
	if !ok {
		return mapping.Mapping{}, fmt.Errorf("%w: %q is outside context %q", mapping.ErrNoMatch, urlPath, c.path)
	}
	return rt.mapper.Resolve(rel)
}

// relativePath returns the path of urlPath below base. Dot segments are
// removed before the base is stripped. A request for the context root with a
// trailing slash addresses the empty pattern when one is registered.
func (rt *runtime) relativePath(base, urlPath string) (string, bool) {
	rel, ok := stripContextPath(base, cleanPath(urlPath))
	if !ok {
		return "", false
	}
	return rt.rootPath(rel), true
}

// rootPath maps "/" to the empty context root path when a context root
// pattern is registered.
func (rt *runtime) rootPath(rel string) string {
	if rel == "/" && rt.mapper.HasContextRoot() {
		return ""
	}
	return rel
}

// ServeHTTP maps the request below the context path to a servlet and
// invokes it. Requests outside the context path and requests that match no
// pattern get NotFoundHandler; a context that is not started answers 503
// Service Unavailable.
func (c *Context) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	rt := c.rt.Load()
	if rt == nil {
		c.logger().Warn("context not started", "context", c.path, "path", req.URL.Path)
		defaultUnavailableHandler.ServeHTTP(w, req)
		return
	}

	rel, ok := rt.relativePath(c.path, req.URL.Path)
	if !ok {
		c.notFound(w, req)
		return
	}

	m, err := rt.mapper.Resolve(rel)
	if err != nil {
		c.logger().Warn("no mapping for request",
			"context", c.path,
			"path", rel,
			"error", err,
		)
		c.notFound(w, req)
		return
	}

	st := dispatch.NewState(rt.mapper, rt)
	if err := st.Seed(m); err != nil {
		panic(err) // a fresh state is always seedable
	}
	defer st.Complete()

	req = withRequest(req, &request{
		context: c,
		rt:      rt,
		state:   st,
		path:    rel,
	})

	c.logger().Debug("dispatch request",
		"context", c.path,
		"path", rel,
		"match_type", m.MatchType.String(),
		"pattern", m.Pattern,
		"servlet", m.HandlerName,
	)

	rt.filtered[m.HandlerName].ServeHTTP(w, req)
}

func (c *Context) notFound(w http.ResponseWriter, req *http.Request) {
	handler := c.NotFoundHandler
	if handler == nil {
		handler = defaultNotFoundHandler
	}
	handler.ServeHTTP(w, req)
}

func (c *Context) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// applyMiddleware wraps the handler with all registered middleware.
func (c *Context) applyMiddleware(handler http.Handler) http.Handler {
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		handler = c.middlewares[i].Middleware(handler)
	}
	return handler
}

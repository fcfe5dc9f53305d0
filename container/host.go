package container

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/vitalvas/servlet/mapping"
)

// ErrDuplicateContext is returned when two contexts share a base path.
var ErrDuplicateContext = errors.New("duplicate context path")

// Host routes requests to the Context with the longest base path that
// contains the request path. Contexts do not nest: each request is served
// by exactly one of them.
type Host struct {
	// NotFoundHandler is called when no context contains the request path.
	// If nil, http.NotFoundHandler() is used.
	NotFoundHandler http.Handler

	// Logger is handed to contexts that have no logger of their own.
	Logger *slog.Logger

	mu       sync.RWMutex
	contexts []*Context // longest path first
}

// NewHost returns an empty Host.
func NewHost() *Host {
	return &Host{}
}

// AddContext adds c to the host.
func (h *Host) AddContext(c *Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, existing := range h.contexts {
		if existing.path == c.path {
			return fmt.Errorf("%w: %q", ErrDuplicateContext, c.path)
		}
	}
	if c.Logger == nil {
		c.Logger = h.Logger
	}

	h.contexts = append(h.contexts, c)
	sort.SliceStable(h.contexts, func(i, j int) bool {
		return len(h.contexts[i].path) > len(h.contexts[j].path)
	})
	return nil
}

// Context returns the context with the given base path, or nil.
func (h *Host) Context(path string) *Context {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.contexts {
		if c.path == path {
			return c
		}
	}
	return nil
}

// Contexts returns the contexts, longest base path first.
func (h *Host) Contexts() []*Context {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Context, len(h.contexts))
	copy(out, h.contexts)
	return out
}

// Start starts every context that is not started yet and returns the
// joined errors of the contexts that failed.
func (h *Host) Start() error {
	var errs []error
	for _, c := range h.Contexts() {
		if c.Started() {
			continue
		}
		if err := c.Start(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Match returns the context serving urlPath, or nil. Dot segments are
// removed from urlPath first.
func (h *Host) Match(urlPath string) *Context {
	urlPath = cleanPath(urlPath)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.contexts {
		if _, ok := stripContextPath(c.path, urlPath); ok {
			return c
		}
	}
	return nil
}

// ServeHTTP hands the request to the matching context.
func (h *Host) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if c := h.Match(req.URL.Path); c != nil {
		c.ServeHTTP(w, req)
		return
	}

	handler := h.NotFoundHandler
	if handler == nil {
		handler = defaultNotFoundHandler
	}
	handler.ServeHTTP(w, req)
}

// Resolve returns the context serving urlPath and the mapping it resolves
// the path to.
func (h *Host) Resolve(urlPath string) (*Context, mapping.Mapping, error) {
	c := h.Match(urlPath)
	if c == nil {
		return nil, mapping.Mapping{}, fmt.Errorf("%w: no context for %q", mapping.ErrNoMatch, urlPath)
	}

	m, err := c.ResolveURL(urlPath)
	if err != nil {
		return c, mapping.Mapping{}, err
	}
	return c, m, nil
}

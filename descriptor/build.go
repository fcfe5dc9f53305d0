package descriptor

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vitalvas/servlet/container"
)

// HandlerFactory creates the handler for a declared servlet. contextPath is
// the base path of the context the servlet belongs to.
type HandlerFactory func(contextPath string, s Servlet) (http.Handler, error)

// BuildConfig configures Build.
type BuildConfig struct {
	// Logger is used by the host, its contexts and the access-log and
	// recovery filters. Defaults to slog.Default().
	Logger *slog.Logger

	// NotFoundHandler is installed on the host and on every context.
	NotFoundHandler http.Handler
}

// Build creates a host with one context per declared context, registers the
// servlets returned by factory with their mappings, and starts it.
func (d *Descriptor) Build(factory HandlerFactory, cfg BuildConfig) (*container.Host, error) {
	if factory == nil {
		return nil, fmt.Errorf("descriptor: nil handler factory")
	}
	if err := Validate(d); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	host := container.NewHost()
	host.Logger = logger
	host.NotFoundHandler = cfg.NotFoundHandler

	for _, dc := range d.Contexts {
		c, err := buildContext(dc, factory, logger)
		if err != nil {
			return nil, fmt.Errorf("context %q: %w", dc.Path, err)
		}
		c.NotFoundHandler = cfg.NotFoundHandler

		if err := host.AddContext(c); err != nil {
			return nil, err
		}
	}

	if err := host.Start(); err != nil {
		return nil, err
	}
	return host, nil
}

func buildContext(dc Context, factory HandlerFactory, logger *slog.Logger) (*container.Context, error) {
	c, err := container.NewContext(dc.Path)
	if err != nil {
		return nil, err
	}
	c.Logger = logger

	for _, name := range dc.Filters {
		mw, err := filter(name, logger)
		if err != nil {
			return nil, err
		}
		if err := c.Use(mw); err != nil {
			return nil, err
		}
	}

	for _, s := range dc.Servlets {
		h, err := factory(dc.Path, s)
		if err != nil {
			return nil, fmt.Errorf("servlet %q: %w", s.Name, err)
		}
		if err := c.AddServlet(s.Name, h); err != nil {
			return nil, err
		}
	}

	for _, reg := range dc.Registrations() {
		if err := c.AddMapping(reg.Pattern, reg.Handler); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func filter(name string, logger *slog.Logger) (container.MiddlewareFunc, error) {
	switch name {
	case FilterRequestID:
		return container.RequestIDMiddleware(container.RequestIDConfig{
			GenerateFunc:  container.GenerateUUIDv7,
			TrustIncoming: true,
		}), nil
	case FilterAccessLog:
		return container.AccessLogMiddleware(logger), nil
	case FilterRecovery:
		return container.RecoveryMiddleware(container.RecoveryConfig{Logger: logger}), nil
	default:
		return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidDescriptor, name)
	}
}

package container

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// MiddlewareFunc is a function which receives an http.Handler and returns
// another http.Handler. Context.Use applies it to servlets invoked by direct
// requests.
type MiddlewareFunc func(http.Handler) http.Handler

// Middleware allows MiddlewareFunc to implement the Middleware interface.
func (mw MiddlewareFunc) Middleware(handler http.Handler) http.Handler {
	return mw(handler)
}

type requestIDKey struct{}

// RequestID returns the correlation ID RequestIDMiddleware attached to the
// request, or "" when the context has no such filter. Servlets reached by
// include or forward see the ID of the direct request.
func RequestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RequestIDConfig configures RequestIDMiddleware.
type RequestIDConfig struct {
	// HeaderName is echoed on the response and, with TrustIncoming, read
	// from the request. Empty means "X-Request-ID".
	HeaderName string

	// GenerateFunc mints IDs for requests that arrive without one.
	// Nil means GenerateUUIDv4.
	GenerateFunc func(r *http.Request) string

	// TrustIncoming keeps an ID the client sent in HeaderName.
	TrustIncoming bool
}

// RequestIDMiddleware tags each direct request with a correlation ID. The
// sub-dispatch and access log records of the container carry it as
// "request_id", and RecoveryMiddleware reports it with the panic.
func RequestIDMiddleware(cfg RequestIDConfig) MiddlewareFunc {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-Request-ID"
	}

	generate := cfg.GenerateFunc
	if generate == nil {
		generate = GenerateUUIDv4
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cfg.TrustIncoming {
				id = r.Header.Get(headerName)
			}
			if id == "" {
				id = generate(r)
			}
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(headerName, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		})
	}
}

// GenerateUUIDv4 mints a random ID.
func GenerateUUIDv4(_ *http.Request) string {
	return uuid.New().String()
}

// GenerateUUIDv7 mints a time-ordered ID. Descriptor-built contexts use it.
func GenerateUUIDv7(_ *http.Request) string {
	return uuid.Must(uuid.NewV7()).String()
}

// RecoveryConfig configures the Recovery middleware behaviour.
type RecoveryConfig struct {
	// Logger receives an error record with the recovered value and the
	// request's current mapping. When nil, nothing is logged.
	Logger *slog.Logger
}

// RecoveryMiddleware returns a middleware that recovers from panics in the
// servlet or any servlet it includes or forwards to, and answers 500
// Internal Server Error.
func RecoveryMiddleware(cfg RecoveryConfig) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if cfg.Logger != nil {
						m := Mapping(r)
						cfg.Logger.Error("servlet panic",
							"panic", err,
							"path", r.URL.Path,
							"pattern", m.Pattern,
							"servlet", m.HandlerName,
							"request_id", RequestID(r),
						)
					}

					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// AccessLogMiddleware returns a middleware that logs one record per direct
// request once the servlet returns. The logged mapping is the request's
// final mapping, so a forward by path shows up as the forward target.
func AccessLogMiddleware(logger *slog.Logger) MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}

			m := Mapping(r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"match_type", m.MatchType.String(),
				"pattern", m.Pattern,
				"servlet", m.HandlerName,
				"duration", time.Since(start),
				"request_id", RequestID(r),
			)
		})
	}
}

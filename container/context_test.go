package container

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/servlet/dispatch"
	"github.com/vitalvas/servlet/mapping"
)

func okServlet(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body))
	})
}

func TestNewContext(t *testing.T) {
	for _, path := range []string{"", "/dummy", "/a/b"} {
		t.Run("valid "+path, func(t *testing.T) {
			c, err := NewContext(path)
			require.NoError(t, err)
			assert.Equal(t, path, c.Path())
			assert.False(t, c.Started())
			assert.Nil(t, c.Mapper())
		})
	}

	for _, path := range []string{"/", "dummy", "/dummy/", "/a/../b", "/a*", "/a//b"} {
		t.Run("invalid "+path, func(t *testing.T) {
			_, err := NewContext(path)
			assert.ErrorIs(t, err, ErrInvalidContextPath)
		})
	}
}

func TestContextRegistration(t *testing.T) {
	t.Run("duplicate servlet", func(t *testing.T) {
		c, _ := NewContext("")
		require.NoError(t, c.AddServlet("a", okServlet("a")))
		assert.ErrorIs(t, c.AddServlet("a", okServlet("b")), ErrDuplicateServlet)
	})

	t.Run("servlet without name or handler", func(t *testing.T) {
		c, _ := NewContext("")
		assert.Error(t, c.AddServlet("", okServlet("a")))
		assert.Error(t, c.AddServlet("a", nil))
	})

	t.Run("invalid pattern", func(t *testing.T) {
		c, _ := NewContext("")
		assert.ErrorIs(t, c.AddMapping("foo", "a"), mapping.ErrInvalidPattern)
	})

	t.Run("duplicate pattern fails start", func(t *testing.T) {
		c, _ := NewContext("")
		require.NoError(t, c.AddServlet("a", okServlet("a")))
		require.NoError(t, c.AddMapping("/x", "a"))
		require.NoError(t, c.AddMapping("/x", "a"))
		assert.ErrorIs(t, c.Start(), mapping.ErrDuplicatePattern)
		assert.False(t, c.Started())
	})

	t.Run("mapping to unknown servlet fails start", func(t *testing.T) {
		c, _ := NewContext("")
		require.NoError(t, c.AddMapping("/x", "ghost"))
		assert.ErrorIs(t, c.Start(), dispatch.ErrBadDispatchTarget)
	})

	t.Run("servlet may be added after its mapping", func(t *testing.T) {
		c, _ := NewContext("")
		require.NoError(t, c.AddMapping("/x", "a"))
		require.NoError(t, c.AddServletFunc("a", func(w http.ResponseWriter, _ *http.Request) {}))
		require.NoError(t, c.Start())
	})

	t.Run("frozen after start", func(t *testing.T) {
		c, _ := NewContext("")
		require.NoError(t, c.AddServlet("a", okServlet("a")))
		require.NoError(t, c.Start())

		assert.ErrorIs(t, c.AddServlet("b", okServlet("b")), ErrStarted)
		assert.ErrorIs(t, c.AddMapping("/b", "a"), ErrStarted)
		assert.ErrorIs(t, c.Use(RecoveryMiddleware(RecoveryConfig{})), ErrStarted)
		assert.ErrorIs(t, c.Start(), ErrStarted)
	})

	t.Run("inspection", func(t *testing.T) {
		c, _ := NewContext("/app")
		require.NoError(t, c.AddServlet("b", okServlet("b")))
		require.NoError(t, c.AddServlet("a", okServlet("a")))
		require.NoError(t, c.AddMapping("/a", "a"))

		assert.True(t, c.HasHandler("b"))
		_, err := c.Resolve("/a")
		assert.ErrorIs(t, err, ErrNotStarted)

		require.NoError(t, c.Start())
		assert.Equal(t, []string{"a", "b"}, c.Servlets())
		assert.True(t, c.HasHandler("a"))
		assert.False(t, c.HasHandler("c"))
		require.NotNil(t, c.Mapper())

		m, err := c.Resolve("/a")
		require.NoError(t, err)
		assert.Equal(t, "a", m.HandlerName)
	})
}

func TestContextServeHTTP(t *testing.T) {
	newCtx := func(t *testing.T) *Context {
		c, err := NewContext("/app")
		require.NoError(t, err)
		require.NoError(t, c.AddServlet("page", okServlet("page")))
		require.NoError(t, c.AddMapping("/page", "page"))
		return c
	}

	t.Run("not started", func(t *testing.T) {
		c := newCtx(t)
		assert.Equal(t, http.StatusServiceUnavailable, get(t, c, "/app/page").Code)
	})

	t.Run("served", func(t *testing.T) {
		c := newCtx(t)
		require.NoError(t, c.Start())
		w := get(t, c, "/app/page")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "page", w.Body.String())
	})

	t.Run("no match", func(t *testing.T) {
		c := newCtx(t)
		require.NoError(t, c.Start())
		assert.Equal(t, http.StatusNotFound, get(t, c, "/app/other").Code)
	})

	t.Run("outside context path", func(t *testing.T) {
		c := newCtx(t)
		require.NoError(t, c.Start())
		assert.Equal(t, http.StatusNotFound, get(t, c, "/application/page").Code)
	})

	t.Run("custom not found handler", func(t *testing.T) {
		c := newCtx(t)
		c.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
		require.NoError(t, c.Start())
		assert.Equal(t, http.StatusTeapot, get(t, c, "/app/other").Code)
	})

	t.Run("dot segments are cleaned", func(t *testing.T) {
		c := newCtx(t)
		require.NoError(t, c.Start())
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.URL.Path = "/app/x/../page"
		w := httptest.NewRecorder()
		c.ServeHTTP(w, r)
		assert.Equal(t, "page", w.Body.String())
	})

	t.Run("context root with trailing slash", func(t *testing.T) {
		c, _ := NewContext("/app")
		require.NoError(t, c.AddServlet("root", MappingReportHandler()))
		require.NoError(t, c.AddMapping("", "root"))
		require.NoError(t, c.Start())

		assert.Contains(t, get(t, c, "/app/").Body.String(), "MatchType=[CONTEXT_ROOT]")
		assert.Contains(t, get(t, c, "/app").Body.String(), "MatchType=[CONTEXT_ROOT]")
	})

	t.Run("slash goes to default without context root pattern", func(t *testing.T) {
		c, _ := NewContext("/app")
		require.NoError(t, c.AddServlet("default", MappingReportHandler()))
		require.NoError(t, c.AddMapping("/", "default"))
		require.NoError(t, c.Start())

		assert.Contains(t, get(t, c, "/app/").Body.String(), "MatchType=[DEFAULT]")
	})

	t.Run("logs unmatched requests", func(t *testing.T) {
		var buf bytes.Buffer
		c := newCtx(t)
		c.Logger = slog.New(slog.NewJSONHandler(&buf, nil))
		require.NoError(t, c.Start())

		get(t, c, "/app/other")
		assert.Contains(t, buf.String(), `"msg":"no mapping for request"`)
		assert.Contains(t, buf.String(), `"path":"/other"`)
	})

	t.Run("accessors outside a context", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.True(t, Mapping(r).IsZero())
		_, ok := IncludeMapping(r)
		assert.False(t, ok)
		_, ok = ForwardMapping(r)
		assert.False(t, ok)
		assert.Nil(t, DispatchState(r))
		assert.Equal(t, "", ContextPath(r))
	})

	t.Run("accessors inside a context", func(t *testing.T) {
		c, _ := NewContext("/app")
		var state *dispatch.State
		var ctxPath string
		require.NoError(t, c.AddServletFunc("s", func(_ http.ResponseWriter, r *http.Request) {
			state = DispatchState(r)
			ctxPath = ContextPath(r)
		}))
		require.NoError(t, c.AddMapping("/s", "s"))
		require.NoError(t, c.Start())

		get(t, c, "/app/s")
		require.NotNil(t, state)
		assert.Equal(t, "s", state.Current().HandlerName)
		assert.Equal(t, "/app", ctxPath)
	})
}

func BenchmarkContextServeHTTP(b *testing.B) {
	c, err := NewContext("/app")
	require.NoError(b, err)
	require.NoError(b, c.AddServlet("api", okServlet("")))
	require.NoError(b, c.AddMapping("/api/*", "api"))
	c.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	require.NoError(b, c.Start())

	r := httptest.NewRequest(http.MethodGet, "/app/api/users/42", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ServeHTTP(w, r)
	}
}

// Package container serves HTTP requests with servlet-style routing: named
// handlers ("servlets") are reached through URL pattern mappings below the
// base path of a Context, and servlets compose responses by including or
// forwarding to other servlets.
//
// # Contexts
//
// Register servlets and mappings, then start the context:
//
//	c, err := container.NewContext("/dummy")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c.AddServlet("Mapping", container.MappingReportHandler())
//	c.AddMapping("/foo/bar/*", "Mapping")
//	if err := c.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// A request for /dummy/foo/bar/foo2 is served by "Mapping", and inside the
// servlet Mapping(r) returns:
//
//	MatchValue  "/foo2"
//	Pattern     "/foo/bar/*"
//	MatchType   PATH
//	HandlerName "Mapping"
//
// Requests whose path matches no pattern get NotFoundHandler (404).
//
// # Hosts
//
// A Host serves several contexts side by side and picks the one with the
// longest base path containing the request path:
//
//	h := container.NewHost()
//	h.AddContext(shop)  // "/shop"
//	h.AddContext(root)  // ""
//	http.ListenAndServe(":8080", h)
//
// # Include and Forward
//
// Dispatchers address a servlet by path, resolved through the context's
// patterns, or by name:
//
//	func page(w http.ResponseWriter, r *http.Request) {
//	    if err := container.PathDispatcher("/header").Include(w, r); err != nil {
//	        http.Error(w, err.Error(), http.StatusInternalServerError)
//	        return
//	    }
//	    // ...
//	}
//
// An include leaves Mapping(r) alone and exposes the included servlet's
// mapping through IncludeMapping(r). A forward by path makes the target's
// mapping the request's mapping, and exposes the previous one through
// ForwardMapping(r). Named dispatches change neither and expose nothing.
// Include and forward mappings are only visible while the dispatch runs.
//
// A dispatch to a path that matches no pattern returns an error wrapping
// mapping.ErrNoMatch; a dispatch to an unknown servlet name returns an error
// wrapping dispatch.ErrBadDispatchTarget. In both cases the target is not
// invoked.
//
// # Middleware
//
// Middleware registered with Context.Use wraps servlets invoked by direct
// requests:
//
//	c.Use(
//	    container.RequestIDMiddleware(container.RequestIDConfig{}),
//	    container.AccessLogMiddleware(logger),
//	    container.RecoveryMiddleware(container.RecoveryConfig{Logger: logger}),
//	)
//
// Middleware runs in registration order, so AccessLogMiddleware placed after
// RequestIDMiddleware logs the request ID.
package container

package app

import (
	"fmt"
	"net/http"

	"github.com/catzilla-project/catzilla/internal/middleware"
	"github.com/catzilla-project/catzilla/internal/router"
)

// GET registers a handler for HTTP GET requests on the given path.
// Optionally accepts route-specific middleware.
//
// Example:
//
//	a := app.New()
//	a.GET("/health", func(c app.Ctx) error { return c.String(http.StatusOK, "ok") })
//
// Example (with route params and middleware):
//
//	a.GET("/users/:id", ShowUser, Auth)
//	// order: global -> Auth -> ShowUser; handler sees c.Param("id")
func (a *DefaultApp) GET(path string, h Handler, mws ...Middleware) {
	a.handle(http.MethodGet, path, h, mws...)
}

// POST registers a handler for HTTP POST requests on the given path.
// Commonly used for creating resources.
func (a *DefaultApp) POST(path string, h Handler, mws ...Middleware) {
	a.handle(http.MethodPost, path, h, mws...)
}

// PUT registers a handler for HTTP PUT requests on the given path.
// Typically used for full resource replacement.
func (a *DefaultApp) PUT(path string, h Handler, mws ...Middleware) {
	a.handle(http.MethodPut, path, h, mws...)
}

// PATCH registers a handler for HTTP PATCH requests on the given path.
// Typically used for partial updates.
func (a *DefaultApp) PATCH(path string, h Handler, mws ...Middleware) {
	a.handle(http.MethodPatch, path, h, mws...)
}

// DELETE registers a handler for HTTP DELETE requests on the given path.
func (a *DefaultApp) DELETE(path string, h Handler, mws ...Middleware) {
	a.handle(http.MethodDelete, path, h, mws...)
}

// OPTIONS registers an explicit handler for HTTP OPTIONS requests on the
// given path, overriding the router's automatic Allow-header synthesis for
// that path. Useful for custom CORS preflight handling.
func (a *DefaultApp) OPTIONS(path string, h Handler, mws ...Middleware) {
	a.handle(http.MethodOptions, path, h, mws...)
}

// HEAD registers an explicit handler for HTTP HEAD requests on the given
// path, overriding the router's automatic HEAD-from-GET synthesis for that
// path.
func (a *DefaultApp) HEAD(path string, h Handler, mws ...Middleware) {
	a.handle(http.MethodHead, path, h, mws...)
}

// ANY registers a handler for all common HTTP methods (GET, POST, PUT, PATCH,
// DELETE, OPTIONS, HEAD) on the given path.
func (a *DefaultApp) ANY(path string, h Handler, mws ...Middleware) {
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodHead} {
		a.handle(m, path, h, mws...)
	}
}

// Handle registers a handler for a custom HTTP method on the given path.
// Use this for less common methods (e.g., PROPFIND, REPORT).
func (a *DefaultApp) Handle(method, path string, h Handler, mws ...Middleware) {
	a.handle(method, path, h, mws...)
}

// handle is the internal route registration and handler composition method.
// It compiles a middleware.Chain from global middleware, the route's own
// middleware (registration order), and h, then registers the compiled
// execution function with the radix trie.
//
// Registration errors (malformed pattern, duplicate method+pattern, wildcard
// not in tail position) panic, matching the convention of the julienschmidt
// httprouter/radix-tree family this router is grounded on: routes are
// wired once at startup, so a bad pattern is a programmer error that should
// fail loudly and immediately rather than silently misroute traffic.
func (a *DefaultApp) handle(method, path string, h Handler, mws ...Middleware) {
	perRoute := make([]middleware.Spec[Ctx], len(mws))
	for i, mw := range mws {
		perRoute[i] = middleware.Spec[Ctx]{Fn: adaptMiddleware(mw), Priority: 0, Phase: middleware.Pre}
	}

	chain := middleware.Compose(a.globalSpecs(), perRoute, middleware.Handler[Ctx](h))
	compiled := Handler(chain.Execute)

	anyMws := make([]any, len(mws))
	for i, mw := range mws {
		anyMws[i] = mw
	}

	route := &router.Route{
		Method:     method,
		Pattern:    path,
		Handler:    compiled,
		Middleware: anyMws,
	}

	if err := a.trie.AddRoute(method, path, route); err != nil {
		panic(fmt.Sprintf("app: failed to register route %s %s: %v", method, path, err))
	}
}

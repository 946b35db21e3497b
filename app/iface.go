package app

import (
	"log/slog"
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/catzilla-project/catzilla/internal/observability"
	"github.com/catzilla-project/catzilla/internal/static"
	"github.com/catzilla-project/catzilla/internal/tasks"
)

// App is the surface handlers and embedding code program against. DefaultApp
// is the only implementation; the interface exists so tests and embedders
// can substitute a stub without depending on the concrete struct.
//
// The pack slice this module was grounded on referenced an `App` return type
// from New() without ever defining the interface (see DESIGN.md) — this is
// the reconstruction, shaped to exactly the method set DefaultApp already
// exposed.
type App interface {
	http.Handler

	// ServeFastHTTP is the primary, zero-allocation-oriented entry point.
	ServeFastHTTP(c *fasthttp.RequestCtx)

	// Routing
	GET(path string, h Handler, mws ...Middleware)
	POST(path string, h Handler, mws ...Middleware)
	PUT(path string, h Handler, mws ...Middleware)
	PATCH(path string, h Handler, mws ...Middleware)
	DELETE(path string, h Handler, mws ...Middleware)
	OPTIONS(path string, h Handler, mws ...Middleware)
	HEAD(path string, h Handler, mws ...Middleware)
	ANY(path string, h Handler, mws ...Middleware)
	Handle(method, path string, h Handler, mws ...Middleware)

	// Use registers global middleware applied to every route.
	Use(mw ...Middleware)

	// Mount/Static bridge in net/http handlers and file trees.
	HandleHTTP(method, path string, h http.Handler)
	Mount(path string, h http.Handler)
	Static(prefix, dir string) (*static.Mount, error)
	StaticDirs(prefix string, dirs ...string) ([]*static.Mount, error)

	// Lifecycle and configuration.
	Run(addr string) error
	Shutdown() error

	SetLogger(l *slog.Logger)
	Logger() *slog.Logger
	SetErrorHandler(h ErrorHandler)
	ErrorHandler() ErrorHandler
	SetNotFoundHandler(h Handler)
	NotFoundHandler() Handler
	SetMethodNotAllowedHandler(h Handler)
	MethodNotAllowedHandler() Handler

	// Observability and background work (C9/C11).
	Metrics() *observability.Metrics
	Tasks() *tasks.Executor
}

var _ App = (*DefaultApp)(nil)

package app

import (
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"unsafe"

	"github.com/catzilla-project/catzilla/ctx"
	"github.com/catzilla-project/catzilla/internal/allocator"
	"github.com/catzilla-project/catzilla/internal/arena"
	"github.com/catzilla-project/catzilla/internal/cache"
	"github.com/catzilla-project/catzilla/internal/catzerr"
	"github.com/catzilla-project/catzilla/internal/middleware"
	"github.com/catzilla-project/catzilla/internal/observability"
	"github.com/catzilla-project/catzilla/internal/router"
	"github.com/catzilla-project/catzilla/internal/static"
	"github.com/catzilla-project/catzilla/internal/tasks"
	"github.com/valyala/fasthttp"
)

// Version is the Catzilla runtime version reported by the startup banner and
// any diagnostics endpoints. Overridden at build time via -ldflags.
var Version = "0.1.0-dev"

// defaultStaticCacheCapacity bounds the hot-file cache's in-memory entry
// count when an app doesn't configure its own cache via internal/config.
const defaultStaticCacheCapacity = 4096

// Handler is the function signature for Catzilla route handlers (and the
// output of composed middleware). It receives a request context and returns
// an error.
//
// Returning a non-nil error delegates to the App's ErrorHandler, allowing a
// single place to translate errors into HTTP responses and logs.
//
// Example:
//
//	func hello(c app.Ctx) error {
//		name := c.Param("name")
//		if name == "" {
//			return fmt.Errorf("missing name")
//		}
//		return c.String(http.StatusOK, "hello "+name)
//	}
type Handler func(ctx.Ctx) error

// Middleware transforms a Handler, enabling composition of cross-cutting
// concerns such as logging, authentication, rate limiting, etc.
//
// Middleware registered via Use is applied in the order added; route-specific
// middleware is applied after global middleware and before the route handler.
// A middleware can decide to short-circuit by returning without calling next.
//
// Example (logging middleware):
//
//	func Log(next app.Handler) app.Handler {
//		return func(c app.Ctx) error {
//			start := time.Now()
//			err := next(c)
//			logger := ctx.LoggerFromContext(c.Context())
//			logger.Info("handled",
//				"method", c.Method(),
//				"path", c.Path(),
//				"status", c.StatusCode(),
//				"dur", time.Since(start),
//			)
//			return err
//		}
//	}
type Middleware func(Handler) Handler

// ErrorHandler handles errors returned from handlers.
// It is called when a handler (or middleware) returns a non-nil error.
// Implementations should translate the error into an HTTP response and log it.
//
// Example:
//
//	func myErrorHandler(c app.Ctx, err error) {
//		logger := ctx.LoggerFromContext(c.Context())
//		logger.Error("request failed", "err", err)
//		_ = c.String(http.StatusInternalServerError, "internal error")
//	}
type ErrorHandler func(ctx.Ctx, error)

// Ctx is re-exported for package-local convenience in tests and internal APIs.
// External users can refer to this type as app.Ctx or ctx.Ctx.
type Ctx = ctx.Ctx

// globalMiddlewareSpec pairs one Middleware with its registration index so
// priority sorting (currently flat: everything runs in registration order,
// Priority 0) stays stable if per-middleware priorities are added later.
type globalMiddlewareSpec = middleware.Spec[Ctx]

// DefaultApp is the main application/router for Catzilla. It implements both
// http.Handler and fasthttp.RequestHandler for maximum performance.
// Optimized for fasthttp with a net/http compatibility layer.
//
// Routing is delegated to internal/router.Trie (a radix tree with per-method
// leaf tables); middleware composition is delegated to
// internal/middleware.Chain. DefaultApp's own job is request lifecycle: pull
// a pooled Ctx, resolve the route, run its compiled chain, return the Ctx to
// the pool.
type DefaultApp struct {
	trie *router.Trie

	// Global middleware, recorded in registration order.
	middleware []Middleware

	// Ultra-optimized context pool.
	pool sync.Pool

	// Arenas back the allocator-facade-backed request/response buffers;
	// exposed so middleware/handlers that need scratch space don't have to
	// allocate their own.
	Arenas *arena.Manager

	// Handlers and configuration
	OnError  ErrorHandler
	NotFound Handler
	MethodNA Handler
	logger   *slog.Logger

	fastServer *fasthttp.Server
	httpServer *http.Server

	// Static mounts grouped by prefix (StaticDirs layers several roots under
	// one prefix) and the shared server that serves them; see static.go.
	staticGroups map[string][]*static.Mount
	staticServer *static.Server

	// Metrics backs /metrics when a route serving Metrics().Handler() is
	// wired.
	metrics *observability.Metrics

	// Production gates the startup banner's verbosity (compact vs. box-drawn)
	// and is read once, at Run.
	Production bool

	// taskExecutor runs handler-submitted background work (C9); drained
	// alongside the HTTP listener in Shutdown.
	taskExecutor *tasks.Executor

	// cacheL2Enabled reflects whether the current static cache has an L2
	// disk tier, read by the startup banner.
	cacheL2Enabled bool
}

// New creates a new DefaultApp with maximum-performance defaults: a
// pre-warmed context pool, a pooled allocator facade backing five named
// arenas (request/response/cache/static/task), and the default error/404/405
// handlers.
//
// Example:
//
//	func main() {
//		a := app.New()
//		a.GET("/hello/:name", func(c app.Ctx) error {
//			return c.String(http.StatusOK, "hello "+c.Param("name"))
//		})
//		// FastHTTP (recommended for maximum performance)
//		_ = a.Run(":8080")
//	}
func New() *DefaultApp {
	a := &DefaultApp{
		trie:         router.New(),
		Arenas:       arena.NewManager(allocator.New(allocator.BackendAuto)),
		staticServer: static.NewServer(cache.New(cache.Config{L1Capacity: defaultStaticCacheCapacity})),
		staticGroups: make(map[string][]*static.Mount),
		metrics:      observability.NewMetrics(),
		taskExecutor: tasks.NewExecutor(tasks.PoolConfig{}),
	}

	// Ultra-optimized context pool with pre-warmed contexts
	a.pool.New = func() any {
		return &ctx.DefaultContext{}
	}

	// Aggressively pre-warm context pool for maximum performance
	// Scale with CPU count for optimal concurrency performance
	warmPoolSize := runtime.NumCPU() * 32
	for i := 0; i < warmPoolSize; i++ {
		c := a.pool.Get()
		a.pool.Put(c)
	}

	a.SetErrorHandler(defaultErrorHandler)
	a.SetNotFoundHandler(defaultNotFoundHandler)
	a.SetMethodNotAllowedHandler(defaultMethodNotAllowedHandler)
	a.SetLogger(observability.Logger("app"))

	return a
}

// Metrics returns the app's Prometheus collector set; mount Metrics().Handler()
// on a route (e.g. "/metrics") to expose it.
func (a *DefaultApp) Metrics() *observability.Metrics { return a.metrics }

// Tasks returns the app's background task executor (C9), for submitting
// work from handlers without blocking the request goroutine.
func (a *DefaultApp) Tasks() *tasks.Executor { return a.taskExecutor }

// SetAllocator swaps the arena manager's backing allocator, used by
// internal/config to honor APP_ALLOCATOR after New() has already run with
// the "auto" default.
func (a *DefaultApp) SetAllocator(backend string) {
	a.Arenas = arena.NewManager(allocator.New(backend))
}

// SetCache replaces the static file server's hot-file cache, used by
// internal/config to wire APP_CACHE_DIR's L2 disk tier in once it's known.
func (a *DefaultApp) SetCache(c *cache.Cache) {
	a.staticServer = static.NewServer(c)
	a.cacheL2Enabled = c.HasL2()
}

// SetLogger sets the application logger used by middlewares and utilities.
// If not set, Logger() falls back to slog.Default().
func (a *DefaultApp) SetLogger(l *slog.Logger) { a.logger = l }

// Logger returns the configured application logger, or slog.Default if none is set.
func (a *DefaultApp) Logger() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.Default()
}

// Use registers global middleware, applied in the order added. Each route's
// chain is compiled when the route is registered, so global middleware
// applies only to routes registered after the Use call; routes registered
// earlier do not run it. Route-specific middleware passed at registration
// time is applied after global middleware.
//
// Example:
//
//	a.Use(Log, Recover)
//	a.GET("/", Home, Auth) // execution order: Log -> Recover -> Auth -> Home
func (a *DefaultApp) Use(mw ...Middleware) {
	if len(mw) == 0 {
		return
	}
	a.middleware = append(a.middleware, mw...)
}

// globalSpecs converts a.middleware into middleware.Spec[Ctx] values, one
// per registered global middleware, in registration order.
func (a *DefaultApp) globalSpecs() []globalMiddlewareSpec {
	specs := make([]globalMiddlewareSpec, len(a.middleware))
	for i, mw := range a.middleware {
		specs[i] = globalMiddlewareSpec{
			Fn:       adaptMiddleware(mw),
			Priority: 0,
			Phase:    middleware.Pre,
		}
	}
	return specs
}

// adaptMiddleware lifts an app.Middleware into middleware.Middleware[Ctx].
// The underlying function types are identical (func(func(Ctx) error) func(Ctx) error);
// this exists purely so call sites read in terms of the generic package's
// vocabulary.
func adaptMiddleware(mw Middleware) middleware.Middleware[Ctx] {
	return func(next middleware.Handler[Ctx]) middleware.Handler[Ctx] {
		return middleware.Handler[Ctx](mw(Handler(next)))
	}
}

// ServeHTTP implements http.Handler for net/http compatibility.
// This creates a compatibility layer over the fasthttp-optimized core.
func (a *DefaultApp) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res := a.trie.Match(r.Method, r.URL.Path)
	c := a.pool.Get().(*ctx.DefaultContext)
	c.Reset(w, r, res.Params, routePattern(res), a)
	a.dispatch(c, res)
	c.Finish()
	a.pool.Put(c)
}

// ServeFastHTTP implements fasthttp.RequestHandler for maximum performance.
// This is the primary, optimized request handler.
func (a *DefaultApp) ServeFastHTTP(fctx *fasthttp.RequestCtx) {
	methodBytes := fctx.Method()
	pathBytes := fctx.Path()
	method := *(*string)(unsafe.Pointer(&methodBytes))
	path := *(*string)(unsafe.Pointer(&pathBytes))

	res := a.trie.Match(method, path)
	c := a.pool.Get().(*ctx.DefaultContext)
	c.ResetFastHTTP(fctx, res.Params, routePattern(res), a)
	a.dispatch(c, res)
	c.Finish()
	a.pool.Put(c)
}

// routePattern extracts the matched route's registered pattern, if any, for
// Ctx.Route().
func routePattern(res router.Resolution) string {
	if res.Route == nil {
		return ""
	}
	return res.Route.Pattern
}

// dispatch runs the resolved route (or the appropriate 400/404/405/OPTIONS
// fallback) against c.
func (a *DefaultApp) dispatch(c *ctx.DefaultContext, res router.Resolution) {
	switch {
	case res.MalformedPath:
		a.ErrorHandler()(c, catzerr.New(catzerr.KindMalformedRequest, "malformed request path"))
		return

	case res.SynthOptions:
		c.Header("Allow", joinAllowed(res.Allowed))
		if _, err := c.Send(http.StatusNoContent, "", nil); err != nil {
			a.ErrorHandler()(c, err)
		}
		return

	case res.Route != nil:
		if res.HeadFromGet {
			c.SuppressBody(true)
		}
		h := res.Route.Handler.(Handler)
		if err := h(c); err != nil {
			a.ErrorHandler()(c, err)
		}
		return

	case len(res.Allowed) > 0:
		c.Header("Allow", joinAllowed(res.Allowed))
		if err := a.MethodNotAllowedHandler()(c); err != nil {
			a.ErrorHandler()(c, err)
		}
		return

	default:
		if err := a.NotFoundHandler()(c); err != nil {
			a.ErrorHandler()(c, err)
		}
	}
}

func joinAllowed(allowed []string) string {
	out := ""
	for i, m := range allowed {
		if i > 0 {
			out += ", "
		}
		out += m
	}
	return out
}

// Configuration setters.
func (a *DefaultApp) SetErrorHandler(h ErrorHandler)       { a.OnError = h }
func (a *DefaultApp) SetNotFoundHandler(h Handler)         { a.NotFound = h }
func (a *DefaultApp) SetMethodNotAllowedHandler(h Handler) { a.MethodNA = h }

// Getters mirror the setters and are useful when holding App as an interface.
func (a *DefaultApp) ErrorHandler() ErrorHandler       { return a.OnError }
func (a *DefaultApp) NotFoundHandler() Handler         { return a.NotFound }
func (a *DefaultApp) MethodNotAllowedHandler() Handler { return a.MethodNA }

// Default handlers. Both return a *catzerr.Error rather than writing
// directly, so the configured ErrorHandler applies the same
// production/development formatting (spec.md §7) to router-produced
// failures as it does to handler-produced ones.
func defaultNotFoundHandler(c Ctx) error {
	return catzerr.New(catzerr.KindNotFound, "no route matches "+c.Method()+" request")
}

func defaultMethodNotAllowedHandler(c Ctx) error {
	return catzerr.New(catzerr.KindMethodNotAllowed, "method "+c.Method()+" not allowed")
}

// Net/HTTP compatibility methods for seamless integration

// HandleHTTP registers a standard net/http handler for the given method and path.
func (a *DefaultApp) HandleHTTP(method, path string, h http.Handler) {
	wrapper := func(c Ctx) error {
		if c.Request() != nil && c.ResponseWriter() != nil {
			h.ServeHTTP(c.ResponseWriter(), c.Request())
		}
		return nil
	}
	a.handle(method, path, wrapper)
}

// Mount mounts a net/http handler at the given path for all HTTP methods.
func (a *DefaultApp) Mount(path string, h http.Handler) {
	methods := []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodOptions, http.MethodHead,
	}
	for _, method := range methods {
		a.HandleHTTP(method, path, h)
	}
}

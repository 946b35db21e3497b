package main

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/catzilla-project/catzilla/app"
)

// registerExampleRoutes wires a few smoke-test endpoints, mirroring the
// teacher's cmd/benchmark and cmd/perf entry points (ping/json/health)
// plus a /metrics mount backed by internal/observability.
func registerExampleRoutes(a *app.DefaultApp) {
	a.GET("/ping", func(c app.Ctx) error {
		return c.String(http.StatusOK, "pong")
	})

	a.GET("/health", func(c app.Ctx) error {
		return c.JSON(map[string]any{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	a.GET("/metrics", func(c app.Ctx) error {
		// Rendered through an httptest.ResponseRecorder rather than
		// c.ResponseWriter() directly: both are nil under the fasthttp
		// transport, so promhttp's handler needs a transport-agnostic sink.
		rec := httptest.NewRecorder()
		a.Metrics().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		contentType := rec.Header().Get("Content-Type")
		_, err := c.Send(rec.Code, contentType, rec.Body.Bytes())
		return err
	})
}

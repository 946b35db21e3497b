package app

import (
	"net/http"
	"os"

	"github.com/catzilla-project/catzilla/internal/catzerr"
)

// debugEnabled reports whether APP_DEBUG is "1", "true", "True" or "TRUE", gating
// this package's default error formatting. internal/observability gates
// logging verbosity separately, on any non-empty APP_DEBUG value.
func debugEnabled() bool {
	switch os.Getenv("APP_DEBUG") {
	case "1", "true", "TRUE", "True":
		return true
	default:
		return false
	}
}

// defaultErrorHandler translates a handler/middleware error into an HTTP
// response, per spec.md §7's production/development switch:
//
//   - Production: minimal JSON {"error", "code"} — no paths, no traces.
//   - Development: JSON with kind, message, request path/method, and a
//     truncated stack trace.
//
// A *catzerr.Error carries its own Kind/status; any other error is treated
// as KindInternal/500. Grounded on
// _examples/other_examples/00f005ea_momaek-fox__engine-app.go.go's
// defaultErrorHandler, which extracts a status code from a typed *Error and
// falls back to 500 otherwise.
func defaultErrorHandler(c Ctx, err error) {
	if c.WroteHeader() {
		return
	}

	kind := catzerr.KindInternal
	status := http.StatusInternalServerError
	message := err.Error()

	if ce, ok := err.(*catzerr.Error); ok {
		kind = ce.Kind
		status = ce.Status()
		message = ce.Message
	}

	if !debugEnabled() {
		_ = c.Status(status).JSON(map[string]any{
			"error": message,
			"code":  status,
		})
		return
	}

	body := map[string]any{
		"kind":    kind.String(),
		"message": message,
		"path":    c.Path(),
		"method":  c.Method(),
	}
	if ce, ok := err.(*catzerr.Error); ok {
		if trace := ce.StackTrace(); trace != "" {
			body["trace"] = trace
		}
	}
	_ = c.Status(status).JSON(body)
}

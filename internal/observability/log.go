// Package observability implements the C11 ambient stack: the startup
// banner, category-gated structured logging, and Prometheus metrics, per
// spec.md §4.11.
package observability

import (
	"log/slog"
	"os"
	"sync"
)

// DebugEnvVar is the environment variable that, when set to any non-empty
// value, enables verbose structured logging, per spec.md §6.
const DebugEnvVar = "APP_DEBUG"

// DebugEnabled reports whether APP_DEBUG is set, the single gate spec.md
// §4.11 describes ("Production default is silent except errors").
func DebugEnabled() bool {
	return os.Getenv(DebugEnvVar) != ""
}

var (
	baseOnce sync.Once
	base     *slog.Logger
)

func baseLogger() *slog.Logger {
	baseOnce.Do(func() {
		level := slog.LevelError
		if DebugEnabled() {
			level = slog.LevelDebug
		}
		base = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	})
	return base
}

// SetBaseLogger overrides the logger category child loggers derive from;
// intended for tests and for apps that want a non-default slog.Handler
// (e.g. a different sink or format).
func SetBaseLogger(l *slog.Logger) {
	baseOnce.Do(func() {}) // ensure baseOnce is considered fired
	base = l
}

// Logger returns a *slog.Logger tagged with "category", per spec.md §4.11's
// category list (router, loop, middleware, cache, static, tasks). Every
// record carries a "category" attribute so a single sink can be filtered
// downstream.
func Logger(category string) *slog.Logger {
	return baseLogger().With(slog.String("category", category))
}

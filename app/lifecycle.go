package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/catzilla-project/catzilla/internal/observability"
	"github.com/valyala/fasthttp"
)

// ShutdownGracePeriod bounds how long Run waits for in-flight requests to
// drain after SIGINT/SIGTERM before forcing the listener closed.
const ShutdownGracePeriod = 15 * time.Second

// Run starts the fasthttp server on addr, freezes the route trie (no further
// AddRoute calls are possible once serving begins, per spec.md §5's
// immutable-after-startup policy), and blocks until SIGINT/SIGTERM or an
// unrecoverable listener error. On signal, it drains in-flight connections
// via fasthttp.Server.Shutdown(), bounded by ShutdownGracePeriod.
//
// Example:
//
//	a := app.New()
//	a.GET("/", func(c app.Ctx) error { return c.String(http.StatusOK, "ok") })
//	if err := a.Run(":8080"); err != nil {
//		log.Fatal(err)
//	}
func (a *DefaultApp) Run(addr string) error {
	a.trie.Freeze()

	a.fastServer = &fasthttp.Server{
		Handler:            a.ServeFastHTTP,
		Name:               "catzilla",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		MaxRequestBodySize: defaultMaxRequestBodySize,
	}

	a.printBanner(addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.fastServer.ListenAndServe(addr); err != nil {
			return fmt.Errorf("catzilla: listener failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		a.Logger().Info("shutdown signal received, draining connections", "grace", ShutdownGracePeriod)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownGracePeriod)
		defer cancel()
		return a.shutdownWithContext(shutdownCtx)
	})

	err := group.Wait()
	if err != nil && ctx.Err() != nil {
		// After SIGINT/SIGTERM, an error racing with the drain is expected
		// and not reported; without a signal, the listener error is returned.
		return nil
	}
	return err
}

// printBanner emits the one-shot startup summary to stdout, compact in
// production and box-drawn otherwise, per internal/observability.Banner.
func (a *DefaultApp) printBanner(addr string) {
	mounts := 0
	for _, group := range a.staticGroups {
		mounts += len(group)
	}

	observability.Banner(os.Stdout, observability.BannerInfo{
		Version:      Version,
		Addr:         addr,
		Workers:      runtime.GOMAXPROCS(0),
		Allocator:    a.Arenas.Alloc.Backend(),
		CacheL1:      true,
		CacheL2:      a.cacheL2Enabled,
		StaticMounts: mounts,
		Production:   a.Production,
		Colors:       !a.Production,
	})
}

// defaultMaxRequestBodySize is fasthttp's own default (4MB) made explicit.
// Run always uses it; the APP_MAX_BODY value that internal/config loads is
// not applied to the server.
const defaultMaxRequestBodySize = 4 * 1024 * 1024

// Shutdown gracefully stops the server outside of Run's signal-driven path —
// useful for tests and embedders that manage their own process lifecycle.
func (a *DefaultApp) Shutdown() error {
	return a.shutdownWithContext(context.Background())
}

func (a *DefaultApp) shutdownWithContext(ctx context.Context) error {
	defer a.taskExecutor.Shutdown()

	if a.fastServer == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- a.fastServer.Shutdown() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

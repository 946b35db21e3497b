package config

import (
	"github.com/catzilla-project/catzilla/internal/cache"

	"github.com/catzilla-project/catzilla/app"
)

// Apply pushes a loaded Config onto an already-constructed *app.DefaultApp,
// overriding the defaults New() picked before APP_ALLOCATOR/APP_CACHE_DIR
// were known. Call this once, before Run.
func Apply(a *app.DefaultApp, cfg *Config) {
	a.Production = cfg.Production

	if cfg.Allocator != "" && cfg.Allocator != "auto" {
		a.SetAllocator(cfg.Allocator)
	}

	if cfg.CacheDir != "" {
		a.SetCache(cache.New(cache.Config{
			L1Capacity: defaultStaticCacheCapacity,
			L2Root:     cfg.CacheDir,
		}))
	}
}

// defaultStaticCacheCapacity mirrors app.defaultStaticCacheCapacity; kept as
// a local constant since that one is unexported and config must not import
// app internals beyond its public surface.
const defaultStaticCacheCapacity = 4096

// Package config loads the runtime's ambient settings — allocator backend,
// cache roots, body-size limits, debug logging — from environment variables
// with CLI-flag overrides, per spec.md §6.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config is the runtime-core's ambient configuration, bound from
// environment variables (APP_* per spec.md §6) and optionally overridden by
// cmd/catzilla flags.
type Config struct {
	// Debug enables verbose structured logging (APP_DEBUG).
	Debug bool `mapstructure:"debug"`

	// Allocator selects the backing allocator: "auto", "thread-caching", or
	// "system" (APP_ALLOCATOR).
	Allocator string `mapstructure:"allocator"`

	// CacheDir is the L2 disk-cache root; empty disables the L2 tier
	// (APP_CACHE_DIR).
	CacheDir string `mapstructure:"cache_dir"`

	// MaxBody is the request body size limit in bytes read from
	// APP_MAX_BODY. Apply does not pass it to the app; the server's limit is
	// app's fixed defaultMaxRequestBodySize.
	MaxBody int64 `mapstructure:"max_body"`

	// Addr is the listen address, e.g. ":8080".
	Addr string `mapstructure:"addr"`

	// Workers is the background task pool's minimum worker count. Apply
	// does not pass it to the app; the pool keeps its own defaults.
	Workers int `mapstructure:"workers"`

	// Production gates the startup banner's verbosity and default log
	// level.
	Production bool `mapstructure:"production"`

	// MetricsPath is the path read for the metrics endpoint. Apply does not
	// use it; cmd/catzilla mounts Metrics().Handler() at /metrics.
	MetricsPath string `mapstructure:"metrics_path"`

	// ShutdownGrace is the graceful-drain window read from config. Apply
	// does not use it; Run drains for app.ShutdownGracePeriod.
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
}

// defaults mirrors spec.md §6's documented defaults (8 KiB request line, 32
// KiB headers, 16 MiB body — MaxBody here covers the body ceiling only; the
// request-line and header limits are not configured anywhere in this
// repository and are left to fasthttp's own defaults).
func defaults() Config {
	return Config{
		Debug:         false,
		Allocator:     "auto",
		CacheDir:      "",
		MaxBody:       16 * 1024 * 1024,
		Addr:          ":8080",
		Workers:       2,
		Production:    false,
		MetricsPath:   "/metrics",
		ShutdownGrace: 15 * time.Second,
	}
}

// Load builds a Config from environment variables prefixed APP_, layered
// over spec.md §6's documented defaults. viper's automatic env binding
// handles the APP_DEBUG/APP_ALLOCATOR/APP_CACHE_DIR/APP_MAX_BODY names
// directly; the remaining fields (addr, workers, production, metrics path,
// shutdown grace) are ambient additions this runtime needs beyond what
// spec.md's env var list names, bound the same way for consistency.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	d := defaults()
	v.SetDefault("debug", d.Debug)
	v.SetDefault("allocator", d.Allocator)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("max_body", d.MaxBody)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("production", d.Production)
	v.SetDefault("metrics_path", d.MetricsPath)
	v.SetDefault("shutdown_grace", d.ShutdownGrace)

	// viper's AutomaticEnv only resolves lookups that pass through Get; it
	// doesn't retroactively make Unmarshal see env vars for keys it hasn't
	// been told about, so each field needs an explicit BindEnv.
	for _, key := range []string{
		"debug", "allocator", "cache_dir", "max_body", "addr", "workers",
		"production", "metrics_path", "shutdown_grace",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := d
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

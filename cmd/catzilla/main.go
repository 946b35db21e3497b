// Command catzilla runs the Catzilla HTTP runtime core as a standalone
// server, useful for smoke-testing a deployment or running the example
// routes without an embedding Go program.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/catzilla-project/catzilla/app"
	"github.com/catzilla-project/catzilla/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catzilla",
		Short: "Catzilla HTTP runtime core",
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		addr      string
		workers   int
		mode      string
		allocator string
		cacheDir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("catzilla: loading config: %w", err)
			}

			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("allocator") {
				cfg.Allocator = allocator
			}
			if cmd.Flags().Changed("cache-dir") {
				cfg.CacheDir = cacheDir
			}
			if cmd.Flags().Changed("mode") {
				cfg.Production = mode == "production"
			}

			a := app.New()
			config.Apply(a, cfg)
			registerExampleRoutes(a)

			return a.Run(cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&workers, "workers", 2, "background task pool minimum worker count")
	cmd.Flags().StringVar(&mode, "mode", "development", "development|production")
	cmd.Flags().StringVar(&allocator, "allocator", "auto", "auto|thread-caching|system")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "L2 disk cache root (disabled if empty)")

	return cmd
}

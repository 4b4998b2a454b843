package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verleihernix/math-visualizer/internal/adapters/memory"
	"github.com/verleihernix/math-visualizer/internal/adapters/redis"
	httpAdapter "github.com/verleihernix/math-visualizer/internal/adapters/http"
	"github.com/verleihernix/math-visualizer/internal/cli"
	"github.com/verleihernix/math-visualizer/internal/config"
	"github.com/verleihernix/math-visualizer/pkg/observability"
	"github.com/verleihernix/math-visualizer/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves expression evaluation, sampling and PNG/PDF plots as a JSON/HTTP API, with Prometheus metrics at /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := loadSettings(cmd)
		slog.SetDefault(logger)
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		sc := cli.NewSignalContext(context.Background())
		defer sc.Cancel()

		cache, closeCache, err := newRenderCache(sc, cfg.Server.Cache)
		if err != nil {
			fmt.Printf("Error initializing render cache: %v\n", err)
			os.Exit(1)
		}
		defer closeCache()

		ttl, _ := cfg.Server.Cache.Duration()
		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(observability.NewMetrics()),
			httpAdapter.WithStepPolicy(cfg.Sampling),
			httpAdapter.WithCacheTTL(ttl),
		}
		if cache != nil {
			opts = append(opts, httpAdapter.WithCache(cache))
		}

		handler, err := httpAdapter.NewHandler(sc, opts...)
		if err != nil {
			fmt.Printf("Error initializing server: %v\n", err)
			os.Exit(1)
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting mathviz server", "addr", srv.Addr, "cache", cfg.Server.Cache.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case <-sc.Done():
			logger.Info("Start shutdown", "signal", sc.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			logger.Info("mathviz server stopped gracefully")
		}
	},
}

// newRenderCache builds the configured cache backend. A nil cache disables caching.
func newRenderCache(ctx context.Context, c config.CacheConfig) (ports.RenderCache, func(), error) {
	ttl, err := c.Duration()
	if err != nil {
		return nil, nil, err
	}

	switch c.Backend {
	case "redis":
		opts := []redis.Option{redis.WithTTL(ttl)}
		if c.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(c.Redis.Prefix))
		}
		rc := redis.New(c.Redis.Addr, c.Redis.Password, c.Redis.DB, opts...)
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", c.Redis.Addr, err)
		}
		return rc, func() { _ = rc.Close() }, nil
	case "none":
		return nil, func() {}, nil
	default:
		return memory.New(memory.WithMaxEntries(c.MaxEntries), memory.WithTTL(ttl)), func() {}, nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
}

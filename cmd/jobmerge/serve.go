package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobmerge/internal/httpapi"
	"github.com/amishk599/jobmerge/internal/model"
	"github.com/amishk599/jobmerge/internal/warmer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Serve the job search API; blocks until SIGINT/SIGTERM. Runs the cache warmer alongside when warmup.enabled is set.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
		"store", cfg.Store.Driver,
		"cache", cfg.Cache.Backend,
		"source_timeout", cfg.Sources.Timeout.String(),
		"warmup", cfg.Warmup.Enabled,
	)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	router := httpapi.NewRouter(
		httpapi.NewJobHandler(a.svc, logger),
		httpapi.NewHealthHandler(a.store, a.cache, cfg.Cache.Backend, cfg.Server.Environment),
		logger,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpapi.Serve(gctx, cfg.Server.Addr, router, logger)
	})
	if cfg.Warmup.Enabled {
		w := warmer.New(a.svc, cfg.Warmup.Schedule, []model.SearchRequest{model.NewSearchRequest()}, logger)
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}

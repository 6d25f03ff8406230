package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobmerge/internal/adapter"
	"github.com/amishk599/jobmerge/internal/aggregator"
	"github.com/amishk599/jobmerge/internal/cache"
	"github.com/amishk599/jobmerge/internal/config"
	"github.com/amishk599/jobmerge/internal/model"
	"github.com/amishk599/jobmerge/internal/ratelimit"
	"github.com/amishk599/jobmerge/internal/service"
	"github.com/amishk599/jobmerge/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobmerge",
	Short: "Merged job search over a local store and public job boards",
	Long:  "jobmerge aggregates jobs from its own store and external boards (Adzuna, RemoteOK, Remotive) behind one cached search API.",
	// Default to `serve` so that `jobmerge` with no args runs the API.
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBMERGE_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBMERGE_CONFIG env var > "./config.yaml".
// Without any file the built-in defaults are used.
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if path == "" {
		path = os.Getenv("JOBMERGE_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat("config.yaml"); errors.Is(err, os.ErrNotExist) {
			return config.LoadDefault()
		}
		path = "config.yaml"
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	return setupLoggerTo(os.Stdout, dbg)
}

func setupLoggerTo(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// app holds the wired collaborators shared by every command.
type app struct {
	cfg   *config.Config
	store store.Store
	cache cache.Cache
	svc   *service.Service

	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg}

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.Path, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, st.Close)

	c, err := buildCache(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.cache = c
	if rc, ok := c.(*cache.RedisCache); ok {
		a.closers = append(a.closers, rc.Close)
	}

	httpClient := &http.Client{Timeout: cfg.Sources.Timeout}
	sources := buildSources(cfg, httpClient, logger)
	agg := aggregator.New(st, sources, cfg.Store.MaxResults, logger)
	a.svc = service.New(agg, c, logger, nil)

	logger.Info("jobmerge wired",
		"store", cfg.Store.Driver,
		"cache", cfg.Cache.Backend,
		"sources", agg.Sources(),
	)
	return a, nil
}

func buildCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := cache.NewRedisCacheFromURL(cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	default:
		return cache.NewMemoryCache(), nil
	}
}

// buildSources wraps every enabled board so its failures degrade to an
// empty contribution bounded by the configured timeout.
func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.JobSource {
	src := cfg.Sources
	var fetchers []model.JobFetcher
	if src.Adzuna.Enabled {
		if src.Adzuna.AppID == "" || src.Adzuna.AppKey == "" {
			logger.Warn("adzuna credentials missing, source will contribute nothing")
		}
		fetchers = append(fetchers, adapter.NewAdzunaAdapter(adapter.AdzunaConfig{
			AppID:           src.Adzuna.AppID,
			AppKey:          src.Adzuna.AppKey,
			Country:         src.Adzuna.Country,
			DefaultQuery:    src.Adzuna.DefaultQuery,
			DefaultLocation: src.Adzuna.DefaultLocation,
			Limit:           src.Adzuna.Limit,
		}, httpClient))
	}
	if src.RemoteOK.Enabled {
		fetchers = append(fetchers, adapter.NewRemoteOKAdapter(src.RemoteOK.Limit, src.UserAgent, httpClient))
	}
	if src.Remotive.Enabled {
		fetchers = append(fetchers, adapter.NewRemotiveAdapter(src.Remotive.Limit, httpClient))
	}

	// The limiter wait counts toward the per-call timeout.
	limiter := ratelimit.NewSourceLimiter(src.MinDelay)
	sources := make([]model.JobSource, 0, len(fetchers))
	for _, f := range fetchers {
		sources = append(sources, adapter.Isolate(ratelimit.Wrap(f, limiter), src.Timeout, logger))
		logger.Debug("registered source", "source", f.Source(), "remote_only", f.RemoteOnly())
	}
	return sources
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobmerge.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Cache   CacheConfig
	Sources SourcesConfig
	Warmup  WarmupConfig
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	Environment string `yaml:"environment"`
}

// StoreConfig selects the persisted job store.
type StoreConfig struct {
	Driver     string `yaml:"driver"`      // "sqlite", "postgres" or "none"
	Path       string `yaml:"path"`        // sqlite file
	DSN        string `yaml:"dsn"`         // required if driver is "postgres"
	MaxResults int    `yaml:"max_results"` // rows read per aggregation
}

// CacheConfig selects the result cache backend.
type CacheConfig struct {
	Backend  string `yaml:"backend"`   // "memory" or "redis"
	RedisURL string `yaml:"redis_url"` // required if backend is "redis"
}

// SourcesConfig configures the upstream job boards.
type SourcesConfig struct {
	Timeout   time.Duration // per-call bound
	MinDelay  time.Duration // spacing between calls to the same source, 0 disables
	UserAgent string
	Adzuna    AdzunaConfig
	RemoteOK  BoardConfig
	Remotive  BoardConfig
}

// AdzunaConfig holds the credential-gated Adzuna settings. Missing
// credentials disable the source at request time rather than failing Load.
type AdzunaConfig struct {
	Enabled         bool   `yaml:"enabled"`
	AppID           string `yaml:"app_id"`
	AppKey          string `yaml:"app_key"`
	Country         string `yaml:"country"`
	DefaultQuery    string `yaml:"default_query"`
	DefaultLocation string `yaml:"default_location"`
	Limit           int    `yaml:"limit"`
}

type BoardConfig struct {
	Enabled bool `yaml:"enabled"`
	Limit   int  `yaml:"limit"`
}

// WarmupConfig controls the cron cache warmer.
type WarmupConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron spec or descriptor, e.g. "@every 25m"
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":5000", Environment: "development"},
		Store:  StoreConfig{Driver: "sqlite", Path: "jobs.db", MaxResults: 500},
		Cache:  CacheConfig{Backend: "memory"},
		Sources: SourcesConfig{
			Timeout:   5 * time.Second,
			UserAgent: "JobHunt Platform",
			Adzuna: AdzunaConfig{
				Enabled:         true,
				Country:         "in",
				DefaultQuery:    "developer",
				DefaultLocation: "india",
				Limit:           10,
			},
			RemoteOK: BoardConfig{Enabled: true, Limit: 5},
			Remotive: BoardConfig{Enabled: true, Limit: 5},
		},
		Warmup: WarmupConfig{Enabled: false, Schedule: "@every 25m"},
	}
}

// rawConfig is used for YAML unmarshaling (duration as string).
type rawConfig struct {
	Server  ServerConfig     `yaml:"server"`
	Store   StoreConfig      `yaml:"store"`
	Cache   CacheConfig      `yaml:"cache"`
	Sources rawSourcesConfig `yaml:"sources"`
	Warmup  WarmupConfig     `yaml:"warmup"`
}

type rawSourcesConfig struct {
	Timeout   string       `yaml:"timeout"`
	MinDelay  string       `yaml:"min_delay"`
	UserAgent string       `yaml:"user_agent"`
	Adzuna    AdzunaConfig `yaml:"adzuna"`
	RemoteOK  BoardConfig  `yaml:"remoteok"`
	Remotive  BoardConfig  `yaml:"remotive"`
}

// envOverrides are the deployment variables that win over the file.
type envOverrides struct {
	AdzunaAppID  string `env:"ADZUNA_APP_ID"`
	AdzunaAppKey string `env:"ADZUNA_APP_KEY"`
	RedisURL     string `env:"REDIS_URL"`
	DatabaseURL  string `env:"DATABASE_URL"`
	Port         string `env:"PORT"`
	Environment  string `env:"APP_ENV"`
}

// Load reads and parses the YAML config file at path on top of Default,
// applies environment overrides, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	def := Default()
	raw := rawConfig{
		Server: def.Server,
		Store:  def.Store,
		Cache:  def.Cache,
		Sources: rawSourcesConfig{
			Timeout:   def.Sources.Timeout.String(),
			MinDelay:  def.Sources.MinDelay.String(),
			UserAgent: def.Sources.UserAgent,
			Adzuna:    def.Sources.Adzuna,
			RemoteOK:  def.Sources.RemoteOK,
			Remotive:  def.Sources.Remotive,
		},
		Warmup: def.Warmup,
	}
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	timeout, err := time.ParseDuration(raw.Sources.Timeout)
	if err != nil {
		return nil, fmt.Errorf("parse sources.timeout %q: %w", raw.Sources.Timeout, err)
	}
	minDelay, err := time.ParseDuration(raw.Sources.MinDelay)
	if err != nil {
		return nil, fmt.Errorf("parse sources.min_delay %q: %w", raw.Sources.MinDelay, err)
	}

	cfg := &Config{
		Server: raw.Server,
		Store:  raw.Store,
		Cache:  raw.Cache,
		Sources: SourcesConfig{
			Timeout:   timeout,
			MinDelay:  minDelay,
			UserAgent: raw.Sources.UserAgent,
			Adzuna:    raw.Sources.Adzuna,
			RemoteOK:  raw.Sources.RemoteOK,
			Remotive:  raw.Sources.Remotive,
		},
		Warmup: raw.Warmup,
	}

	return finish(cfg)
}

// LoadDefault returns Default with environment overrides applied.
func LoadDefault() (*Config, error) {
	return finish(Default())
}

func finish(cfg *Config) (*Config, error) {
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("load .env file: %w", err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if o.AdzunaAppID != "" {
		cfg.Sources.Adzuna.AppID = o.AdzunaAppID
	}
	if o.AdzunaAppKey != "" {
		cfg.Sources.Adzuna.AppKey = o.AdzunaAppKey
	}
	if o.RedisURL != "" {
		cfg.Cache.RedisURL = o.RedisURL
	}
	if o.DatabaseURL != "" {
		cfg.Store.DSN = o.DatabaseURL
	}
	if o.Port != "" {
		cfg.Server.Addr = ":" + strings.TrimPrefix(o.Port, ":")
	}
	if o.Environment != "" {
		cfg.Server.Environment = o.Environment
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	switch cfg.Store.Driver {
	case "sqlite":
		if cfg.Store.Path == "" {
			return fmt.Errorf("store.path is required when driver is \"sqlite\"")
		}
	case "postgres":
		if cfg.Store.DSN == "" {
			return fmt.Errorf("store.dsn (or DATABASE_URL) is required when driver is \"postgres\"")
		}
	case "none":
	default:
		return fmt.Errorf("store.driver must be sqlite, postgres or none, got %q", cfg.Store.Driver)
	}
	if cfg.Store.MaxResults <= 0 {
		return fmt.Errorf("store.max_results must be positive, got %d", cfg.Store.MaxResults)
	}

	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if cfg.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url (or REDIS_URL) is required when backend is \"redis\"")
		}
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", cfg.Cache.Backend)
	}

	if cfg.Sources.Timeout <= 0 {
		return fmt.Errorf("sources.timeout must be positive, got %v", cfg.Sources.Timeout)
	}
	if cfg.Sources.MinDelay < 0 {
		return fmt.Errorf("sources.min_delay must not be negative, got %v", cfg.Sources.MinDelay)
	}
	if cfg.Sources.Adzuna.Limit <= 0 || cfg.Sources.RemoteOK.Limit <= 0 || cfg.Sources.Remotive.Limit <= 0 {
		return fmt.Errorf("sources.*.limit must be positive")
	}

	if cfg.Warmup.Enabled {
		if _, err := cron.ParseStandard(cfg.Warmup.Schedule); err != nil {
			return fmt.Errorf("warmup.schedule %q: %w", cfg.Warmup.Schedule, err)
		}
	}

	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ADZUNA_APP_ID", "ADZUNA_APP_KEY", "REDIS_URL", "DATABASE_URL", "PORT", "APP_ENV"} {
		t.Setenv(k, "")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  addr: ":8080"
store:
  driver: postgres
  dsn: postgres://jobs@localhost/jobs
  max_results: 200
cache:
  backend: redis
  redis_url: redis://localhost:6379/0
sources:
  timeout: 3s
  min_delay: 250ms
  adzuna:
    app_id: abc
    app_key: xyz
    country: gb
  remoteok:
    enabled: false
warmup:
  enabled: true
  schedule: "*/20 * * * *"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Driver != "postgres" || cfg.Store.MaxResults != 200 {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Sources.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Sources.Timeout)
	}
	if cfg.Sources.MinDelay != 250*time.Millisecond {
		t.Errorf("MinDelay = %v, want 250ms", cfg.Sources.MinDelay)
	}
	if cfg.Sources.Adzuna.Country != "gb" || cfg.Sources.Adzuna.AppID != "abc" {
		t.Errorf("Adzuna = %+v", cfg.Sources.Adzuna)
	}
	// untouched keys keep their defaults
	if !cfg.Sources.Adzuna.Enabled || cfg.Sources.Adzuna.Limit != 10 || cfg.Sources.Adzuna.DefaultQuery != "developer" {
		t.Errorf("Adzuna defaults lost: %+v", cfg.Sources.Adzuna)
	}
	if cfg.Sources.RemoteOK.Enabled {
		t.Error("RemoteOK should be disabled")
	}
	if cfg.Sources.RemoteOK.Limit != 5 || !cfg.Sources.Remotive.Enabled {
		t.Errorf("board defaults lost: %+v %+v", cfg.Sources.RemoteOK, cfg.Sources.Remotive)
	}
	if !cfg.Warmup.Enabled || cfg.Warmup.Schedule != "*/20 * * * *" {
		t.Errorf("Warmup = %+v", cfg.Warmup)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOBMERGE_TEST_KEY", "from-env")
	path := writeConfig(t, `
sources:
  adzuna:
    app_key: ${JOBMERGE_TEST_KEY}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sources.Adzuna.AppKey != "from-env" {
		t.Errorf("AppKey = %q, want from-env", cfg.Sources.Adzuna.AppKey)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADZUNA_APP_ID", "env-id")
	t.Setenv("ADZUNA_APP_KEY", "env-key")
	t.Setenv("REDIS_URL", "redis://cache:6379")
	t.Setenv("DATABASE_URL", "postgres://db/jobs")
	t.Setenv("PORT", "9000")

	path := writeConfig(t, `
sources:
  adzuna:
    app_id: file-id
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sources.Adzuna.AppID != "env-id" || cfg.Sources.Adzuna.AppKey != "env-key" {
		t.Errorf("Adzuna creds = %q/%q", cfg.Sources.Adzuna.AppID, cfg.Sources.Adzuna.AppKey)
	}
	if cfg.Cache.RedisURL != "redis://cache:6379" || cfg.Store.DSN != "postgres://db/jobs" {
		t.Errorf("urls = %q %q", cfg.Cache.RedisURL, cfg.Store.DSN)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Server.Addr)
	}
}

func TestLoadDefault(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Cache.Backend != "memory" || cfg.Sources.Timeout != 5*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [broken")
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown driver", "store:\n  driver: mongo\n", "store.driver"},
		{"postgres without dsn", "store:\n  driver: postgres\n", "store.dsn"},
		{"redis without url", "cache:\n  backend: redis\n", "cache.redis_url"},
		{"unknown backend", "cache:\n  backend: memcached\n", "cache.backend"},
		{"bad timeout", "sources:\n  timeout: soon\n", "sources.timeout"},
		{"zero timeout", "sources:\n  timeout: 0s\n", "sources.timeout"},
		{"bad min delay", "sources:\n  min_delay: often\n", "sources.min_delay"},
		{"negative min delay", "sources:\n  min_delay: -1s\n", "sources.min_delay"},
		{"zero limit", "sources:\n  remotive:\n    limit: 0\n", "limit"},
		{"bad schedule", "warmup:\n  enabled: true\n  schedule: whenever\n", "warmup.schedule"},
		{"zero max results", "store:\n  max_results: 0\n", "store.max_results"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load: expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("JOBMERGE_DOTENV_CHECK=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JOBMERGE_DOTENV_CHECK", "")
	os.Unsetenv("JOBMERGE_DOTENV_CHECK")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("JOBMERGE_DOTENV_CHECK"); got != "loaded" {
		t.Errorf("JOBMERGE_DOTENV_CHECK = %q, want loaded", got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

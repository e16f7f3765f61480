package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Postgres.Host != "localhost" {
		t.Errorf("expected default DB host localhost, got %q", cfg.Postgres.Host)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("expected default DB port 5432, got %d", cfg.Postgres.Port)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected default HTTP addr :8080, got %q", cfg.HTTP.Addr)
	}
	if cfg.Webhook.URL != "http://localhost:8080/webhook-test" {
		t.Errorf("unexpected default webhook URL %q", cfg.Webhook.URL)
	}
	if cfg.Executor.ProcessingDelay != 3*time.Second {
		t.Errorf("expected default processing delay 3s, got %v", cfg.Executor.ProcessingDelay)
	}
	if cfg.Cache.JobTTL != 30*time.Second {
		t.Errorf("expected default job TTL 30s, got %v", cfg.Cache.JobTTL)
	}
	if cfg.Observability.Metrics.IsEnabled() {
		t.Error("metrics should be disabled by default")
	}
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "15432")
	t.Setenv("WEBHOOK_URL", "  https://hooks.example.com/jobs  ")
	t.Setenv("EXECUTOR_PROCESSING_DELAY", "250ms")
	t.Setenv("REDIS_ENABLED", "false")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("expected DB host db.internal, got %q", cfg.Postgres.Host)
	}
	if cfg.Postgres.Port != 15432 {
		t.Errorf("expected DB port 15432, got %d", cfg.Postgres.Port)
	}
	if cfg.Webhook.URL != "https://hooks.example.com/jobs" {
		t.Errorf("expected trimmed webhook URL, got %q", cfg.Webhook.URL)
	}
	if cfg.Executor.ProcessingDelay != 250*time.Millisecond {
		t.Errorf("expected processing delay 250ms, got %v", cfg.Executor.ProcessingDelay)
	}
	if cfg.Redis.Enabled {
		t.Error("expected Redis disabled")
	}
}

func TestAppConfig_SanitizeGuardrails(t *testing.T) {
	cfg := AppConfig{
		Webhook:  WebhookConfig{Timeout: -1},
		Executor: ExecutorConfig{ProcessingDelay: -time.Second},
		Cache:    CacheConfig{JobTTL: 0},
		Observability: ObservabilityConfig{
			Metrics: ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   "},
		},
	}
	cfg.Sanitize()

	if cfg.Webhook.Timeout != 5*time.Second {
		t.Errorf("expected webhook timeout clamped to 5s, got %v", cfg.Webhook.Timeout)
	}
	if cfg.Executor.ProcessingDelay != 0 {
		t.Errorf("expected negative processing delay clamped to 0, got %v", cfg.Executor.ProcessingDelay)
	}
	if cfg.Cache.JobTTL != 30*time.Second {
		t.Errorf("expected job TTL clamped to 30s, got %v", cfg.Cache.JobTTL)
	}
	if cfg.Observability.Metrics.IsEnabled() {
		t.Error("metrics with blank statsd address should be disabled")
	}
	if cfg.HTTP.ShutdownTimeout != 15*time.Second {
		t.Errorf("expected shutdown timeout default 15s, got %v", cfg.HTTP.ShutdownTimeout)
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	cfg.Sanitize()

	if !cfg.IsDev {
		t.Error("expected NODE_ENV=development to enable dev mode")
	}
}

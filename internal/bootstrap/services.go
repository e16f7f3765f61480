package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jobrelay/jobrelay/config"
	"github.com/jobrelay/jobrelay/internal/core"
	"github.com/jobrelay/jobrelay/internal/data"
	"github.com/jobrelay/jobrelay/internal/notify"
	"github.com/jobrelay/jobrelay/internal/observability/statsd"
	"github.com/jobrelay/jobrelay/internal/service"
	"github.com/redis/go-redis/v9"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Jobs     *service.JobService
	Executor *service.Executor

	// MetricsSink is the shared statsd client, nil when metrics are disabled.
	MetricsSink *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildServices wires repositories, the webhook client, and services.
func BuildServices(deps ServiceDeps) (*ServiceContainer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metricsSink := buildMetricsSink(logger, deps.Config.Observability.Metrics)

	// Hand the sink to services through the interface; a nil *statsd.Client
	// must not become a non-nil statsd.Sink.
	var sink statsd.Sink
	if metricsSink != nil {
		sink = metricsSink
	}

	jobRepo := data.NewJobRepo(deps.DB, data.RepoConfig{Logger: logger})

	var cache core.CacheRepository
	if deps.RedisClient != nil {
		cache = data.NewRedisCacheRepo(deps.RedisClient)
	}

	jobs := service.MustNewJobService(service.JobServiceOptions{
		Repo:     jobRepo,
		Cache:    cache,
		CacheTTL: deps.Config.Cache.JobTTL,
		Logger:   logger,
		Metrics:  sink,
	})

	webhook, err := notify.NewWebhookClient(notify.Config{
		URL:     deps.Config.Webhook.URL,
		Timeout: deps.Config.Webhook.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create webhook client: %w", err)
	}

	executor := service.MustNewExecutor(service.ExecutorOptions{
		Repo:            jobRepo,
		Notifier:        webhook,
		Jobs:            jobs,
		ProcessingDelay: deps.Config.Executor.ProcessingDelay,
		Logger:          logger,
		Metrics:         sink,
	})

	return &ServiceContainer{
		Jobs:        jobs,
		Executor:    executor,
		MetricsSink: metricsSink,
	}, nil
}

func buildMetricsSink(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  "jobrelay",
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

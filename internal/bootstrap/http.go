package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/jobrelay/jobrelay/config"
	httpx "github.com/jobrelay/jobrelay/internal/http"
	"github.com/jobrelay/jobrelay/internal/service"
	"golang.org/x/sync/errgroup"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
		appCfg.Sanitize()
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Jobs:     cfg.Services.Jobs,
		Executor: cfg.Services.Executor,
		DB:       cfg.DB,
		Logger:   logger,
	})

	server := startServer(serverParams{
		Logger:  logger,
		Handler: handler,
		HTTP:    appCfg.HTTP,
	})

	return server
}

type serverParams struct {
	Logger  *slog.Logger
	Handler http.Handler
	HTTP    config.HTTPConfig
}

func startServer(p serverParams) *http.Server {
	addr := p.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      p.Handler,
		ReadTimeout:  p.HTTP.ReadTimeout,
		WriteTimeout: p.HTTP.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		p.Logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			p.Logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context  context.Context
	Server   *http.Server
	Executor *service.Executor
	Timeout  time.Duration
	Logger   *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server and drains
// in-flight background job processing.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(cfg.Context, timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(shutdownCtx)

	g.Go(func() error {
		return cfg.Server.Shutdown(gctx)
	})

	// Let detached job goroutines finish so completions and webhook
	// outcomes are not lost on restart.
	if cfg.Executor != nil {
		g.Go(func() error {
			if err := cfg.Executor.Wait(gctx); err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Warn("job drain incomplete at shutdown", "error", err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}

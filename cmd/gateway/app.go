package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"agentic/gateway/pkg/audit"
	"agentic/gateway/pkg/chat"
	"agentic/gateway/pkg/config"
	"agentic/gateway/pkg/providerfactory"
	"agentic/gateway/pkg/providers"
	"agentic/gateway/pkg/server"
	"agentic/gateway/pkg/session"
	"agentic/gateway/pkg/telemetry/health"
	"agentic/gateway/pkg/telemetry/logging"
	"agentic/gateway/pkg/telemetry/metrics"
	"agentic/gateway/pkg/telemetry/tracing"
)

// healthCheckTimeout bounds each readiness check.
const healthCheckTimeout = 5 * time.Second

// app owns every long-lived component of a running gateway.
type app struct {
	logger *logging.Logger

	store     *session.Store
	sweeper   *session.Sweeper
	factory   *providerfactory.Factory
	collector *metrics.Collector
	tracer    *tracing.Tracer

	auditStore audit.Store
	recorder   *audit.Recorder
	scheduler  *audit.Scheduler

	server *server.Server
}

func newLogger(cfg config.LoggingConfig, w io.Writer) (*logging.Logger, error) {
	return logging.New(logging.Config{
		Level:          cfg.Level,
		Format:         cfg.Format,
		AddSource:      cfg.AddSource,
		RedactPII:      cfg.RedactPII,
		RedactPatterns: cfg.RedactPatterns,
		Writer:         w,
	})
}

func providerConfig(cfg config.ProviderConfig) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:       cfg.Type,
		Type:       cfg.Type,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		MaxTokens:  cfg.MaxTokens,
		APIVersion: cfg.APIVersion,
		Timeout:    cfg.Timeout,
	}
}

// newApp builds the gateway from cfg. Nothing runs until start is called;
// close releases whatever was built, even after a partial failure.
func newApp(ctx context.Context, cfg *config.Config, logger *logging.Logger) (_ *app, err error) {
	a := &app{logger: logger}
	defer func() {
		if err != nil {
			_ = a.close()
		}
	}()

	log := logger.Slog()

	a.collector = metrics.NewCollector(cfg.Telemetry.Metrics, prometheus.NewRegistry())
	a.store = session.NewStore(
		session.WithIdleTimeout(cfg.Sessions.IdleTimeout),
		session.WithObserver(a.collector),
		session.WithLogger(log),
	)
	a.sweeper = session.NewSweeper(a.store, cfg.Sessions.SweepInterval)

	if a.factory, err = providerfactory.New(providerConfig(cfg.Provider)); err != nil {
		return nil, fmt.Errorf("failed to create provider factory: %w", err)
	}

	if a.tracer, err = tracing.New(ctx, cfg.Telemetry.Tracing, Version); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	checker := health.New(healthCheckTimeout)
	checker.RegisterCheck("provider", health.ProviderCheck(a.factory.Health))
	checker.SetDetails(func() map[string]any {
		return map[string]any{"sessions": a.store.Len()}
	})

	opts := []chat.Option{
		chat.WithMetrics(a.collector),
		chat.WithTracer(a.tracer),
		chat.WithLogger(log),
	}

	if cfg.Audit.Enabled {
		if a.auditStore, err = audit.Open(cfg.Audit); err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		a.recorder = audit.NewRecorder(a.auditStore, audit.RecorderConfig{})
		a.scheduler = audit.NewScheduler(
			audit.NewPruner(a.auditStore, audit.RetentionConfig{RetentionDays: cfg.Audit.RetentionDays}),
			cfg.Audit.PruneSchedule,
		)
		checker.RegisterCheck("audit", health.PingCheck(a.auditStore))
		opts = append(opts, chat.WithRecorder(a.recorder))
	}

	a.server = server.NewServer(cfg, server.Dependencies{
		Sessions:  a.store,
		Chat:      chat.NewService(a.store, a.factory, opts...),
		Audit:     a.auditStore,
		Metrics:   a.collector,
		Health:    checker,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})

	return a, nil
}

// start launches the background jobs. The HTTP server is started by the
// caller.
func (a *app) start(ctx context.Context) error {
	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session sweeper: %w", err)
	}
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start audit retention: %w", err)
		}
	}
	return nil
}

// applyConfig applies the settings that can change without a restart.
func (a *app) applyConfig(cfg *config.Config) {
	log := a.logger.Slog()
	if err := a.logger.SetLevel(cfg.Telemetry.Logging.Level); err != nil {
		log.Warn("ignoring log level from reloaded config", "error", err)
	}
	a.store.SetIdleTimeout(cfg.Sessions.IdleTimeout)
	log.Info("applied reloaded config",
		"log_level", cfg.Telemetry.Logging.Level,
		"session_idle_timeout", cfg.Sessions.IdleTimeout.String(),
	)
}

// close stops background jobs and flushes the audit trail. Pending audit
// records are written before the store is closed.
func (a *app) close() error {
	var errs []error

	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.recorder != nil {
		errs = append(errs, a.recorder.Close())
	}
	if a.auditStore != nil {
		errs = append(errs, a.auditStore.Close())
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.tracer.Shutdown(ctx))
		cancel()
	}
	if a.factory != nil {
		errs = append(errs, a.factory.Close())
	}

	return errors.Join(errs...)
}

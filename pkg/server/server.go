// Package server provides the gateway's HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"agentic/gateway/pkg/audit"
	"agentic/gateway/pkg/config"
	"agentic/gateway/pkg/proxy/handlers"
	"agentic/gateway/pkg/proxy/middleware"
	"agentic/gateway/pkg/telemetry/health"
	"agentic/gateway/pkg/telemetry/metrics"
	"agentic/gateway/pkg/telemetry/tracing"
)

// Dependencies are the components the routes are served from.
type Dependencies struct {
	// Sessions backs the session and history routes.
	Sessions handlers.SessionStore

	// Chat runs exchanges for /api/chat and the stream routes.
	Chat handlers.ChatService

	// Audit backs /admin/exchanges. Nil disables the route.
	Audit audit.Store

	// Metrics instruments every route and serves the metrics endpoint when
	// enabled. Nil disables both.
	Metrics *metrics.Collector

	// Health serves /health and /ready. Nil uses a checker with no checks.
	Health *health.Checker

	Version   string
	Commit    string
	BuildTime string
}

// Server is the gateway's HTTP server.
type Server struct {
	config       config.ServerConfig
	relayConfig  config.RelayConfig
	metricsPath  string
	deps         Dependencies
	httpServer   *http.Server
	listener     net.Listener
	shutdownOnce sync.Once
	mu           sync.RWMutex
	started      bool
	isRunning    bool
	ready        chan struct{}
}

// NewServer creates a server from the gateway configuration.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	if deps.Health == nil {
		deps.Health = health.New(0)
	}
	metricsPath := ""
	if cfg.Telemetry.Metrics.Enabled {
		metricsPath = cfg.Telemetry.Metrics.Path
	}
	return &Server{
		config:      cfg.Server,
		relayConfig: cfg.Relay,
		metricsPath: metricsPath,
		deps:        deps,
		ready:       make(chan struct{}),
	}
}

// Start listens and serves until ctx is cancelled or the listener fails.
// Cancellation triggers a graceful shutdown bounded by ShutdownTimeout.
// A Server can be started once.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server has already been started")
	}
	s.started = true

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.setupRoutes(),
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}
	s.isRunning = true
	s.mu.Unlock()
	close(s.ready)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Addr returns the bound listen address once Start has begun serving. It
// blocks until then or until ctx is done.
func (s *Server) Addr(ctx context.Context) (string, error) {
	select {
	case <-s.ready:
		return s.listener.Addr().String(), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown gracefully shuts down the server. In-flight streams are given
// until ShutdownTimeout to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		slog.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
//
// Non-streaming routes get the request timeout. The stream routes do not;
// they end when the provider finishes or the client goes away.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	limits := handlers.Limits{
		MaxBodyBytes: s.config.MaxBodyBytes,
		WriteTimeout: s.relayConfig.WriteTimeout,
	}
	bounded := middleware.TimeoutMiddleware(s.config.RequestTimeout)
	route := func(pattern, name string, h http.Handler) {
		mux.Handle(pattern, s.deps.Metrics.InstrumentHandler(name, h))
	}

	route("/api/session", "session", bounded(handlers.NewSessionHandler(s.deps.Sessions, limits)))
	route("/api/chat", "chat", bounded(handlers.NewChatHandler(s.deps.Chat, limits)))
	route("/api/history", "history", bounded(handlers.NewHistoryHandler(s.deps.Sessions)))
	route("/api/stream", "stream", handlers.NewStreamHandler(s.deps.Chat, limits))
	if s.relayConfig.WebSocketEnabled {
		route("/api/stream/ws", "stream_ws",
			handlers.NewWebSocketHandler(s.deps.Chat, s.deps.Sessions, limits, s.config.CORSOrigins))
	}
	route("/admin/exchanges", "exchanges", bounded(handlers.NewExchangesHandler(s.deps.Audit)))
	route("/", "docs", handlers.NewDocsHandler())

	health.Register(mux, s.deps.Health, s.deps.Version, s.deps.Commit, s.deps.BuildTime)
	if s.metricsPath != "" && s.deps.Metrics != nil {
		mux.Handle("GET "+s.metricsPath, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(middleware.NewCORSConfig(s.config.CORSOrigins))(handler)
	handler = tracing.HTTPMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

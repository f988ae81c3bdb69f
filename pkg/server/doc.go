// Package server ties the gateway's routes, middleware, health endpoints,
// and metrics endpoint into one http.Server with graceful shutdown.
//
// # Basic Usage
//
//	srv := server.NewServer(cfg, server.Dependencies{
//	    Sessions: store,
//	    Chat:     chatService,
//	    Audit:    auditStore,
//	    Metrics:  collector,
//	    Health:   checker,
//	    Version:  version,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled, then drains in-flight requests for up
// to server.shutdown_timeout. Signal handling belongs to the caller.
//
// # Routes
//
//	POST/DELETE /api/session   GET /api/history   POST /api/chat
//	POST /api/stream           GET /api/stream/ws (relay.websocket_enabled)
//	GET /admin/exchanges       GET /health  GET /ready  GET /version
//	GET /metrics (telemetry.metrics.enabled)     GET /  docs page
//
// Every route is counted by the metrics collector under a fixed route label.
// server.request_timeout applies to the non-streaming routes only.
package server

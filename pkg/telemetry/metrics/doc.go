// Package metrics provides Prometheus metrics for the gateway.
//
// # Metrics Categories
//
//   - Session metrics: live, created, deleted and expired sessions
//   - Exchange metrics: exchanges by outcome, durations, tokens and frames
//   - Provider metrics: provider health, latency and error rates
//   - HTTP metrics: requests by route, method and status code
//
// # Usage
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//
//	// Sessions report through the store's observer hook.
//	store := session.NewStore(session.WithObserver(collector))
//
//	// Expose the registry.
//	mux.Handle("/metrics", collector.Handler())
//
// All metric names are prefixed with the configured namespace, "gateway" by
// default. A Collector built from a disabled configuration, or a nil
// *Collector, records nothing.
package metrics

package metrics

import (
	"sync"
	"time"

	"agentic/gateway/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// maxLabelSets caps the number of distinct provider/model label sets.
const maxLabelSets = 1000

// Collector owns the gateway's Prometheus metrics. It manages registration
// and exposes one method per event the gateway records.
//
// A nil *Collector is valid and records nothing, as is a collector built
// from a disabled configuration.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	sessionMetrics  *SessionMetrics
	exchangeMetrics *ExchangeMetrics
	providerMetrics *ProviderMetrics
	httpMetrics     *HTTPMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering its metrics with registry.
// If registry is nil, a fresh registry is created.
//
// Example:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(maxLabelSets),
	}

	c.sessionMetrics = NewSessionMetrics(cfg.Namespace, registry)
	c.exchangeMetrics = NewExchangeMetrics(cfg.Namespace, registry)
	c.providerMetrics = NewProviderMetrics(cfg.Namespace, registry)
	c.httpMetrics = NewHTTPMetrics(cfg.Namespace, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// SessionCreated records a new session.
func (c *Collector) SessionCreated() {
	if !c.enabled() {
		return
	}
	c.sessionMetrics.created.Inc()
}

// SessionDeleted records an explicit session deletion.
func (c *Collector) SessionDeleted() {
	if !c.enabled() {
		return
	}
	c.sessionMetrics.deleted.Inc()
}

// SessionsExpired records sessions removed by the idle sweep.
func (c *Collector) SessionsExpired(n int) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.sessionMetrics.expired.Add(float64(n))
}

// SessionsActive sets the number of live sessions.
func (c *Collector) SessionsActive(n int) {
	if !c.enabled() {
		return
	}
	c.sessionMetrics.active.Set(float64(n))
}

// RecordExchange records a finished chat exchange.
//
// Parameters:
//   - provider, model: the backend that served it
//   - transport: "http", "sse" or "websocket"
//   - outcome: the relay outcome, or "completed"/"provider_error"/
//     "transport_error" for non-streaming exchanges
//   - duration: wall time from request to last byte
func (c *Collector) RecordExchange(provider, model, transport, outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	model = c.limitModel(provider, model)
	c.exchangeMetrics.RecordExchange(provider, model, transport, outcome, duration)
}

// RecordTokens records token usage reported by the provider.
func (c *Collector) RecordTokens(provider, model string, inputTokens, outputTokens int) {
	if !c.enabled() {
		return
	}
	model = c.limitModel(provider, model)
	c.exchangeMetrics.RecordTokens(provider, model, inputTokens, outputTokens)
}

// RecordFrame records one frame written to a client stream.
func (c *Collector) RecordFrame(frameType string) {
	if !c.enabled() {
		return
	}
	c.exchangeMetrics.frames.WithLabelValues(frameType).Inc()
}

// RecordProviderLatency records time to the provider's response headers.
func (c *Collector) RecordProviderLatency(provider, model string, latency time.Duration) {
	if !c.enabled() {
		return
	}
	model = c.limitModel(provider, model)
	c.providerMetrics.RecordRequest(provider, model)
	c.providerMetrics.RecordLatency(provider, model, latency.Seconds())
}

// RecordProviderError records a failed provider call.
//
// Common error types: "auth", "rate_limit", "timeout", "provider",
// "transport", "parse", "stream".
func (c *Collector) RecordProviderError(provider, errorType string) {
	if !c.enabled() {
		return
	}
	c.providerMetrics.RecordError(provider, errorType)
}

// UpdateProviderHealth updates the health gauge of a provider.
func (c *Collector) UpdateProviderHealth(provider string, healthy bool) {
	if !c.enabled() {
		return
	}
	c.providerMetrics.UpdateHealth(provider, healthy)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// limitModel folds models past the cardinality limit into "other".
func (c *Collector) limitModel(provider, model string) string {
	if !c.cardinalityLimiter.Allow(provider + ":" + model) {
		return "other"
	}
	return model
}

// CardinalityLimiter bounds the number of unique label combinations.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter allowing maxCardinality label sets.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is already known or still fits under the
// limit, and remembers it if so.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}

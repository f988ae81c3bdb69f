package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
//
//	mux.Handle("/metrics", collector.Handler())
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}

// HTTPMetrics tracks requests served by the gateway's own HTTP surface.
//
// Metrics:
//   - gateway_http_requests_total: Requests by route, method and status code
//   - gateway_http_request_duration_seconds: Time until the handler returns
//   - gateway_http_requests_in_flight: Requests currently being served
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewHTTPMetrics creates and registers HTTP server metrics.
func NewHTTPMetrics(namespace string, registry *prometheus.Registry) *HTTPMetrics {
	hm := &HTTPMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"route", "method", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds, including streams",
				Buckets:   exchangeDurationBuckets,
			},
			[]string{"route", "method", "code"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		}),
	}

	registry.MustRegister(hm.requests, hm.duration, hm.inFlight)
	return hm
}

// InstrumentHandler wraps next with request count, duration and in-flight
// metrics labelled by route. The wrapped ResponseWriter keeps Flusher and
// Hijacker, so streaming and WebSocket handlers work unchanged.
func (c *Collector) InstrumentHandler(route string, next http.Handler) http.Handler {
	if !c.enabled() {
		return next
	}
	labels := prometheus.Labels{"route": route}
	hm := c.httpMetrics
	return promhttp.InstrumentHandlerInFlight(hm.inFlight,
		promhttp.InstrumentHandlerDuration(hm.duration.MustCurryWith(labels),
			promhttp.InstrumentHandlerCounter(hm.requests.MustCurryWith(labels), next),
		),
	)
}

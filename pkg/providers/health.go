package providers

import (
	"log/slog"
	"sync"
	"time"
)

// unhealthyThreshold is the number of consecutive failures after which a
// provider is reported unhealthy.
const unhealthyThreshold = 3

// HealthTracker records request outcomes for one provider endpoint. It is
// shared by every per-session adapter built by the same factory.
type HealthTracker struct {
	name   string
	mu     sync.RWMutex
	health Health
}

// NewHealthTracker returns a tracker that starts out healthy.
func NewHealthTracker(name string) *HealthTracker {
	now := time.Now()
	return &HealthTracker{
		name: name,
		health: Health{
			Healthy:               true,
			LastCheck:             now,
			LastSuccessfulRequest: now,
		},
	}
}

// RecordSuccess records a successful round trip.
func (h *HealthTracker) RecordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.health.TotalRequests++
	h.health.Healthy = true
	h.health.ConsecutiveFailures = 0
	h.health.LastError = ""
	h.health.LastCheck = now
	h.health.LastSuccessfulRequest = now
}

// RecordFailure records a failure that reflects on the provider rather than
// on the caller's credential.
func (h *HealthTracker) RecordFailure(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.health.TotalRequests++
	h.health.FailedRequests++
	h.health.ConsecutiveFailures++
	h.health.LastCheck = time.Now()
	if err != nil {
		h.health.LastError = err.Error()
	}

	if h.health.ConsecutiveFailures >= unhealthyThreshold && h.health.Healthy {
		h.health.Healthy = false
		slog.Warn("provider marked unhealthy",
			"provider", h.name,
			"consecutive_failures", h.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// RecordRejected counts a request the provider refused for caller-specific
// reasons, such as a bad key. It does not affect health.
func (h *HealthTracker) RecordRejected() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.health.TotalRequests++
	h.health.FailedRequests++
	h.health.LastCheck = time.Now()
}

// Snapshot returns the current health.
func (h *HealthTracker) Snapshot() Health {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.health
}

// IsHealthy reports the current health flag.
func (h *HealthTracker) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.health.Healthy
}

package health

import (
	"context"
	"fmt"

	"agentic/gateway/pkg/providers"
)

// Pinger is implemented by stores that can verify their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck checks a store by pinging it.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}

// ProviderCheck reports the provider unhealthy after repeated transport or
// server failures, as tracked by the provider's health record.
func ProviderCheck(snapshot func() providers.Health) CheckFunc {
	return func(ctx context.Context) error {
		h := snapshot()
		if h.Healthy {
			return nil
		}
		return fmt.Errorf("%d consecutive failures, last: %s", h.ConsecutiveFailures, h.LastError)
	}
}

// Package health provides liveness, readiness and version endpoints.
//
// # Endpoints
//
//   - /health: Liveness probe. Always 200 while the process serves requests.
//   - /ready: Readiness probe. 503 when any registered check fails.
//   - /version: Build information.
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("audit", health.PingCheck(auditStore))
//	checker.RegisterCheck("provider", health.ProviderCheck(factory.Health))
//	checker.SetDetails(func() map[string]any {
//	    return map[string]any{"sessions": store.Len()}
//	})
//	health.Register(mux, checker, version, commit, buildTime)
//
// Checks run concurrently, each bounded by the checker's timeout. A check
// that panics is reported unhealthy.
package health

// Package tracing provides OpenTelemetry tracing for the gateway.
//
// Spans are exported over OTLP/gRPC. Each chat exchange gets a span
// ("chat.send" or "chat.stream") with a child span for the provider call.
// Incoming W3C traceparent headers are honored, and the trace context is
// forwarded to the provider.
//
// # Usage
//
//	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "chat.stream")
//	defer span.End()
//	tracing.SetProviderAttributes(span, "anthropic", "claude-sonnet-4-5")
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    insecure: true
//	    sample_ratio: 0.1
//
// With tracing disabled every span is a no-op.
package tracing

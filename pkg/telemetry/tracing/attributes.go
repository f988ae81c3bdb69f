package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on gateway spans.
const (
	AttrSessionID = "gateway.session_id"
	AttrRequestID = "gateway.request_id"
	AttrTransport = "gateway.transport"

	AttrProvider = "gateway.provider"
	AttrModel    = "gateway.model"

	AttrOutcome    = "gateway.outcome"
	AttrStopReason = "gateway.stop_reason"
	AttrFrames     = "gateway.frames"
	AttrHistoryLen = "gateway.history_len"

	AttrTokensInput  = "gateway.tokens.input"
	AttrTokensOutput = "gateway.tokens.output"

	AttrErrorType = "gateway.error.type"
)

// SetExchangeAttributes sets the attributes identifying a chat exchange.
// The session ID is an opaque bearer token, so only its prefix is recorded.
func SetExchangeAttributes(span trace.Span, sessionID, requestID, transport string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrSessionID, shortID(sessionID)),
		attribute.String(AttrTransport, transport),
	}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	span.SetAttributes(attrs...)
}

// SetProviderAttributes sets provider-related attributes on a span.
func SetProviderAttributes(span trace.Span, provider, model string) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
	)
}

// SetTokenAttributes sets token counts when the provider reported them.
func SetTokenAttributes(span trace.Span, inputTokens, outputTokens int) {
	if inputTokens == 0 && outputTokens == 0 {
		return
	}
	span.SetAttributes(
		attribute.Int(AttrTokensInput, inputTokens),
		attribute.Int(AttrTokensOutput, outputTokens),
	)
}

// SetOutcomeAttributes records how a streamed exchange ended.
func SetOutcomeAttributes(span trace.Span, outcome, stopReason string, frames int) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrOutcome, outcome),
		attribute.Int(AttrFrames, frames),
	}
	if stopReason != "" {
		attrs = append(attrs, attribute.String(AttrStopReason, stopReason))
	}
	span.SetAttributes(attrs...)
}

// SetErrorAttributes records err on the span and marks it failed.
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(attribute.String(AttrErrorType, errorType))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

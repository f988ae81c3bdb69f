package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agentic/gateway/pkg/audit"
	"agentic/gateway/pkg/providers"
	"agentic/gateway/pkg/relay"
	"agentic/gateway/pkg/session"
	"agentic/gateway/pkg/telemetry/logging"
	"agentic/gateway/pkg/telemetry/metrics"
	"agentic/gateway/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProviderSource builds a provider adapter bound to a session's credential.
// *providerfactory.Factory implements it.
type ProviderSource interface {
	ForCredential(cred session.Credential) (providers.Provider, error)
	Name() string
	Model() string
	Health() providers.Health
}

// SendRequest is one user message for a session.
type SendRequest struct {
	SessionID    string
	Message      string
	SystemPrompt string

	// RequestID and Transport label the exchange in logs and the audit trail.
	RequestID string
	Transport string
}

// SendResult is the reply to a non-streaming exchange.
type SendResult struct {
	Response string
	History  []session.Turn
}

// SinkFactory opens the client sink once the exchange is ready to stream.
// For SSE this commits the HTTP status, so it runs only after every
// pre-stream check has passed.
type SinkFactory func() (relay.Sink, error)

// Option configures a Service.
type Option func(*Service)

// WithRecorder enables the exchange audit trail.
func WithRecorder(r *audit.Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Service) {
		s.metrics = c
	}
}

// WithTracer sets the tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithLogger sets the service's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service orchestrates chat exchanges.
type Service struct {
	store    *session.Store
	source   ProviderSource
	recorder *audit.Recorder
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	logger   *slog.Logger
}

// NewService creates a Service over store and source.
func NewService(store *session.Store, source ProviderSource, opts ...Option) *Service {
	s := &Service{
		store:  store,
		source: source,
		logger: slog.Default().With("component", "chat"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// exchange holds what both paths resolve before calling the provider.
type exchange struct {
	req      SendRequest
	provider providers.Provider
	request  *providers.Request
	started  time.Time
}

// begin checks the session, builds its provider and appends the user turn.
// Errors returned here leave the conversation untouched.
func (s *Service) begin(ctx context.Context, req SendRequest) (*exchange, error) {
	if req.SessionID == "" || req.Message == "" {
		return nil, &providers.ValidationError{Field: "sessionId", Message: "Session ID and message are required"}
	}

	sess, err := s.store.Get(req.SessionID)
	if err != nil {
		return nil, err
	}

	provider, err := s.source.ForCredential(sess.Credential())
	if err != nil {
		return nil, fmt.Errorf("failed to build provider: %w", err)
	}

	if err := s.store.AppendTurn(req.SessionID, session.UserTurn(req.Message)); err != nil {
		return nil, err
	}

	// Re-read after the append so history ends with this user turn even if
	// another request appended in between.
	sess, err = s.store.Get(req.SessionID)
	if err != nil {
		return nil, err
	}

	return &exchange{
		req:      req,
		provider: provider,
		request: &providers.Request{
			History: sess.History(),
			System:  req.SystemPrompt,
		},
		started: time.Now(),
	}, nil
}

// Send runs a non-streaming exchange. On success the reply has been
// appended to the session and the returned history includes it.
func (s *Service) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	if req.Transport == "" {
		req.Transport = audit.TransportHTTP
	}
	ctx = logging.WithSessionID(logging.WithProvider(ctx, s.source.Name()), req.SessionID)

	ctx, span := s.tracer.Start(ctx, "chat.send")
	defer span.End()
	tracing.SetExchangeAttributes(span, req.SessionID, req.RequestID, req.Transport)
	tracing.SetProviderAttributes(span, s.source.Name(), s.source.Model())

	ex, err := s.begin(ctx, req)
	if err != nil {
		tracing.SetErrorAttributes(span, err, errorType(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrHistoryLen, len(ex.request.History)))

	pctx, pspan := s.tracer.Start(ctx, "provider.complete")
	providerStart := time.Now()
	completion, err := ex.provider.Complete(pctx, ex.request)
	providerLatency := time.Since(providerStart)
	if err != nil {
		tracing.SetErrorAttributes(pspan, err, errorType(err))
		pspan.End()
		tracing.SetErrorAttributes(span, err, errorType(err))

		s.metrics.RecordProviderError(s.source.Name(), errorType(err))
		s.finish(ctx, ex, outcomeFor(err), "", 0, 0, nil, err)
		s.logger.ErrorContext(ctx, "provider request failed",
			"request_id", req.RequestID,
			"error", err,
			"provider_latency_ms", providerLatency.Milliseconds(),
		)
		return nil, err
	}
	tracing.SetTokenAttributes(pspan, completion.Usage.InputTokens, completion.Usage.OutputTokens)
	pspan.End()
	s.metrics.RecordProviderLatency(s.source.Name(), s.model(completion.Model), providerLatency)

	if err := s.store.AppendTurn(req.SessionID, session.AssistantTurn(completion.Content)); err != nil {
		tracing.SetErrorAttributes(span, err, errorType(err))
		outcome := relay.OutcomeTransportError
		if errors.Is(err, session.ErrSessionNotFound) {
			outcome = relay.OutcomeSessionGone
		}
		s.finish(ctx, ex, outcome, completion.StopReason, len(completion.Content), 0, completion, err)
		return nil, err
	}

	sess, err := s.store.Get(req.SessionID)
	if err != nil {
		return nil, err
	}

	tracing.SetOutcomeAttributes(span, string(relay.OutcomeCompleted), completion.StopReason, 0)
	tracing.SetStatus(span, nil)
	s.finish(ctx, ex, relay.OutcomeCompleted, completion.StopReason, len(completion.Content), 0, completion, nil)

	s.logger.InfoContext(ctx, "chat completion successful",
		"request_id", req.RequestID,
		"model", completion.Model,
		"stop_reason", completion.StopReason,
		"input_tokens", completion.Usage.InputTokens,
		"output_tokens", completion.Usage.OutputTokens,
		"provider_latency_ms", providerLatency.Milliseconds(),
		"total_latency_ms", time.Since(ex.started).Milliseconds(),
	)

	return &SendResult{
		Response: completion.Content,
		History:  sess.History(),
	}, nil
}

// Stream runs a streaming exchange. An error return means nothing was
// streamed and the caller may still answer with an HTTP status. Once the
// sink is open every failure is reported to the client as a frame and
// described by the returned Result.
func (s *Service) Stream(ctx context.Context, req SendRequest, newSink SinkFactory) (relay.Result, error) {
	if req.Transport == "" {
		req.Transport = audit.TransportSSE
	}
	ctx = logging.WithSessionID(logging.WithProvider(ctx, s.source.Name()), req.SessionID)

	ctx, span := s.tracer.Start(ctx, "chat.stream")
	defer span.End()
	tracing.SetExchangeAttributes(span, req.SessionID, req.RequestID, req.Transport)
	tracing.SetProviderAttributes(span, s.source.Name(), s.source.Model())

	ex, err := s.begin(ctx, req)
	if err != nil {
		tracing.SetErrorAttributes(span, err, errorType(err))
		return relay.Result{}, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrHistoryLen, len(ex.request.History)))

	sink, err := newSink()
	if err != nil {
		// The user turn is already in history; this is the same accepted
		// outcome as a stream that fails before its first event.
		tracing.SetErrorAttributes(span, err, "internal")
		s.finish(ctx, ex, relay.OutcomeTransportError, "", 0, 0, nil, err)
		return relay.Result{}, fmt.Errorf("failed to open stream: %w", err)
	}

	var (
		pspan  trace.Span
		opened bool
	)
	open := func(ctx context.Context) (providers.Stream, error) {
		var pctx context.Context
		pctx, pspan = s.tracer.Start(ctx, "provider.stream")
		providerStart := time.Now()
		stream, err := ex.provider.StreamComplete(pctx, ex.request)
		if err != nil {
			s.metrics.RecordProviderError(s.source.Name(), errorType(err))
			return nil, err
		}
		s.metrics.RecordProviderLatency(s.source.Name(), s.source.Model(), time.Since(providerStart))
		opened = true
		return stream, nil
	}

	r := relay.New(req.SessionID, open, sink, s.store,
		relay.WithLogger(s.logger),
		relay.WithFrameHook(func(f relay.Frame) {
			s.metrics.RecordFrame(string(f.Type))
		}),
	)
	res := r.Run(ctx)

	if pspan != nil {
		if res.Outcome != relay.OutcomeCompleted && res.Outcome != relay.OutcomeDisconnected {
			tracing.SetErrorAttributes(pspan, res.Err, errorType(res.Err))
		}
		pspan.End()
	}
	tracing.SetOutcomeAttributes(span, string(res.Outcome), res.StopReason, res.Frames)
	if res.Err != nil {
		tracing.SetErrorAttributes(span, res.Err, string(res.Outcome))
	} else {
		tracing.SetStatus(span, nil)
	}
	if opened && (res.Outcome == relay.OutcomeProviderError || res.Outcome == relay.OutcomeTransportError) {
		if errors.Is(res.Err, relay.ErrIncompleteStream) || providers.IsProviderError(res.Err) || providers.IsTransportError(res.Err) {
			s.metrics.RecordProviderError(s.source.Name(), errorType(res.Err))
		}
	}

	s.finish(ctx, ex, res.Outcome, res.StopReason, len(res.Text), res.Frames, nil, res.Err)

	level := slog.LevelInfo
	if res.State != relay.StateCompleted {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "streaming exchange finished",
		"request_id", req.RequestID,
		"transport", req.Transport,
		"outcome", string(res.Outcome),
		"frames", res.Frames,
		"stop_reason", res.StopReason,
		"error", res.Err,
		"total_latency_ms", time.Since(ex.started).Milliseconds(),
	)

	return res, nil
}

// finish records metrics and the audit record for an exchange.
func (s *Service) finish(ctx context.Context, ex *exchange, outcome relay.Outcome, stopReason string, responseBytes, frames int, completion *providers.Completion, err error) {
	duration := time.Since(ex.started)
	model := s.source.Model()
	if completion != nil {
		model = s.model(completion.Model)
	}

	s.metrics.RecordExchange(s.source.Name(), model, ex.req.Transport, string(outcome), duration)
	s.metrics.UpdateProviderHealth(s.source.Name(), s.source.Health().Healthy)

	rec := &audit.Record{
		SessionID:     ex.req.SessionID,
		RequestID:     ex.req.RequestID,
		Transport:     ex.req.Transport,
		Provider:      s.source.Name(),
		Model:         model,
		Outcome:       string(outcome),
		StopReason:    stopReason,
		Frames:        frames,
		ResponseBytes: responseBytes,
		StartedAt:     ex.started,
		Duration:      duration,
	}
	if completion != nil {
		rec.InputTokens = completion.Usage.InputTokens
		rec.OutputTokens = completion.Usage.OutputTokens
		s.metrics.RecordTokens(s.source.Name(), model, rec.InputTokens, rec.OutputTokens)
	}
	if err != nil {
		rec.ErrorType = errorType(err)
	}

	if s.recorder != nil {
		s.recorder.Record(rec)
	}
}

func (s *Service) model(reported string) string {
	if reported != "" {
		return reported
	}
	return s.source.Model()
}

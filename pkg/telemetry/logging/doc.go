// Package logging provides structured logging with secret redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging in JSON or text format
//   - Masking of credentials under sensitive keys (api_key, authorization, ...)
//   - Optional pattern-based redaction of string values
//   - Request and session IDs taken from the context
//   - A log level that can be changed at runtime
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    RedactPII: true,
//	})
//
//	logger.Info("session created", "session_id", id, "api_key", key) // api_key masked
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "processing") // includes request_id
//
// Components that take a *slog.Logger receive logger.Slog(); they get the
// same redaction and context fields.
//
// # Level changes
//
// SetLevel updates a slog.LevelVar shared by all loggers derived with With,
// so a configuration reload takes effect without rebuilding them.
package logging

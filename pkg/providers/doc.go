// Package providers defines the gateway's view of a remote completion
// provider and the shared HTTP plumbing that concrete adapters build on.
//
// A Provider offers two calls: Complete performs one round trip and returns
// the whole assistant message; StreamComplete returns a Stream, a pull-based
// iterator of StreamEvents that ends with exactly one DoneEvent or one
// ErrorEvent.
//
// # Stream Events
//
// StreamEvent is a closed set of variants, one Go type per kind:
//
//	TextEvent        incremental assistant text
//	ToolUseEvent     the model asked the client to run a tool
//	ToolResultEvent  a tool result echoed back on the stream
//	ErrorEvent       the provider reported a failure; terminal
//	DoneEvent        the completion finished; terminal
//
// # Errors
//
// Failures are typed. ProviderError, AuthError and RateLimitError mean the
// provider answered and refused. TransportError, TimeoutError, ParseError and
// StreamError mean the exchange itself broke. IsTransportError tells the two
// classes apart.
//
// # One Attempt Per Call
//
// HTTPProvider never retries. Each Complete or StreamComplete call issues at
// most one upstream request, so a conversation receives at most one assistant
// turn per client request.
package providers

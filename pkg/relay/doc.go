// Package relay drives one streaming exchange from a provider stream to a
// client-facing Sink.
//
// A Relay moves through four states:
//
//	Idle ──► Streaming ──► Completed
//	  │          │
//	  └──────────┴───────► Failed
//
// Events are forwarded in the order the provider produced them. Text
// fragments are also accumulated, and on the provider's done event the
// accumulated text is committed to the conversation as exactly one assistant
// turn before the done frame is sent. Provider errors, transport failures and
// client disconnects all end in Failed and commit nothing.
//
// The relay pulls the next event only after the previous frame has been
// written, so a slow client slows the upstream read instead of growing a
// buffer. The Sink is closed exactly once on every path.
package relay

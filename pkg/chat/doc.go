// Package chat runs one conversational exchange: it checks the session,
// appends the user's turn, calls the provider with the session's
// credential and stores the assistant's reply.
//
// Send returns the whole reply at once. Stream relays provider events to a
// relay.Sink and commits the reply only when the provider finishes. Both
// record metrics, a trace span and one audit record per exchange. Message
// content and credentials never reach the audit trail.
package chat

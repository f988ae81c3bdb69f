// Package sse reads and writes Server-Sent Events.
//
// Reader parses an event stream into Events, joining multi-line data fields.
// It is used by the provider adapters to consume upstream streams and by the
// client SDK to consume the gateway's own stream. Writer emits data-only
// frames and flushes each one so the client sees it immediately.
package sse

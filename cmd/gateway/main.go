// Gateway is a stateful chat gateway in front of a hosted LLM provider.
//
// Clients open a session with their own provider API key, then exchange
// messages over plain HTTP, Server-Sent Events, or WebSocket. The gateway
// keeps the conversation history so each request only carries the new
// message.
//
// Usage:
//
//	# Start the server with defaults and GATEWAY_* environment overrides
//	gateway run
//
//	# Start with a configuration file (reloaded on change)
//	gateway run --config /etc/gateway/config.yaml
//
//	# Check a configuration file
//	gateway config validate --config config.yaml
//
//	# Chat with a running gateway
//	gateway chat --url http://localhost:8080 --api-key "$ANTHROPIC_API_KEY"
//
//	# Inspect recorded exchanges
//	gateway exchanges --config config.yaml --session <id> --format csv
package main

func main() {
	Execute()
}

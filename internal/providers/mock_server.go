package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer is a mock upstream provider for adapter and gateway tests.
type MockServer struct {
	server       *httptest.Server
	responses    map[string]MockResponse
	requestCount int
	lastBody     []byte
	lastHeader   http.Header
	mu           sync.Mutex
}

// MockResponse defines a canned response for one path.
type MockResponse struct {
	StatusCode int
	Body       interface{}
	Delay      time.Duration
	Headers    map[string]string

	// StreamEvents are raw SSE event blocks, written one at a time with a
	// blank line after each.
	StreamEvents []string

	// DropAfterEvents aborts the connection after StreamEvents are written,
	// simulating a transport failure mid-stream.
	DropAfterEvents bool

	// HoldOpen keeps the stream open after StreamEvents until the client
	// goes away.
	HoldOpen bool
}

// NewMockServer creates and starts a mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets the response for path.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = response
}

// GetRequestCount returns the number of requests received.
func (ms *MockServer) GetRequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.requestCount
}

// LastRequestBody returns the body of the most recent request.
func (ms *MockServer) LastRequestBody() []byte {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.lastBody
}

// LastRequestHeader returns the headers of the most recent request.
func (ms *MockServer) LastRequestHeader() http.Header {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.lastHeader
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requestCount++
	ms.lastBody = body
	ms.lastHeader = r.Header.Clone()
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	if len(response.StreamEvents) > 0 || response.HoldOpen {
		ms.handleStream(w, r, response)
		return
	}

	if response.StatusCode == 0 {
		response.StatusCode = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.StatusCode)

	switch v := response.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (ms *MockServer) handleStream(w http.ResponseWriter, r *http.Request, response MockResponse) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	for _, event := range response.StreamEvents {
		fmt.Fprintf(w, "%s\n\n", event)
		if flusher != nil {
			flusher.Flush()
		}
	}

	if response.DropAfterEvents {
		panic(http.ErrAbortHandler)
	}
	if response.HoldOpen {
		<-r.Context().Done()
	}
}

// AnthropicMessage returns a Messages API response body with one text block.
func AnthropicMessage(content, model string) map[string]interface{} {
	return map[string]interface{}{
		"id":   "msg_123",
		"type": "message",
		"role": "assistant",
		"content": []map[string]interface{}{
			{"type": "text", "text": content},
		},
		"model":       model,
		"stop_reason": "end_turn",
		"usage": map[string]interface{}{
			"input_tokens":  10,
			"output_tokens": 20,
		},
	}
}

// AnthropicEvent formats one named Anthropic SSE event.
func AnthropicEvent(eventType string, data map[string]interface{}) string {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["type"] = eventType
	b, _ := json.Marshal(data)
	return fmt.Sprintf("event: %s\ndata: %s", eventType, b)
}

// AnthropicTextStream returns the event sequence for a successful streamed
// reply made of the given text fragments.
func AnthropicTextStream(parts ...string) []string {
	events := []string{
		AnthropicEvent("message_start", map[string]interface{}{
			"message": map[string]interface{}{
				"id": "msg_123", "type": "message", "role": "assistant",
				"model": "claude-test", "content": []interface{}{},
				"usage": map[string]interface{}{"input_tokens": 10, "output_tokens": 0},
			},
		}),
		AnthropicEvent("content_block_start", map[string]interface{}{
			"index":         0,
			"content_block": map[string]interface{}{"type": "text", "text": ""},
		}),
		AnthropicEvent("ping", nil),
	}
	for _, part := range parts {
		events = append(events, AnthropicTextDelta(part))
	}
	return append(events,
		AnthropicEvent("content_block_stop", map[string]interface{}{"index": 0}),
		AnthropicEvent("message_delta", map[string]interface{}{
			"delta": map[string]interface{}{"stop_reason": "end_turn"},
			"usage": map[string]interface{}{"output_tokens": 5},
		}),
		AnthropicEvent("message_stop", nil),
	)
}

// AnthropicTextDelta formats a content_block_delta event carrying text.
func AnthropicTextDelta(text string) string {
	return AnthropicEvent("content_block_delta", map[string]interface{}{
		"index": 0,
		"delta": map[string]interface{}{"type": "text_delta", "text": text},
	})
}

// AnthropicStreamError formats an in-stream error event.
func AnthropicStreamError(errType, message string) string {
	return AnthropicEvent("error", map[string]interface{}{
		"error": map[string]interface{}{"type": errType, "message": message},
	})
}

// OpenAIChatResponse returns a chat completions response body.
func OpenAIChatResponse(content, model string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]interface{}{
			"prompt_tokens":     10,
			"completion_tokens": 20,
			"total_tokens":      30,
		},
	}
}

// OpenAIChunk formats one chat completions stream chunk as an SSE event.
func OpenAIChunk(delta, finishReason string) string {
	choice := map[string]interface{}{
		"index": 0,
		"delta": map[string]interface{}{"content": delta},
	}
	if finishReason != "" {
		choice["finish_reason"] = finishReason
	}
	chunk := map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion.chunk",
		"model":   "gpt-test",
		"choices": []interface{}{choice},
	}
	b, _ := json.Marshal(chunk)
	return "data: " + string(b)
}

// OpenAIDone is the terminating marker of a chat completions stream.
const OpenAIDone = "data: [DONE]"

// MockErrorResponse returns an error response in the common envelope.
func MockErrorResponse(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: map[string]interface{}{
			"type": "error",
			"error": map[string]interface{}{
				"type":    "invalid_request_error",
				"message": message,
			},
		},
	}
}

// MockAuthError returns a 401 response.
func MockAuthError() MockResponse {
	return MockErrorResponse(http.StatusUnauthorized, "invalid x-api-key")
}

// MockRateLimitError returns a 429 response with Retry-After.
func MockRateLimitError(retryAfter int) MockResponse {
	response := MockErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded")
	response.Headers = map[string]string{
		"Retry-After": fmt.Sprintf("%d", retryAfter),
	}
	return response
}

// MockServerError returns a 500 response.
func MockServerError() MockResponse {
	return MockErrorResponse(http.StatusInternalServerError, "Internal server error")
}

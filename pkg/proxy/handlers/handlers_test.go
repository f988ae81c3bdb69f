package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"agentic/gateway/pkg/audit"
	"agentic/gateway/pkg/chat"
	"agentic/gateway/pkg/providers"
	"agentic/gateway/pkg/proxy/types"
	"agentic/gateway/pkg/relay"
	"agentic/gateway/pkg/session"
)

// fakeService stands in for *chat.Service. Stream writes its frames through
// the sink factory the handler supplies.
type fakeService struct {
	mu sync.Mutex

	sendResult *chat.SendResult
	sendErr    error
	streamErr  error
	frames     []relay.Frame

	lastReq chat.SendRequest
}

func (f *fakeService) Send(ctx context.Context, req chat.SendRequest) (*chat.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	return f.sendResult, f.sendErr
}

func (f *fakeService) Stream(ctx context.Context, req chat.SendRequest, newSink chat.SinkFactory) (relay.Result, error) {
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()

	if f.streamErr != nil {
		return relay.Result{}, f.streamErr
	}
	sink, err := newSink()
	if err != nil {
		return relay.Result{}, err
	}
	defer sink.Close()

	for _, fr := range f.frames {
		if err := sink.Send(ctx, fr); err != nil {
			return relay.Result{State: relay.StateFailed, Outcome: relay.OutcomeDisconnected, Err: err}, nil
		}
	}
	return relay.Result{State: relay.StateCompleted, Outcome: relay.OutcomeCompleted}, nil
}

func (f *fakeService) request() chat.SendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var body types.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestSessionHandler(t *testing.T) {
	store := session.NewStore()
	h := NewSessionHandler(store, Limits{})

	t.Run("create", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(`{"apiKey":"sk-ant-abc"}`)))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var resp types.CreateSessionResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Message != "Session created successfully" {
			t.Errorf("message = %q", resp.Message)
		}
		sess, err := store.Get(resp.SessionID)
		if err != nil {
			t.Fatalf("session not stored: %v", err)
		}
		if sess.Credential().Reveal() != "sk-ant-abc" {
			t.Error("credential not bound to session")
		}
	})

	t.Run("create without key", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(`{}`)))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
		if body := decodeError(t, w); body.Error != "API key is required" {
			t.Errorf("error = %q", body.Error)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		id, _ := store.Create(session.Credential("sk-ant-del"))
		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/session?sessionId="+id, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("delete #%d status = %d", i+1, w.Code)
			}
			if !strings.Contains(w.Body.String(), "Session deleted successfully") {
				t.Errorf("body = %s", w.Body.String())
			}
		}
		if _, err := store.Get(id); !errors.Is(err, session.ErrSessionNotFound) {
			t.Errorf("Get after delete error = %v", err)
		}
	})

	t.Run("delete without id", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/session", nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
		if body := decodeError(t, w); body.Error != "Session ID is required" {
			t.Errorf("error = %q", body.Error)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

func TestHistoryHandler(t *testing.T) {
	store := session.NewStore()
	id, _ := store.Create(session.Credential("sk-ant-hist"))
	_ = store.AppendTurn(id, session.UserTurn("hi"))
	_ = store.AppendTurn(id, session.AssistantTurn("hello"))
	h := NewHistoryHandler(store)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "existing session",
			query:      "?sessionId=" + id,
			wantStatus: http.StatusOK,
			wantBody:   `{"conversationHistory":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`,
		},
		{
			name:       "unknown session",
			query:      "?sessionId=nope",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Invalid or expired session","code":"session_not_found"}`,
		},
		{
			name:       "missing id",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Session ID is required","code":"invalid_request"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history"+tt.query, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
		})
	}
}

func TestChatHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		service    *fakeService
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name: "success",
			body: `{"sessionId":"s1","message":"2+2?","systemPrompt":"be terse"}`,
			service: &fakeService{sendResult: &chat.SendResult{
				Response: "4",
				History:  []session.Turn{session.UserTurn("2+2?"), session.AssistantTurn("4")},
			}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing message",
			body:       `{"sessionId":"s1"}`,
			service:    &fakeService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   types.CodeInvalidRequest,
			wantMsg:    "Session ID and message are required",
		},
		{
			name:       "unknown session",
			body:       `{"sessionId":"gone","message":"hi"}`,
			service:    &fakeService{sendErr: session.ErrSessionNotFound},
			wantStatus: http.StatusUnauthorized,
			wantCode:   types.CodeSessionNotFound,
			wantMsg:    "Invalid or expired session",
		},
		{
			name:       "provider failure",
			body:       `{"sessionId":"s1","message":"hi"}`,
			service:    &fakeService{sendErr: &providers.AuthError{Provider: "anthropic", Message: "bad key"}},
			wantStatus: http.StatusInternalServerError,
			wantCode:   types.CodeProviderError,
			wantMsg:    "Provider rejected the session credential",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewChatHandler(tt.service, Limits{})
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tt.body)))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				body := decodeError(t, w)
				if body.Code != tt.wantCode || body.Error != tt.wantMsg {
					t.Errorf("body = %+v", body)
				}
				return
			}

			var resp types.ChatResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Response != "4" || len(resp.ConversationHistory) != 2 {
				t.Errorf("resp = %+v", resp)
			}
			req := tt.service.request()
			if req.SystemPrompt != "be terse" || req.Transport != audit.TransportHTTP {
				t.Errorf("service request = %+v", req)
			}
		})
	}
}

func TestStreamHandler(t *testing.T) {
	t.Run("writes SSE frames", func(t *testing.T) {
		svc := &fakeService{frames: []relay.Frame{
			{Type: providers.KindText, Content: "Hel"},
			{Type: providers.KindText, Content: "lo"},
			{Type: providers.KindDone},
		}}
		h := NewStreamHandler(svc, Limits{})

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/stream", strings.NewReader(`{"sessionId":"s1","message":"hi"}`)))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
			t.Errorf("Content-Type = %q", ct)
		}
		want := "data: {\"type\":\"text\",\"content\":\"Hel\"}\n\n" +
			"data: {\"type\":\"text\",\"content\":\"lo\"}\n\n" +
			"data: {\"type\":\"done\"}\n\n"
		if w.Body.String() != want {
			t.Errorf("body = %q, want %q", w.Body.String(), want)
		}
		if svc.request().Transport != audit.TransportSSE {
			t.Errorf("transport = %q", svc.request().Transport)
		}
	})

	t.Run("pre-stream failure is a JSON status", func(t *testing.T) {
		h := NewStreamHandler(&fakeService{streamErr: session.ErrSessionNotFound}, Limits{})

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/stream", strings.NewReader(`{"sessionId":"gone","message":"hi"}`)))

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
	})

	t.Run("validation", func(t *testing.T) {
		h := NewStreamHandler(&fakeService{}, Limits{})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/stream", strings.NewReader(`{"message":"hi"}`)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		h := NewStreamHandler(&fakeService{}, Limits{})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stream", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

func TestDocsHandler(t *testing.T) {
	h := NewDocsHandler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	for _, route := range []string{"/api/session", "/api/chat", "/api/stream", "/api/history"} {
		if !strings.Contains(w.Body.String(), route) {
			t.Errorf("docs page does not mention %s", route)
		}
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", w.Code)
	}
}

func TestExchangesHandler(t *testing.T) {
	store := audit.NewMemoryStore(10)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, sess := range []string{"a", "b", "a"} {
		_ = store.Store(context.Background(), &audit.Record{
			ID:        "r" + string(rune('1'+i)),
			SessionID: sess,
			Outcome:   "completed",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	tests := []struct {
		name       string
		handler    *ExchangesHandler
		query      string
		wantStatus int
		wantCount  int
	}{
		{name: "all", handler: NewExchangesHandler(store), wantStatus: http.StatusOK, wantCount: 3},
		{name: "by session", handler: NewExchangesHandler(store), query: "?sessionId=a", wantStatus: http.StatusOK, wantCount: 2},
		{name: "limit", handler: NewExchangesHandler(store), query: "?limit=1", wantStatus: http.StatusOK, wantCount: 1},
		{name: "since", handler: NewExchangesHandler(store), query: "?since=2026-03-01T12:01:00Z", wantStatus: http.StatusOK, wantCount: 2},
		{name: "bad limit", handler: NewExchangesHandler(store), query: "?limit=x", wantStatus: http.StatusBadRequest},
		{name: "bad since", handler: NewExchangesHandler(store), query: "?since=yesterday", wantStatus: http.StatusBadRequest},
		{name: "audit disabled", handler: NewExchangesHandler(nil), wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/exchanges"+tt.query, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp types.ExchangesResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Count != tt.wantCount || len(resp.Exchanges) != tt.wantCount {
				t.Errorf("count = %d (%d records), want %d", resp.Count, len(resp.Exchanges), tt.wantCount)
			}
			if resp.Total != 3 {
				t.Errorf("total = %d, want 3", resp.Total)
			}
		})
	}
}

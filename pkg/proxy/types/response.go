package types

import (
	"agentic/gateway/pkg/audit"
	"agentic/gateway/pkg/session"
)

// CreateSessionResponse is returned by POST /api/session.
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// MessageResponse is a body that only carries a status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ChatResponse is returned by POST /api/chat.
type ChatResponse struct {
	Response            string         `json:"response"`
	ConversationHistory []session.Turn `json:"conversationHistory"`
}

// HistoryResponse is returned by GET /api/history.
type HistoryResponse struct {
	ConversationHistory []session.Turn `json:"conversationHistory"`
}

// ExchangesResponse is returned by GET /admin/exchanges.
type ExchangesResponse struct {
	Exchanges []*audit.Record `json:"exchanges"`
	Count     int             `json:"count"`
	Total     int64           `json:"total"`
}

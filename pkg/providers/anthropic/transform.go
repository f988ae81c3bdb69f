package anthropic

import (
	"encoding/json"
	"strings"

	"agentic/gateway/pkg/providers"
)

// messagesRequest is the /v1/messages request body.
type messagesRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	System    string    `json:"system,omitempty"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the non-streaming response, and the payload of
// message_start.
type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      usage          `json:"usage"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// streamEvent is the data payload of any streaming event.
type streamEvent struct {
	Type         string            `json:"type"`
	Message      *messagesResponse `json:"message,omitempty"`
	Index        int               `json:"index"`
	ContentBlock *contentBlock     `json:"content_block,omitempty"`
	Delta        *delta            `json:"delta,omitempty"`
	Usage        *usage            `json:"usage,omitempty"`
	Error        *apiError         `json:"error,omitempty"`
}

// delta covers both content_block_delta and message_delta payloads.
type delta struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	StopReason  string `json:"stop_reason,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func transformRequest(req *providers.Request, config providers.ProviderConfig) *messagesRequest {
	history := providers.MergeConsecutive(req.History)

	out := &messagesRequest{
		Model:     req.Model,
		Messages:  make([]message, 0, len(history)),
		System:    req.System,
		MaxTokens: req.MaxTokens,
	}
	if out.Model == "" {
		out.Model = config.Model
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = config.MaxTokens
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = DefaultMaxTokens
	}

	for _, turn := range history {
		out.Messages = append(out.Messages, message{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	return out
}

func transformResponse(resp *messagesResponse) *providers.Completion {
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &providers.Completion{
		Content:    text.String(),
		Model:      resp.Model,
		StopReason: resp.StopReason,
		Usage: providers.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}
}

package openai

import (
	"strings"

	"agentic/gateway/pkg/providers"
)

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Stream    bool          `json:"stream,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int          `json:"index"`
	Message      *chatMessage `json:"message,omitempty"`
	Delta        *chatDelta   `json:"delta,omitempty"`
	FinishReason *string      `json:"finish_reason,omitempty"`
}

type chatDelta struct {
	Content   string          `json:"content,omitempty"`
	ToolCalls []toolCallDelta `json:"tool_calls,omitempty"`
}

type toolCallDelta struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// streamChunk is one data payload of a streaming response.
type streamChunk struct {
	chatResponse
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func transformRequest(req *providers.Request, config providers.ProviderConfig) *chatRequest {
	history := providers.MergeConsecutive(req.History)

	out := &chatRequest{
		Model:     req.Model,
		Messages:  make([]chatMessage, 0, len(history)+1),
		MaxTokens: req.MaxTokens,
	}
	if out.Model == "" {
		out.Model = config.Model
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = config.MaxTokens
	}

	if strings.TrimSpace(req.System) != "" {
		out.Messages = append(out.Messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, turn := range history {
		out.Messages = append(out.Messages, chatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	return out
}

func transformResponse(resp *chatResponse) (*providers.Completion, error) {
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return nil, errNoChoices
	}

	choice := resp.Choices[0]
	completion := &providers.Completion{
		Content: choice.Message.Content,
		Model:   resp.Model,
	}
	if choice.FinishReason != nil {
		completion.StopReason = *choice.FinishReason
	}
	if resp.Usage != nil {
		completion.Usage = providers.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
	}
	return completion, nil
}

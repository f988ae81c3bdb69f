package providers

import (
	"strings"

	"agentic/gateway/pkg/session"
)

// ValidateRequest checks the fields every adapter relies on.
func ValidateRequest(req *Request) error {
	if req == nil {
		return &ValidationError{Field: "request", Message: "request cannot be nil"}
	}
	if len(req.History) == 0 {
		return &ValidationError{Field: "history", Message: "history must contain at least one turn"}
	}
	for _, turn := range req.History {
		if !turn.Role.Valid() {
			return &ValidationError{Field: "history", Message: "unsupported role " + string(turn.Role)}
		}
	}
	if req.History[len(req.History)-1].Role != session.RoleUser {
		return &ValidationError{Field: "history", Message: "last turn must be from the user"}
	}
	if req.MaxTokens < 0 {
		return &ValidationError{Field: "max_tokens", Message: "max_tokens cannot be negative"}
	}
	return nil
}

// MergeConsecutive joins adjacent turns with the same role. A stream that
// failed leaves an unanswered user turn, and providers that require strict
// alternation would reject the next request without this.
func MergeConsecutive(history []session.Turn) []session.Turn {
	out := make([]session.Turn, 0, len(history))
	for _, turn := range history {
		if n := len(out); n > 0 && out[n-1].Role == turn.Role {
			out[n-1].Content = strings.Join([]string{out[n-1].Content, turn.Content}, "\n\n")
			continue
		}
		out = append(out, turn)
	}
	return out
}

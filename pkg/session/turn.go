package session

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the stored roles. System instructions are
// passed per call and never stored as a turn.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is one message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserTurn returns a user turn with the given content.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn returns an assistant turn with the given content.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// ConversationLog is an append-only sequence of turns.
//
// A ConversationLog is not safe for concurrent use on its own; the Session
// that owns it serializes access.
type ConversationLog struct {
	turns []Turn
}

// Append adds a turn to the end of the log.
func (l *ConversationLog) Append(t Turn) {
	l.turns = append(l.turns, t)
}

// Snapshot returns a copy of the turns in insertion order.
func (l *ConversationLog) Snapshot() []Turn {
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns in the log.
func (l *ConversationLog) Len() int {
	return len(l.turns)
}

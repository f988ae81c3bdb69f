package session

import "log/slog"

// Credential is the caller-supplied provider API key bound to a session.
//
// Its String and LogValue methods never reveal the key, so a Credential that
// reaches a log line or a formatted error stays masked. Use Reveal only at the
// point where the outbound provider request is built.
type Credential string

// Reveal returns the raw key.
func (c Credential) Reveal() string {
	return string(c)
}

// String implements fmt.Stringer.
func (c Credential) String() string {
	return mask(string(c))
}

// LogValue implements slog.LogValuer.
func (c Credential) LogValue() slog.Value {
	return slog.StringValue(mask(string(c)))
}

func mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "[REDACTED]"
	}
	return key[:4] + "...[REDACTED]"
}

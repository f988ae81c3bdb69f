package session

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCredential_NeverPrintsKey(t *testing.T) {
	const key = "sk-ant-REDACTED"
	cred := Credential(key)

	if s := cred.String(); strings.Contains(s, "supersecret") {
		t.Errorf("String() leaked key: %q", s)
	}
	if s := fmt.Sprintf("%v", cred); strings.Contains(s, "supersecret") {
		t.Errorf("%%v leaked key: %q", s)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("session", "credential", cred)
	if strings.Contains(buf.String(), "supersecret") {
		t.Errorf("log output leaked key: %s", buf.String())
	}

	if cred.Reveal() != key {
		t.Errorf("Reveal() = %q, want %q", cred.Reveal(), key)
	}
}

func TestCredential_Mask(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"empty", "", ""},
		{"short", "abc", "[REDACTED]"},
		{"long", "sk-ant-123456789", "sk-a...[REDACTED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Credential(tt.key).String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

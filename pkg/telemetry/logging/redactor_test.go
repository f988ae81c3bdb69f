package logging

import (
	"log/slog"
	"testing"

	"agentic/gateway/pkg/config"
)

func TestNewRedactor(t *testing.T) {
	tests := []struct {
		name         string
		withPatterns bool
		custom       []config.RedactPattern
		wantPatterns int
	}{
		{name: "keys only", withPatterns: false, wantPatterns: 0},
		{name: "default patterns", withPatterns: true, wantPatterns: 4},
		{
			name:         "with custom pattern",
			withPatterns: true,
			custom:       []config.RedactPattern{{Name: "ticket", Pattern: `TCK-\d+`, Replacement: "TCK-***"}},
			wantPatterns: 5,
		},
		{
			name:         "invalid custom pattern is skipped",
			withPatterns: true,
			custom:       []config.RedactPattern{{Name: "bad", Pattern: "[unclosed", Replacement: "***"}},
			wantPatterns: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRedactor(tt.withPatterns, tt.custom)
			if len(r.patterns) != tt.wantPatterns {
				t.Errorf("patterns = %d, want %d", len(r.patterns), tt.wantPatterns)
			}
		})
	}
}

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor(true, []config.RedactPattern{{Name: "ticket", Pattern: `TCK-\d+`, Replacement: "TCK-***"}})

	tests := []struct {
		input string
		want  string
	}{
		{"key sk-ant-api03-abcdefgh rejected", "key sk-*** rejected"},
		{"Authorization: Bearer abc.def-ghi", "Authorization: Bearer ***"},
		{"password=hunter2", "password: ***"},
		{"mail user@example.com now", "mail ***@*** now"},
		{"see TCK-1234", "see TCK-***"},
		{"nothing secret here", "nothing secret here"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := r.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactor_RedactAttr(t *testing.T) {
	r := NewRedactor(false, nil)

	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"api key masked", slog.String("api_key", "sk-ant-0123456789"), "sk-a***"},
		{"header key masked", slog.String("x-api-key", "sk-ant-0123456789"), "sk-a***"},
		{"short secret", slog.String("secret", "abc"), "***"},
		{"ordinary value untouched", slog.String("model", "claude-sonnet-4-5"), "claude-sonnet-4-5"},
		{"token count untouched", slog.String("output_tokens", "128"), "128"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactAttr(tt.attr).Value.String(); got != tt.want {
				t.Errorf("RedactAttr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedactor_RedactAttr_Group(t *testing.T) {
	r := NewRedactor(false, nil)

	a := slog.Group("provider", slog.String("name", "anthropic"), slog.String("api_key", "sk-ant-0123456789"))
	got := r.RedactAttr(a).Value.Group()

	if got[0].Value.String() != "anthropic" {
		t.Errorf("name = %q", got[0].Value.String())
	}
	if got[1].Value.String() != "sk-a***" {
		t.Errorf("api_key = %q", got[1].Value.String())
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := map[string]bool{
		"api_key":         true,
		"API_KEY":         true,
		"provider_secret": true,
		"authorization":   true,
		"token":           true,
		"input_tokens":    false,
		"session_id":      false,
		"tokenizer":       false,
	}
	for key, want := range tests {
		if got := isSensitiveKey(key); got != want {
			t.Errorf("isSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestRedactAPIKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"short", "***"},
		{"sk-ant-api03-long", "sk-a***"},
	}
	for _, tt := range tests {
		if got := RedactAPIKey(tt.in); got != tt.want {
			t.Errorf("RedactAPIKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

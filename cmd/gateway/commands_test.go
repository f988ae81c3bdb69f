package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"agentic/gateway/pkg/audit"
	"agentic/gateway/pkg/cli"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgFile = ""
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	for _, want := range []string{"Gateway " + Version, "Go Version: " + runtime.Version()} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigValidateCommand(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.yaml")
	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(valid, []byte("sessions:\n  idle_timeout: 10m\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(invalid, []byte("provider:\n  type: carrier-pigeon\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "config", "validate", "--config", valid)
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Errorf("output = %q", out)
	}

	_, err = execute(t, "config", "validate", "--config", invalid)
	var cfgErr *cli.ConfigError
	if err == nil || !errors.As(err, &cfgErr) {
		t.Fatalf("validate error = %v, want *cli.ConfigError", err)
	}
}

func TestConfigShowCommand(t *testing.T) {
	out, err := execute(t, "config", "show")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	for _, want := range []string{"request_timeout: 2m0s", "idle_timeout: 30m0s", "backend: memory"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		value   string
		want    time.Time
		wantErr bool
	}{
		{value: "", want: time.Time{}},
		{value: "24h", want: now.Add(-24 * time.Hour)},
		{value: "2026-10-01T00:00:00Z", want: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
		{value: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseSince(tt.value, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSince(%q) error = %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseSince(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestExchangeTable(t *testing.T) {
	records := exchangeTable{{
		SessionID:     "s1",
		Transport:     audit.TransportSSE,
		Model:         "claude-test",
		Outcome:       "completed",
		Frames:        3,
		ResponseBytes: 12,
		StartedAt:     time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
		Duration:      1500 * time.Millisecond,
	}}

	buf := &bytes.Buffer{}
	if err := (&cli.CSVFormatter{}).FormatTo(buf, records); err != nil {
		t.Fatal(err)
	}
	want := "started,session,transport,model,outcome,frames,bytes,duration\n" +
		"2026-10-17T12:00:00Z,s1,sse,claude-test,completed,3,12,1.5s\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}
}

func TestExchangesCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "audit.db")

	store, err := audit.NewSQLiteStore(audit.SQLiteConfig{Path: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	rec := &audit.Record{
		ID:        "r1",
		SessionID: "s1",
		Transport: audit.TransportHTTP,
		Outcome:   "completed",
		StartedAt: time.Now().Add(-time.Hour),
	}
	if err := store.Store(t.Context(), rec); err != nil {
		t.Fatal(err)
	}
	store.Close()

	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := "audit:\n  backend: sqlite\n  path: " + dbPath + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "exchanges", "--config", cfgPath, "--session", "s1", "--format", "json")
	if err != nil {
		t.Fatalf("exchanges error = %v", err)
	}
	if !strings.Contains(out, `"sessionId": "s1"`) {
		t.Errorf("output missing record:\n%s", out)
	}
}

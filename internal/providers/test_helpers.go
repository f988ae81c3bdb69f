package providers

import (
	"errors"
	"io"
	"testing"
	"time"

	"agentic/gateway/pkg/providers"
	"agentic/gateway/pkg/session"
)

// TestConfig returns a provider configuration pointed at baseURL.
func TestConfig(name, providerType, baseURL string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:                name,
		Type:                providerType,
		BaseURL:             baseURL,
		APIKey:              session.Credential("test-key-0123456789"),
		Model:               "test-model",
		MaxTokens:           256,
		APIVersion:          "2023-06-01",
		Timeout:             5 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
}

// TestRequest returns a request whose history ends with one user turn.
func TestRequest(message string) *providers.Request {
	return &providers.Request{
		History: []session.Turn{session.UserTurn(message)},
	}
}

// AssertErrorAs fails the test unless err matches target's type.
func AssertErrorAs(t *testing.T, err error, target interface{}) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.As(err, target) {
		t.Fatalf("error %v (%T) does not match %T", err, err, target)
	}
}

// DrainStream reads stream until io.EOF or an error and returns the events.
func DrainStream(t *testing.T, stream providers.Stream) ([]providers.StreamEvent, error) {
	t.Helper()
	var events []providers.StreamEvent
	for i := 0; i < 10000; i++ {
		ev, err := stream.Next(t.Context())
		if err != nil {
			if isEOF(err) {
				return events, nil
			}
			return events, err
		}
		events = append(events, ev)
	}
	t.Fatal("stream did not terminate")
	return nil, nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

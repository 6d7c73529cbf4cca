package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/askpage/askpage/providers/ai"
)

func writeSSE(t *testing.T, w http.ResponseWriter, payloads ...string) {
	t.Helper()
	w.Header().Set("Content-Type", "text/event-stream")
	flusher, ok := w.(http.Flusher)
	if !ok {
		t.Fatal("response writer does not support flushing")
	}
	for _, payload := range payloads {
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			t.Errorf("failed to write SSE record: %v", err)
		}
		flusher.Flush()
	}
}

type countingTransport struct {
	calls int
}

func (transport *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	transport.calls++
	return nil, errors.New("unexpected network call")
}

func TestStreamMessage_LifecycleRecordsSkipped(t *testing.T) {
	var gotAPIKey, gotVersion, gotAuth string
	var gotRequest anthropicRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		writeSSE(t, w,
			`{"type":"message_start","message":{"id":"msg_1"}}`,
			`{"type":"content_block_start","index":0}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" world"}}`,
			`{"type":"content_block_stop","index":0}`,
			`{"type":"message_delta","delta":{"stop_reason":"end_turn"}}`,
			`{"type":"message_stop"}`,
		)
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)
	stream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{
		Model:        "claude-sonnet",
		SystemPrompt: "Be brief.",
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: "Greet me"},
		},
		Temperature: 0.5,
		MaxTokens:   256,
	})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}

	text, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if text != "Hello world" {
		t.Errorf("collect = %q, want %q", text, "Hello world")
	}

	if gotAPIKey != "test-key" {
		t.Errorf("x-api-key = %q, want %q", gotAPIKey, "test-key")
	}
	if gotVersion != anthropicVersion {
		t.Errorf("anthropic-version = %q, want %q", gotVersion, anthropicVersion)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want no bearer token", gotAuth)
	}
	if gotRequest.System != "Be brief." {
		t.Errorf("system field = %q, want %q", gotRequest.System, "Be brief.")
	}
	if !gotRequest.Stream {
		t.Error("expected stream=true in the request body")
	}
	if gotRequest.MaxTokens != 256 {
		t.Errorf("max_tokens = %d, want 256", gotRequest.MaxTokens)
	}
}

func TestStreamMessage_ErrorRecordTerminatesWithPartialOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSSE(t, w,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"partial"}}`,
			`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"never"}}`,
		)
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)
	stream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{
		Model:    "claude-sonnet",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "go"}},
	})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}

	text, err := stream.Collect()
	if err == nil {
		t.Fatal("expected a provider stream error")
	}
	var streamErr *ai.StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("error = %T (%v), want *ai.StreamError", err, err)
	}
	if streamErr.Message != "Overloaded" {
		t.Errorf("stream error message = %q, want %q", streamErr.Message, "Overloaded")
	}
	if text != "partial" {
		t.Errorf("partial text = %q, want %q", text, "partial")
	}
}

func TestStreamMessage_MissingKeyFailsBeforeNetwork(t *testing.T) {
	transport := &countingTransport{}
	provider := New().
		WithAPIKey("").
		WithHTTPClient(&http.Client{Transport: transport})

	_, err := provider.StreamMessage(context.Background(), ai.ChatRequest{
		Model:    "claude-sonnet",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hello"}},
	})

	var configErr *ai.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("error = %v, want *ai.ConfigurationError", err)
	}
	if configErr.Provider != "anthropic" {
		t.Errorf("provider = %q, want anthropic", configErr.Provider)
	}
	if transport.calls != 0 {
		t.Errorf("expected zero network calls, got %d", transport.calls)
	}
}

func TestRequestToAnthropic_SystemExtraction(t *testing.T) {
	request := ai.ChatRequest{
		Model:        "claude-sonnet",
		SystemPrompt: "Primary instruction.",
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: "Stray system message."},
			{Role: ai.RoleUser, Content: "Question"},
			{Role: ai.RoleAssistant, Content: "Answer"},
		},
	}

	wire := requestToAnthropic(request)

	if wire.System != "Primary instruction.\n\nStray system message." {
		t.Errorf("system = %q, want both parts joined", wire.System)
	}
	if len(wire.Messages) != 2 {
		t.Fatalf("got %d messages, want 2 (system roles removed)", len(wire.Messages))
	}
	for _, message := range wire.Messages {
		if message.Role == "system" {
			t.Errorf("system role leaked into messages: %+v", message)
		}
	}
	if wire.MaxTokens != defaultMaxTokens {
		t.Errorf("max_tokens = %d, want default %d when unset", wire.MaxTokens, defaultMaxTokens)
	}
	if wire.Temperature != nil {
		t.Errorf("temperature = %v, want omitted when zero", *wire.Temperature)
	}
}

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		fragment string
		wantErr  bool
	}{
		{name: "text delta", payload: `{"type":"content_block_delta","delta":{"type":"text_delta","text":"Hi"}}`, fragment: "Hi"},
		{name: "message start", payload: `{"type":"message_start"}`, fragment: ""},
		{name: "message stop", payload: `{"type":"message_stop"}`, fragment: ""},
		{name: "ping", payload: `{"type":"ping"}`, fragment: ""},
		{name: "malformed", payload: `{"type":`, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fragment, err := recordDecoder{}.DecodeRecord(test.payload)
			if test.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fragment != test.fragment {
				t.Errorf("fragment = %q, want %q", fragment, test.fragment)
			}
		})
	}
}

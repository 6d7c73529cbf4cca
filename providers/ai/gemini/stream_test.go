package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
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

func TestStreamMessage_CredentialInQueryOnly(t *testing.T) {
	var gotPath, gotKey, gotAlt, gotAuth string
	var gotRequest generateContentRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotAlt = r.URL.Query().Get("alt")
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		writeSSE(t, w,
			`{"candidates":[{"content":{"parts":[{"text":"Once"}],"role":"model"}}]}`,
			`{"candidates":[{"content":{"parts":[{"text":" upon"}],"role":"model"}}]}`,
		)
	}))
	defer server.Close()

	provider := New().WithAPIKey("query-key").WithBaseURL(server.URL)
	stream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{
		Model:        "gemini-flash",
		SystemPrompt: "Tell stories.",
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: "Begin"},
			{Role: ai.RoleAssistant, Content: "Sure"},
			{Role: ai.RoleUser, Content: "Go on"},
		},
		Temperature: 0.9,
		MaxTokens:   64,
	})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}

	text, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if text != "Once upon" {
		t.Errorf("collect = %q, want %q", text, "Once upon")
	}

	if !strings.Contains(gotPath, "/models/gemini-flash:streamGenerateContent") {
		t.Errorf("path = %q, want model embedded in the path", gotPath)
	}
	if gotKey != "query-key" {
		t.Errorf("key query param = %q, want %q", gotKey, "query-key")
	}
	if gotAlt != "sse" {
		t.Errorf("alt query param = %q, want sse", gotAlt)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want no auth header", gotAuth)
	}

	if gotRequest.SystemInstruction == nil || len(gotRequest.SystemInstruction.Parts) != 1 ||
		gotRequest.SystemInstruction.Parts[0].Text != "Tell stories." {
		t.Errorf("systemInstruction = %+v, want the system prompt", gotRequest.SystemInstruction)
	}
	wantRoles := []string{"user", "model", "user"}
	if len(gotRequest.Contents) != len(wantRoles) {
		t.Fatalf("got %d contents, want %d", len(gotRequest.Contents), len(wantRoles))
	}
	for i, want := range wantRoles {
		if gotRequest.Contents[i].Role != want {
			t.Errorf("contents[%d].role = %q, want %q", i, gotRequest.Contents[i].Role, want)
		}
	}
	if gotRequest.GenerationConfig == nil {
		t.Fatal("expected generationConfig to be set")
	}
	if gotRequest.GenerationConfig.MaxOutputTokens != 64 {
		t.Errorf("maxOutputTokens = %d, want 64", gotRequest.GenerationConfig.MaxOutputTokens)
	}
}

func TestStreamMessage_AbruptCloseSurfacesError(t *testing.T) {
	// Advertise more bytes than are written so the client sees the connection
	// drop before the stream's natural end.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		partial := "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"cut\"}]}}]}\n\n"
		w.Header().Set("Content-Length", strconv.Itoa(len(partial)+512))
		w.Header().Set("Content-Type", "text/event-stream")
		if _, err := w.Write([]byte(partial)); err != nil {
			t.Errorf("write failed: %v", err)
		}
	}))
	defer server.Close()

	provider := New().WithAPIKey("query-key").WithBaseURL(server.URL)
	stream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{
		Model:    "gemini-flash",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}

	text, err := stream.Collect()
	if err == nil {
		t.Fatal("expected an error for a truncated stream, got clean completion")
	}
	if text != "cut" {
		t.Errorf("partial text = %q, want %q", text, "cut")
	}
}

func TestStreamMessage_MissingKeyFailsBeforeNetwork(t *testing.T) {
	transport := &countingTransport{}
	provider := New().
		WithAPIKey("").
		WithHTTPClient(&http.Client{Transport: transport})

	_, err := provider.StreamMessage(context.Background(), ai.ChatRequest{
		Model:    "gemini-flash",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hello"}},
	})

	var configErr *ai.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("error = %v, want *ai.ConfigurationError", err)
	}
	if configErr.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", configErr.Provider)
	}
	if transport.calls != 0 {
		t.Errorf("expected zero network calls, got %d", transport.calls)
	}
}

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		fragment string
		wantErr  bool
	}{
		{name: "text part", payload: `{"candidates":[{"content":{"parts":[{"text":"Hi"}],"role":"model"}}]}`, fragment: "Hi"},
		{name: "no candidates", payload: `{"usageMetadata":{"totalTokenCount":12}}`, fragment: ""},
		{name: "candidate without content", payload: `{"candidates":[{"finishReason":"STOP"}]}`, fragment: ""},
		{name: "empty parts", payload: `{"candidates":[{"content":{"parts":[],"role":"model"}}]}`, fragment: ""},
		{name: "malformed", payload: `{"candidates":[`, wantErr: true},
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

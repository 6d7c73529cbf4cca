package pagetext

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtract_ConvertsHTMLToMarkdown(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1>Title</h1><p>Some <strong>bold</strong> text.</p></body></html>`))
	}))
	defer server.Close()

	markdown, err := New().Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if !strings.Contains(markdown, "# Title") {
		t.Errorf("markdown missing heading: %q", markdown)
	}
	if !strings.Contains(markdown, "**bold**") {
		t.Errorf("markdown missing bold text: %q", markdown)
	}
	if gotUserAgent != defaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUserAgent, defaultUserAgent)
	}
}

func TestExtract_RejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := New().Extract(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %v, want status code in message", err)
	}
}

func TestExtract_EmptyURL(t *testing.T) {
	if _, err := New().Extract(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestExtract_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Extract(ctx, server.URL); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

// Package ask orchestrates one question-answer request: it resolves the
// selected provider from a configuration snapshot, gathers page context,
// assembles the conversation, and starts the normalized response stream.
package ask

import (
	"context"
	"fmt"
	"strings"

	"github.com/askpage/askpage/core/pagetext"
	"github.com/askpage/askpage/core/prompt"
	"github.com/askpage/askpage/providers"
	"github.com/askpage/askpage/providers/ai"
	"github.com/askpage/askpage/providers/observability"
)

// Request is the inbound shape consumed by the service. PageContent, when
// supplied by the client (the bookmarklet extracts the DOM text itself), is
// used as-is; otherwise PageURL, when present, is fetched server-side.
type Request struct {
	Provider    string       `json:"provider"`
	Question    string       `json:"question"`
	PageURL     string       `json:"page_url,omitempty"`
	PageContent string       `json:"page_content,omitempty"`
	History     []ai.Message `json:"history,omitempty"`
}

// SnapshotFunc returns the current per-provider configuration snapshots keyed
// by provider identifier. It is called once per request; the returned configs
// are treated as immutable for the life of that request.
type SnapshotFunc func() map[string]ai.Config

// Service wires the collaborators of one ask flow. It holds no per-request
// state; concurrent requests are independent.
type Service struct {
	snapshot SnapshotFunc
	prompt   prompt.Builder
	pages    *pagetext.Extractor
}

// NewService creates a Service from a configuration snapshot source, a prompt
// builder, and a page-content extractor.
func NewService(snapshot SnapshotFunc, promptBuilder prompt.Builder, pages *pagetext.Extractor) *Service {
	return &Service{
		snapshot: snapshot,
		prompt:   promptBuilder,
		pages:    pages,
	}
}

// Ask starts one streaming question-answer request and returns the normalized
// event stream. Configuration problems (unknown or disabled provider, missing
// credential) reject the request before any upstream call; failures after the
// stream has started flow through the returned stream as terminal error
// events.
func (s *Service) Ask(ctx context.Context, request Request) (*ai.ChatStream, error) {
	observer := observability.ObserverFromContext(ctx)

	if strings.TrimSpace(request.Question) == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}

	cfg, ok := s.snapshot()[request.Provider]
	if !ok {
		return nil, &ai.ConfigurationError{Provider: request.Provider, Reason: "unknown provider identifier"}
	}
	if !cfg.Enabled {
		return nil, &ai.ConfigurationError{Provider: request.Provider, Reason: "provider is not enabled"}
	}

	provider, err := providers.ForID(request.Provider, cfg)
	if err != nil {
		return nil, err
	}

	pageText := request.PageContent
	if pageText == "" && request.PageURL != "" {
		pageText, err = s.pages.Extract(ctx, request.PageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page content: %w", err)
		}
		if observer != nil {
			observer.Debug(ctx, "page content extracted",
				observability.String("page.url", request.PageURL),
				observability.Int("page.markdown_chars", len(pageText)),
			)
		}
	}

	conversation := s.prompt.Build(request.History, pageText, request.Question)

	return provider.StreamMessage(ctx, ai.ChatRequest{
		Model:        cfg.Model,
		Messages:     conversation,
		SystemPrompt: cfg.SystemPrompt,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
	})
}

// Package anthropic implements [ai.StreamProvider] for Anthropic's Messages
// API. Anthropic authenticates via the x-api-key header (not a bearer token),
// requires a fixed anthropic-version header, and takes the system instruction
// as a top-level field rather than a conversation message.
package anthropic

import (
	"context"
	"net/http"
	"os"

	"github.com/askpage/askpage/internal/utils"
	"github.com/askpage/askpage/providers/ai"
	"github.com/askpage/askpage/providers/observability"
)

const (
	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	// Anthropic uses this to version-lock response formats independently of the URL.
	anthropicVersion = "2023-06-01"

	providerName = "anthropic"
)

// AnthropicProvider implements [ai.StreamProvider] for Anthropic's Messages
// API. Use [New] to construct a ready-to-use instance.
type AnthropicProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New returns an AnthropicProvider initialized from environment variables.
// It reads ANTHROPIC_API_KEY for authentication and ANTHROPIC_API_BASE_URL for
// the endpoint base (defaulting to https://api.anthropic.com/v1 when unset).
func New() *AnthropicProvider {
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &AnthropicProvider{
		apiKey:  os.Getenv("ANTHROPIC_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key used for authenticating requests and returns the
// provider so calls can be chained.
func (p *AnthropicProvider) WithAPIKey(apiKey string) *AnthropicProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the API base URL and returns the provider so calls can
// be chained. Use this when targeting a proxy or local testing endpoint.
func (p *AnthropicProvider) WithBaseURL(baseURL string) *AnthropicProvider {
	p.baseURL = baseURL
	return p
}

// WithHTTPClient replaces the default [http.Client] used for API calls and
// returns the provider so calls can be chained.
func (p *AnthropicProvider) WithHTTPClient(httpClient *http.Client) *AnthropicProvider {
	p.client = httpClient
	return p
}

// buildHeaders constructs the HTTP headers required for every Anthropic
// request. x-api-key carries the credential and anthropic-version pins the
// wire format.
func (p *AnthropicProvider) buildHeaders() []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: p.apiKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}
}

// StreamMessage implements [ai.StreamProvider] for Anthropic's Messages API.
// It sends a streaming request (stream=true) and returns an [ai.ChatStream]
// that yields text fragments from content_block_delta records; all other
// record types in the Anthropic SSE lifecycle
//
//	message_start → content_block_start → content_block_delta(s) →
//	content_block_stop → message_delta → message_stop
//
// carry no content and are skipped.
func (p *AnthropicProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	observer := observability.ObserverFromContext(ctx)

	if observer != nil {
		observer.Debug(ctx, "anthropic provider preparing streaming request",
			observability.String(observability.AttrProvider, providerName),
			observability.String(observability.AttrEndpoint, p.baseURL),
			observability.String(observability.AttrModel, request.Model),
			observability.Int(observability.AttrMessagesCount, len(request.Messages)),
		)
	}

	// Guard against missing credentials before making a network call.
	if p.apiKey == "" {
		return nil, &ai.ConfigurationError{Provider: providerName, Reason: "API key is not set"}
	}

	anthropicReq := requestToAnthropic(request)

	// Pass empty apiKey so DoPostStream does not inject a Bearer token;
	// Anthropic authenticates via x-api-key (set inside buildHeaders).
	httpResponse, err := utils.DoPostStream(ctx, p.client, p.baseURL+messagesEndpoint, "", anthropicReq, p.buildHeaders()...)
	if err != nil {
		if observer != nil {
			observer.Warn(ctx, "streaming HTTP request failed", observability.Error(err))
		}
		statusCode := 0
		if httpResponse != nil {
			statusCode = httpResponse.StatusCode
		}
		return nil, &ai.NetworkError{Provider: providerName, StatusCode: statusCode, Err: err}
	}

	return ai.Normalize(ctx, httpResponse.Body, recordDecoder{}), nil
}

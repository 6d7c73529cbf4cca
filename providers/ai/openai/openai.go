// Package openai implements [ai.StreamProvider] for OpenAI-compatible chat
// completions APIs. The same wire shape is spoken by OpenAI itself and by
// local servers such as Ollama and LM Studio; use [OpenAIProvider.AllowAnonymous]
// for local endpoints that require no credential.
package openai

import (
	"context"
	"net/http"
	"os"

	"github.com/askpage/askpage/internal/utils"
	"github.com/askpage/askpage/providers/ai"
	"github.com/askpage/askpage/providers/observability"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
	providerName            = "openai"
)

// OpenAIProvider implements [ai.StreamProvider] for the chat completions
// endpoint. Use [New] to construct a ready-to-use instance.
type OpenAIProvider struct {
	apiKey         string
	baseURL        string
	client         *http.Client
	allowAnonymous bool
}

// New returns an OpenAIProvider initialized from environment variables.
// It reads OPENAI_API_KEY for authentication and OPENAI_API_BASE_URL for the
// endpoint base (defaulting to https://api.openai.com/v1 when unset). Use the
// With* builders to override these values after construction.
func New() *OpenAIProvider {
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &OpenAIProvider{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key used for authenticating requests and returns the
// provider so calls can be chained.
func (p *OpenAIProvider) WithAPIKey(apiKey string) *OpenAIProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the API base URL and returns the provider so calls can
// be chained. Use this when targeting a proxy or local endpoint.
func (p *OpenAIProvider) WithBaseURL(baseURL string) *OpenAIProvider {
	p.baseURL = baseURL
	return p
}

// WithHTTPClient replaces the default [http.Client] used for API calls and
// returns the provider so calls can be chained.
func (p *OpenAIProvider) WithHTTPClient(httpClient *http.Client) *OpenAIProvider {
	p.client = httpClient
	return p
}

// AllowAnonymous marks this provider as not requiring a credential. Local
// OpenAI-compatible servers accept unauthenticated requests; with this set, no
// Authorization header is sent when the API key is empty and the missing-key
// precondition check is skipped.
func (p *OpenAIProvider) AllowAnonymous() *OpenAIProvider {
	p.allowAnonymous = true
	return p
}

// StreamMessage implements [ai.StreamProvider] for the chat completions
// endpoint. It sends a streaming request (stream=true) and returns an
// [ai.ChatStream] that yields content fragments as SSE records arrive.
func (p *OpenAIProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	observer := observability.ObserverFromContext(ctx)

	if observer != nil {
		observer.Debug(ctx, "openai provider preparing streaming request",
			observability.String(observability.AttrProvider, providerName),
			observability.String(observability.AttrEndpoint, p.baseURL),
			observability.String(observability.AttrModel, request.Model),
			observability.Int(observability.AttrMessagesCount, len(request.Messages)),
		)
	}

	// Guard against missing credentials before making a network call.
	if p.apiKey == "" && !p.allowAnonymous {
		return nil, &ai.ConfigurationError{Provider: providerName, Reason: "API key is not set"}
	}

	chatRequest := requestToChatCompletion(request)

	// Send the streaming request — body is left open for SSE reading.
	httpResponse, err := utils.DoPostStream(ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, chatRequest)
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

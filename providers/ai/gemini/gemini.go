// Package gemini implements [ai.StreamProvider] for the Gemini API. The
// streaming endpoint embeds the model name in the path and the credential in
// the URL query (no auth header); generation parameters nest under
// generationConfig and assistant messages are remapped to the "model" role.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/askpage/askpage/internal/utils"
	"github.com/askpage/askpage/providers/ai"
	"github.com/askpage/askpage/providers/observability"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	providerName   = "gemini"
)

// GeminiProvider implements [ai.StreamProvider] for the Gemini API.
// Use [New] to construct a ready-to-use instance.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New returns a GeminiProvider initialized from environment variables.
// It reads GEMINI_API_KEY for authentication and GEMINI_API_BASE_URL for the
// endpoint base (defaulting to the public generativelanguage endpoint when unset).
func New() *GeminiProvider {
	baseURL := os.Getenv("GEMINI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &GeminiProvider{
		apiKey:  os.Getenv("GEMINI_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key used for authenticating requests and returns the
// provider so calls can be chained.
func (p *GeminiProvider) WithAPIKey(apiKey string) *GeminiProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the API base URL and returns the provider so calls can
// be chained. Use this when targeting a proxy or local testing endpoint.
func (p *GeminiProvider) WithBaseURL(baseURL string) *GeminiProvider {
	p.baseURL = baseURL
	return p
}

// WithHTTPClient replaces the default [http.Client] used for API calls and
// returns the provider so calls can be chained.
func (p *GeminiProvider) WithHTTPClient(httpClient *http.Client) *GeminiProvider {
	p.client = httpClient
	return p
}

// StreamMessage implements [ai.StreamProvider] for the Gemini API. It POSTs to
// the streamGenerateContent endpoint with alt=sse and returns an
// [ai.ChatStream] that yields text fragments as SSE records arrive. The
// credential travels as the key query parameter, so no auth header is sent.
func (p *GeminiProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	observer := observability.ObserverFromContext(ctx)

	if observer != nil {
		observer.Debug(ctx, "gemini provider preparing streaming request",
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

	streamURL := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s",
		p.baseURL, url.PathEscape(request.Model), url.QueryEscape(p.apiKey))

	geminiRequest := requestToGemini(request)

	// Empty apiKey: the credential is already in the URL query.
	httpResponse, err := utils.DoPostStream(ctx, p.client, streamURL, "", geminiRequest)
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

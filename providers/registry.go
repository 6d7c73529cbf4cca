// Package providers maps logical provider identifiers to their
// [ai.StreamProvider] implementations. The mapping is a closed set resolved
// once at the start of a request; the resolved provider is then held as a
// single handle for the life of that request.
package providers

import (
	"github.com/askpage/askpage/providers/ai"
	"github.com/askpage/askpage/providers/ai/anthropic"
	"github.com/askpage/askpage/providers/ai/gemini"
	"github.com/askpage/askpage/providers/ai/openai"
)

// Logical provider identifiers.
const (
	IDOpenAI    = "openai"
	IDAnthropic = "anthropic"
	IDGemini    = "gemini"
	// IDLocal is an OpenAI-compatible server on the local machine (Ollama,
	// LM Studio). Same wire family as openai, but no credential is required.
	IDLocal = "local"
)

// IDs returns the supported provider identifiers in stable order.
func IDs() []string {
	return []string{IDOpenAI, IDAnthropic, IDGemini, IDLocal}
}

// ForID resolves a logical provider identifier into a configured
// [ai.StreamProvider]. An unknown identifier is a [ai.ConfigurationError];
// it is rejected before any network activity.
func ForID(providerID string, cfg ai.Config) (ai.StreamProvider, error) {
	switch providerID {
	case IDOpenAI:
		provider := openai.New().WithAPIKey(cfg.APIKey)
		if cfg.BaseURL != "" {
			provider.WithBaseURL(cfg.BaseURL)
		}
		return provider, nil

	case IDLocal:
		provider := openai.New().AllowAnonymous().WithAPIKey(cfg.APIKey)
		if cfg.BaseURL != "" {
			provider.WithBaseURL(cfg.BaseURL)
		}
		return provider, nil

	case IDAnthropic:
		provider := anthropic.New().WithAPIKey(cfg.APIKey)
		if cfg.BaseURL != "" {
			provider.WithBaseURL(cfg.BaseURL)
		}
		return provider, nil

	case IDGemini:
		provider := gemini.New().WithAPIKey(cfg.APIKey)
		if cfg.BaseURL != "" {
			provider.WithBaseURL(cfg.BaseURL)
		}
		return provider, nil

	default:
		return nil, &ai.ConfigurationError{Provider: providerID, Reason: "unknown provider identifier"}
	}
}

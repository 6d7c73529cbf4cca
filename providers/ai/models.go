package ai

/*
	##### PROVIDER INPUT #####
*/

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
)

// Message represents a single message in a conversation. An ordered slice of
// messages forms the conversation sent to a provider for one request; it is
// built fresh per request and never mutated afterwards.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatRequest represents a request to stream a chat completion.
// Messages holds the conversation except the system prompt, which travels in
// SystemPrompt so each provider can place it where its wire format expects it:
// an inline "system" message for OpenAI-compatible APIs, the top-level "system"
// field for Anthropic, and systemInstruction for Gemini.
type ChatRequest struct {
	Model        string    `json:"model,omitempty"`
	Messages     []Message `json:"messages"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	Temperature  float64   `json:"temperature,omitempty"`
	MaxTokens    int       `json:"max_tokens,omitempty"`
}

/*
	##### CONFIGURATION #####
*/

// Config is an immutable per-provider configuration snapshot. The config store
// owns the persistent values; a Config is read once at the start of a request
// and never mutated by any provider.
type Config struct {
	ID           string  `json:"id"`            // Logical provider identifier ("openai", "anthropic", "gemini", "local")
	BaseURL      string  `json:"base_url"`      // API base URL, without trailing slash
	APIKey       string  `json:"-"`             // Credential; optional for providers that allow anonymous access
	Model        string  `json:"model"`         // Model name sent to the provider
	Temperature  float64 `json:"temperature"`   // Sampling temperature
	MaxTokens    int     `json:"max_tokens"`    // Max output tokens
	SystemPrompt string  `json:"system_prompt"` // Active system instruction text
	Enabled      bool    `json:"enabled"`       // Whether the provider is selectable
}

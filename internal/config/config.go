// Package config loads runtime configuration from the environment (optionally
// seeded from a .env file) and exposes immutable per-provider snapshots for
// the request path.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/askpage/askpage/providers"
	"github.com/askpage/askpage/providers/ai"
)

// Config holds the daemon's runtime configuration.
type Config struct {
	// Server
	Port          int    `env:"PORT" envDefault:"8765"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"` // Defaults to http://localhost:<port>

	// Prompting
	MaxHistory   int     `env:"MAX_HISTORY" envDefault:"20"`
	Temperature  float64 `env:"TEMPERATURE" envDefault:"0.7"`
	MaxTokens    int     `env:"MAX_TOKENS" envDefault:"1024"`
	SystemPrompt string  `env:"SYSTEM_PROMPT" envDefault:"You are a helpful assistant that answers questions about the web page the user is currently reading. Answer concisely, using only the page content and conversation as context."`

	// Providers
	OpenAIKey        string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_API_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	AnthropicKey     string `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string `env:"ANTHROPIC_API_BASE_URL" envDefault:"https://api.anthropic.com/v1"`
	AnthropicModel   string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-latest"`
	GeminiKey        string `env:"GEMINI_API_KEY"`
	GeminiBaseURL    string `env:"GEMINI_API_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	LocalBaseURL     string `env:"LOCAL_API_BASE_URL" envDefault:"http://localhost:11434/v1"`
	LocalModel       string `env:"LOCAL_MODEL" envDefault:"llama3.2"`

	// Bookmarklet
	BookmarkletMaxAge time.Duration `env:"BOOKMARKLET_MAX_AGE" envDefault:"5m"`
}

// Load reads configuration from the environment with defaults, loading a .env
// file first when one is present.
func Load() Config {
	_ = godotenv.Load() // A missing .env file is not an error.

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	return cfg
}

// Providers returns the per-provider configuration snapshots. Key-based
// providers are enabled only when their credential is set; the local provider
// is always enabled since it accepts anonymous requests.
func (c Config) Providers() map[string]ai.Config {
	return map[string]ai.Config{
		providers.IDOpenAI: {
			ID:           providers.IDOpenAI,
			BaseURL:      c.OpenAIBaseURL,
			APIKey:       c.OpenAIKey,
			Model:        c.OpenAIModel,
			Temperature:  c.Temperature,
			MaxTokens:    c.MaxTokens,
			SystemPrompt: c.SystemPrompt,
			Enabled:      c.OpenAIKey != "",
		},
		providers.IDAnthropic: {
			ID:           providers.IDAnthropic,
			BaseURL:      c.AnthropicBaseURL,
			APIKey:       c.AnthropicKey,
			Model:        c.AnthropicModel,
			Temperature:  c.Temperature,
			MaxTokens:    c.MaxTokens,
			SystemPrompt: c.SystemPrompt,
			Enabled:      c.AnthropicKey != "",
		},
		providers.IDGemini: {
			ID:           providers.IDGemini,
			BaseURL:      c.GeminiBaseURL,
			APIKey:       c.GeminiKey,
			Model:        c.GeminiModel,
			Temperature:  c.Temperature,
			MaxTokens:    c.MaxTokens,
			SystemPrompt: c.SystemPrompt,
			Enabled:      c.GeminiKey != "",
		},
		providers.IDLocal: {
			ID:           providers.IDLocal,
			BaseURL:      c.LocalBaseURL,
			Model:        c.LocalModel,
			Temperature:  c.Temperature,
			MaxTokens:    c.MaxTokens,
			SystemPrompt: c.SystemPrompt,
			Enabled:      true,
		},
	}
}

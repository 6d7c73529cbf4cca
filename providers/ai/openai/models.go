package openai

import (
	"encoding/json"
	"fmt"

	"github.com/askpage/askpage/providers/ai"
)

// chatCompletionRequest is the wire format POSTed to /chat/completions.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// requestToChatCompletion converts an ai.ChatRequest to the chat completions
// wire format. The system prompt travels inline as the first message — this
// API has no separate system field.
func requestToChatCompletion(request ai.ChatRequest) chatCompletionRequest {
	messages := make([]chatMessage, 0, len(request.Messages)+1)

	if request.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: string(ai.RoleSystem), Content: request.SystemPrompt})
	}
	for _, message := range request.Messages {
		messages = append(messages, chatMessage{Role: string(message.Role), Content: message.Content})
	}

	return chatCompletionRequest{
		Model:       request.Model,
		Messages:    messages,
		Stream:      true,
		Temperature: request.Temperature,
		MaxTokens:   request.MaxTokens,
	}
}

// chatCompletionChunk is one streamed SSE record. Only the delta content path
// is decoded; role-only and heartbeat records carry no content.
type chatCompletionChunk struct {
	Choices []chunkChoice `json:"choices"`
}

type chunkChoice struct {
	Delta chunkDelta `json:"delta"`
}

type chunkDelta struct {
	Content *string `json:"content"`
}

// recordDecoder decodes chat completion stream records for [ai.Normalize].
// The [DONE] terminator never reaches this decoder; the SSE scanner consumes it.
type recordDecoder struct{}

func (recordDecoder) DecodeRecord(payload string) (string, error) {
	var chunk chatCompletionChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return "", fmt.Errorf("failed to parse chat completion chunk: %w", err)
	}

	if len(chunk.Choices) == 0 {
		return "", nil
	}
	delta := chunk.Choices[0].Delta
	if delta.Content == nil {
		return "", nil
	}
	return *delta.Content, nil
}

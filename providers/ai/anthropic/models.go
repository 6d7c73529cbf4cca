package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/askpage/askpage/providers/ai"
)

// defaultMaxTokens is used when the request does not specify a limit;
// Anthropic requires max_tokens on every request.
const defaultMaxTokens = 4096

// anthropicRequest is the wire format POSTed to /messages. The system
// instruction is a top-level field; only non-system messages belong in
// Messages.
type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Stream      bool               `json:"stream"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// requestToAnthropic converts an ai.ChatRequest to the Messages API wire
// format. System-role content is extracted out of the conversation into the
// top-level system field; a stray system message inside Messages is folded in
// the same way rather than sent with an unsupported role.
func requestToAnthropic(request ai.ChatRequest) anthropicRequest {
	systemParts := make([]string, 0, 2)
	if request.SystemPrompt != "" {
		systemParts = append(systemParts, request.SystemPrompt)
	}

	messages := make([]anthropicMessage, 0, len(request.Messages))
	for _, message := range request.Messages {
		if message.Role == ai.RoleSystem {
			systemParts = append(systemParts, message.Content)
			continue
		}
		messages = append(messages, anthropicMessage{Role: string(message.Role), Content: message.Content})
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	req := anthropicRequest{
		Model:     request.Model,
		System:    strings.Join(systemParts, "\n\n"),
		Messages:  messages,
		MaxTokens: maxTokens,
		Stream:    true,
	}
	if request.Temperature > 0 {
		temperature := request.Temperature
		req.Temperature = &temperature
	}
	return req
}

// streamRecord is the envelope of one Anthropic SSE record. Type discriminates
// the lifecycle event; only content_block_delta records carry text.
type streamRecord struct {
	Type  string       `json:"type"`
	Delta *recordDelta `json:"delta"`
	Error *recordError `json:"error"`
}

type recordDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type recordError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// recordDecoder decodes Messages API stream records for [ai.Normalize].
// Lifecycle records (message_start, content_block_start, content_block_stop,
// message_delta, message_stop, ping) are silently skipped — the stream ends on
// natural exhaustion of the byte source. Explicit "error" records terminate
// the stream.
type recordDecoder struct{}

func (recordDecoder) DecodeRecord(payload string) (string, error) {
	var record streamRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return "", fmt.Errorf("failed to parse stream record: %w", err)
	}

	switch record.Type {
	case "content_block_delta":
		if record.Delta == nil {
			return "", nil
		}
		return record.Delta.Text, nil

	case "error":
		message := "unknown stream error"
		if record.Error != nil && record.Error.Message != "" {
			message = record.Error.Message
		}
		return "", &ai.StreamError{Message: message}

	default:
		// message_start, content_block_start, content_block_stop,
		// message_delta, message_stop, ping, and any future record types
		// contribute no content.
		return "", nil
	}
}

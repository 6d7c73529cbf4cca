package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/askpage/askpage/providers/ai"
)

// generateContentRequest is the wire format POSTed to streamGenerateContent.
type generateContentRequest struct {
	SystemInstruction *systemInstruction `json:"systemInstruction,omitempty"`
	Contents          []content          `json:"contents"`
	GenerationConfig  *generationConfig  `json:"generationConfig,omitempty"`
}

type systemInstruction struct {
	Parts []part `json:"parts"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// requestToGemini converts an ai.ChatRequest to the Gemini wire format.
// Role mapping: user -> user, assistant -> model; a stray system message
// inside the conversation is sent as a user turn since Gemini only accepts
// user and model roles in contents.
func requestToGemini(request ai.ChatRequest) generateContentRequest {
	req := generateContentRequest{}

	if request.SystemPrompt != "" {
		req.SystemInstruction = &systemInstruction{
			Parts: []part{{Text: request.SystemPrompt}},
		}
	}

	for _, message := range request.Messages {
		role := "user"
		if message.Role == ai.RoleAssistant {
			role = "model"
		}
		req.Contents = append(req.Contents, content{
			Role:  role,
			Parts: []part{{Text: message.Content}},
		})
	}

	if request.Temperature > 0 || request.MaxTokens > 0 {
		req.GenerationConfig = &generationConfig{
			Temperature:     request.Temperature,
			MaxOutputTokens: request.MaxTokens,
		}
	}

	return req
}

// generateContentChunk is one streamed SSE record. Each record carries the
// newly generated text in candidates[0].content.parts[0].text.
type generateContentChunk struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content *candidateContent `json:"content"`
}

type candidateContent struct {
	Parts []part `json:"parts"`
}

// recordDecoder decodes streamGenerateContent records for [ai.Normalize].
// Records without the candidates[0].content.parts[0].text path (safety
// metadata, usage-only chunks) carry no content and are skipped.
type recordDecoder struct{}

func (recordDecoder) DecodeRecord(payload string) (string, error) {
	var chunk generateContentChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return "", fmt.Errorf("failed to parse generateContent chunk: %w", err)
	}

	if len(chunk.Candidates) == 0 {
		return "", nil
	}
	chunkContent := chunk.Candidates[0].Content
	if chunkContent == nil || len(chunkContent.Parts) == 0 {
		return "", nil
	}
	return chunkContent.Parts[0].Text, nil
}

// Package prompt assembles the per-request conversation sent to a provider:
// bounded prior history followed by the combined page-context-plus-question
// user message. The active system instruction is not part of the assembled
// messages; it travels separately so each provider can place it where its wire
// format expects it.
package prompt

import (
	"fmt"
	"strings"

	"github.com/askpage/askpage/providers/ai"
)

// DefaultMaxHistory bounds the prior history when the builder does not
// specify a limit.
const DefaultMaxHistory = 20

// Builder assembles conversations. The zero value is usable and applies
// [DefaultMaxHistory].
type Builder struct {
	// MaxHistory is the maximum number of prior messages kept; when the
	// history is longer, the oldest entries are dropped first.
	MaxHistory int
}

// Build returns a fresh conversation for one request: the bounded tail of
// history followed by one user message combining the page text and the
// question. The input slice is never mutated and the result is owned solely
// by the request that built it.
func (b Builder) Build(history []ai.Message, pageText, question string) []ai.Message {
	maxHistory := b.MaxHistory
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	conversation := make([]ai.Message, 0, len(history)+1)
	conversation = append(conversation, history...)
	conversation = append(conversation, ai.Message{
		Role:    ai.RoleUser,
		Content: Combine(pageText, question),
	})
	return conversation
}

// Combine merges the extracted page text and the user's question into a single
// user-message body. When no page text is available the question is sent alone.
func Combine(pageText, question string) string {
	if strings.TrimSpace(pageText) == "" {
		return question
	}
	return fmt.Sprintf("Here is the content of the web page I am reading:\n\n%s\n\nQuestion: %s", pageText, question)
}

package ai

import (
	"iter"
	"strings"
)

// StreamEventType identifies the kind of event carried by a StreamEvent.
type StreamEventType string

const (
	// StreamEventContent carries one decoded text fragment.
	StreamEventContent StreamEventType = "content"
	// StreamEventDone signals that the stream has finished normally.
	// It is always the last event of a successful stream.
	StreamEventDone StreamEventType = "done"
	// StreamEventError signals an error that terminated the stream.
	// It is always the last event of a failed stream.
	StreamEventError StreamEventType = "error"
)

// StreamEvent is a single event in the normalized, provider-agnostic event
// sequence. Events arrive in strict order; StreamEventDone and StreamEventError
// are terminal — no events follow them.
type StreamEvent struct {
	Type    StreamEventType `json:"type"`
	Content string          `json:"content,omitempty"` // Text fragment (Type == StreamEventContent)
	Error   string          `json:"error,omitempty"`   // Error message (Type == StreamEventError)
}

// ChatStream wraps a streaming iterator over normalized events. It is lazy,
// forward-only, and non-restartable: each instance can be consumed exactly once.
//
// Important: callers must consume the stream, either by iterating with Iter()
// (breaking out of the loop early is fine) or by calling Collect(). The
// underlying HTTP response body is only released when the iterator completes
// or is abandoned via a loop break. Constructing a ChatStream and never
// iterating it will leak the connection.
type ChatStream struct {
	iterator iter.Seq2[StreamEvent, error]
}

// NewChatStream creates a ChatStream from a raw streaming iterator.
// The iterator yields StreamEvent values with a nil error for normal events;
// a terminal failure is yielded as a StreamEventError event paired with the
// non-nil error so both range-based callers and Collect observe it.
func NewChatStream(iterator iter.Seq2[StreamEvent, error]) *ChatStream {
	return &ChatStream{iterator: iterator}
}

// Iter returns the underlying iterator for use with range-over-func loops.
//
// Example:
//
//	for event, err := range stream.Iter() {
//	    if err != nil { handle error }
//	    fmt.Print(event.Content)
//	}
func (stream *ChatStream) Iter() iter.Seq2[StreamEvent, error] {
	return stream.iterator
}

// Collect consumes the entire stream and returns the concatenated fragment
// text. A mid-stream error terminates collection and returns the text decoded
// so far together with the error — partial output is preserved, not discarded.
func (stream *ChatStream) Collect() (string, error) {
	var builder strings.Builder

	for event, err := range stream.iterator {
		if err != nil {
			return builder.String(), err
		}
		if event.Type == StreamEventContent {
			builder.WriteString(event.Content)
		}
	}

	return builder.String(), nil
}

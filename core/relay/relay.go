// Package relay encodes a normalized event sequence as Server-Sent Events for
// the browser client: one JSON record per content fragment, one record
// carrying the message for a terminal error, and a literal [DONE] marker for
// normal completion.
package relay

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/askpage/askpage/providers/ai"
)

// Terminator is the literal end-of-stream marker relayed to the client.
const Terminator = "[DONE]"

// record is the client-facing shape of one relayed event.
type record struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Stream consumes stream and relays it to w as SSE records, flushing after
// every event so fragments reach the client as they arrive. The sequence a
// client observes is always one of: fragments then [DONE], fragments then an
// error record, or an error record alone — never a silent truncation.
//
// A write or flush failure means the client went away; Stream returns the
// write error, and abandoning the iteration releases the upstream connection.
func Stream(w http.ResponseWriter, stream *ai.ChatStream) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for event, err := range stream.Iter() {
		switch event.Type {
		case ai.StreamEventContent:
			if writeErr := writeRecord(w, record{Content: event.Content}); writeErr != nil {
				return writeErr
			}

		case ai.StreamEventError:
			message := event.Error
			if message == "" && err != nil {
				message = err.Error()
			}
			if writeErr := writeRecord(w, record{Error: message}); writeErr != nil {
				return writeErr
			}
			flusher.Flush()
			return nil

		case ai.StreamEventDone:
			if _, writeErr := fmt.Fprintf(w, "data: %s\n\n", Terminator); writeErr != nil {
				return writeErr
			}
			flusher.Flush()
			return nil
		}
		flusher.Flush()
	}

	return nil
}

func writeRecord(w http.ResponseWriter, rec record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal relay record: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("failed to write relay record: %w", err)
	}
	return nil
}

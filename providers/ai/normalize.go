package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kaptinlin/jsonrepair"

	"github.com/askpage/askpage/internal/utils"
)

// RecordDecoder is the per-family decoding strategy applied to each complete
// wire record. Implementations are selected once per request, before the first
// record arrives, and hold no state that outlives the request.
//
// DecodeRecord returns the text fragment carried by one record. An empty
// fragment with a nil error means the record carries no content (heartbeat,
// lifecycle record, role-only delta) and nothing is emitted. A [StreamError]
// return terminates the stream; any other error marks the record as malformed
// and is handled by the decode-tolerance policy.
type RecordDecoder interface {
	DecodeRecord(payload string) (fragment string, err error)
}

// maxConsecutiveDecodeFailures bounds the decode-tolerance policy. Individual
// malformed records are skipped so heartbeat noise and truncated trailing
// records cannot abort a stream, but when this many records in a row fail to
// decode the failure is systemic (e.g. the wrong decoder for the wire format)
// and the stream terminates with an error instead of silently producing an
// empty response. Any successfully decoded record resets the counter.
const maxConsecutiveDecodeFailures = 25

// Normalize consumes an open incremental HTTP response body and re-emits it as
// a provider-agnostic ordered event sequence. It owns body exclusively for the
// life of the stream and closes it on every exit path: normal completion,
// error, and early abandonment by the caller.
//
// The state machine is single-pass with no backtracking:
//
//   - bytes are split into blank-line-delimited "data:" records by
//     [utils.SSEScanner], buffering any trailing partial record
//   - each complete record is decoded by the per-family decoder; each non-empty
//     fragment becomes exactly one StreamEventContent, in arrival order
//   - the [DONE] sentinel or clean exhaustion of the byte stream yields a
//     terminal StreamEventDone
//   - a transport read error, context cancellation, a provider-signalled
//     [StreamError], or escalation of the decode-tolerance policy yields a
//     terminal StreamEventError
//
// Fragments already emitted before a failure are never retracted. The iterator
// is pull-driven: each event is handed to the caller before the next chunk is
// requested, so a slow caller naturally throttles the read rate.
func Normalize(ctx context.Context, body io.ReadCloser, decoder RecordDecoder) *ChatStream {
	scanner := utils.NewSSEScanner(body)

	iteratorFunc := func(yield func(StreamEvent, error) bool) {
		defer utils.CloseWithLog(body)

		consecutiveFailures := 0

		for {
			// Respect context cancellation between record reads.
			if ctx.Err() != nil {
				yieldError(yield, ctx.Err())
				return
			}

			payload, scanErr := scanner.Next()
			if scanErr == io.EOF {
				// Natural end of stream: either the provider's explicit
				// terminator record or clean exhaustion of the byte source.
				yield(StreamEvent{Type: StreamEventDone}, nil)
				return
			}
			if scanErr != nil {
				// Abrupt transport close before a natural end. Never a silent
				// done: the caller must see that the stream was truncated.
				yieldError(yield, fmt.Errorf("stream read error: %w", scanErr))
				return
			}

			fragment, decodeErr := decodeWithRepair(decoder, payload)
			if decodeErr != nil {
				var streamErr *StreamError
				if errors.As(decodeErr, &streamErr) {
					yieldError(yield, decodeErr)
					return
				}

				consecutiveFailures++
				if consecutiveFailures >= maxConsecutiveDecodeFailures {
					yieldError(yield, fmt.Errorf("%d consecutive undecodable records, aborting: %w", consecutiveFailures, decodeErr))
					return
				}
				// Tolerated: a single malformed record must not abort the stream.
				continue
			}
			consecutiveFailures = 0

			if fragment == "" {
				continue
			}

			if !yield(StreamEvent{Type: StreamEventContent, Content: fragment}, nil) {
				return // Caller stopped iterating
			}
		}
	}

	return NewChatStream(iteratorFunc)
}

// decodeWithRepair applies the decoder to a record payload, giving malformed
// JSON one repair attempt before reporting failure. Providers occasionally
// emit records with relaxed JSON (unquoted keys, trailing commas); jsonrepair
// recovers those without loosening the typed decoding itself.
func decodeWithRepair(decoder RecordDecoder, payload string) (string, error) {
	fragment, err := decoder.DecodeRecord(payload)
	if err == nil {
		return fragment, nil
	}

	var streamErr *StreamError
	if errors.As(err, &streamErr) {
		return "", err
	}

	repaired, repairErr := jsonrepair.JSONRepair(payload)
	if repairErr != nil {
		return "", err
	}

	fragment, retryErr := decoder.DecodeRecord(repaired)
	if retryErr != nil {
		return "", err
	}
	return fragment, nil
}

// yieldError emits the terminal error event. The event carries the message for
// callers that relay the sequence verbatim; the paired non-nil error serves
// range loops and Collect.
func yieldError(yield func(StreamEvent, error) bool, err error) {
	yield(StreamEvent{Type: StreamEventError, Error: err.Error()}, err)
}

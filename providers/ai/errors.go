package ai

import "fmt"

// ConfigurationError indicates that a request was rejected before any network
// call was made: a required credential is missing, or an unknown provider
// identifier was selected. It is never retryable and is surfaced to the caller
// as a rejection rather than a streamed event.
type ConfigurationError struct {
	Provider string // Logical provider identifier
	Reason   string // Human-readable explanation
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: configuration error: %s", e.Provider, e.Reason)
}

// NetworkError indicates a transport-level failure reaching the provider, or a
// non-2xx status on the initial HTTP response. StatusCode is zero when the
// request never produced a response.
type NetworkError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: request failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StreamError is returned by a RecordDecoder when the provider explicitly
// signals a failure inside the stream (for example an Anthropic "error" event).
// Unlike a malformed record, which the decode-tolerance policy skips, a
// StreamError always terminates the stream.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("provider stream error: %s", e.Message)
}

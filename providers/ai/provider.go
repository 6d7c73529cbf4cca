package ai

import "context"

// StreamProvider is the core interface every backend implementation must
// satisfy. A provider instance is selected once at the start of a request and
// held for the life of that request; implementations share no state between
// requests.
type StreamProvider interface {
	// StreamMessage sends a chat request and returns a ChatStream that yields
	// content fragments as they arrive from the API. Pre-stream failures are
	// returned as a normal error: a [ConfigurationError] when a required
	// credential is missing (raised before any network call), or a
	// [NetworkError] for transport failures and non-2xx initial responses.
	// Mid-stream failures are yielded through the iterator.
	StreamMessage(ctx context.Context, request ChatRequest) (*ChatStream, error)
}

// Package observability provides the context-carried structured logging hooks
// used by the provider adapters and the stream normalizer. An Observer travels
// in the request context; components emit attributes against it when one is
// present and stay silent otherwise, so the core has no hard logging
// dependency.
package observability

import (
	"context"
	"time"
)

// Observer provides structured logging capabilities for one request flow.
type Observer interface {
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// Attribute represents a key-value pair for log metadata.
type Attribute struct {
	Key   string
	Value interface{}
}

// String creates a string attribute
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error creates an error attribute
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: "error", Value: ""}
	}
	return Attribute{Key: "error", Value: err.Error()}
}

// Common attribute keys shared across providers so log output stays queryable.
const (
	AttrProvider      = "llm.provider"
	AttrEndpoint      = "llm.endpoint"
	AttrModel         = "llm.model"
	AttrMessagesCount = "llm.request.messages_count"
	AttrHTTPStatus    = "http.status_code"
)

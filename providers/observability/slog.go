package observability

import (
	"context"
	"log/slog"
)

// SlogObserver adapts a *slog.Logger to the Observer interface so the daemon's
// structured logger can be carried into the provider layer through the context.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver wraps logger as an Observer. A nil logger falls back to
// slog.Default().
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) Debug(ctx context.Context, msg string, attrs ...Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelDebug, msg, toSlogAttrs(attrs)...)
}

func (o *SlogObserver) Info(ctx context.Context, msg string, attrs ...Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelInfo, msg, toSlogAttrs(attrs)...)
}

func (o *SlogObserver) Warn(ctx context.Context, msg string, attrs ...Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelWarn, msg, toSlogAttrs(attrs)...)
}

func (o *SlogObserver) Error(ctx context.Context, msg string, attrs ...Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelError, msg, toSlogAttrs(attrs)...)
}

func toSlogAttrs(attrs []Attribute) []slog.Attr {
	slogAttrs := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		slogAttrs = append(slogAttrs, slog.Any(attr.Key, attr.Value))
	}
	return slogAttrs
}

package ir

import (
	"context"
	"fmt"
	"log/slog"
)

// lazyString renders types and functor sets only once a record is actually written
type lazyString struct{ fmt.Stringer }

func (l lazyString) LogValue() slog.Value { return slog.StringValue(l.Stringer.String()) }

func lazyAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindAny {
		return attr
	}
	switch value := attr.Value.Any().(type) {
	case Ty:
		attr.Value = slog.AnyValue(lazyString{value})
	case FunctorSet:
		attr.Value = slog.AnyValue(lazyString{value})
	}
	return attr
}

// IRSlogHandler is a slog.Handler that prints types and functor sets in their
// internal notation, such as ?3 or f?1
func IRSlogHandler(underlying slog.Handler) slog.Handler {
	return &irLogHandler{underlying: underlying}
}

type irLogHandler struct {
	underlying slog.Handler
}

func (l *irLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return l.underlying.Enabled(ctx, level)
}

func (l *irLogHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		newRecord.AddAttrs(lazyAttr(attr))
		return true
	})
	return l.underlying.Handle(ctx, newRecord)
}

func (l *irLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		wrapped[i] = lazyAttr(attr)
	}
	return IRSlogHandler(l.underlying.WithAttrs(wrapped))
}

func (l *irLogHandler) WithGroup(name string) slog.Handler {
	return IRSlogHandler(l.underlying.WithGroup(name))
}

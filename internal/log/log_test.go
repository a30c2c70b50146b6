package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	text := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(&filteringHandler{underlying: text})
}

func TestFilteringHandler(t *testing.T) {
	tests := []struct {
		name    string
		log     func(*slog.Logger)
		written bool
	}{
		{"warn without section", func(l *slog.Logger) { l.Warn("w") }, true},
		{"debug without section", func(l *slog.Logger) { l.Debug("d") }, false},
		{"debug in section", func(l *slog.Logger) { l.Debug("d", "section", "typeck") }, true},
		{"debug in subsection", func(l *slog.Logger) { l.Debug("d", "section", "typeck.solve") }, true},
		{"debug in other section", func(l *slog.Logger) { l.Debug("d", "section", "codegen") }, false},
		{"debug with section from With", func(l *slog.Logger) { l.With("section", "fixture").Debug("d") }, true},
		{"debug in group with section", func(l *slog.Logger) { l.With("section", "fixture").WithGroup("g").Debug("d") }, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			test.log(newTestLogger(buf))
			assert.Equal(t, test.written, buf.Len() > 0, buf.String())
		})
	}
}

func TestSetLevel(t *testing.T) {
	defer SetLevel(level.Level())
	SetLevel(slog.LevelDebug)
	assert.True(t, DefaultLogger.Enabled(context.Background(), slog.LevelDebug))
	SetLevel(slog.LevelError)
	assert.False(t, DefaultLogger.Enabled(context.Background(), slog.LevelWarn))
}

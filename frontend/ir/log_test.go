package ir_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/cottand/qtc/frontend/ir"
	"github.com/stretchr/testify/assert"
)

func TestIRSlogHandler(t *testing.T) {
	buf := &bytes.Buffer{}
	text := slog.NewTextHandler(buf, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	logger := slog.New(ir.IRSlogHandler(text)).With("functors", ir.FunctorInfer(1))

	logger.Info("bind", "id", ir.InferTyId(3), "ty", ir.Array{Item: ir.Infer{ID: 2}}, "count", 2)
	assert.Equal(t, "level=INFO msg=bind functors=f?1 id=?3 ty=?2[] count=2\n", buf.String())
}

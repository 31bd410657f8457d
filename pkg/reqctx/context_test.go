package reqctx

import (
	"context"
	"slices"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestLogAttrs(t *testing.T) {
	tid, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	sid, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	traced := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: tid,
		SpanID:  sid,
	}))

	tests := []struct {
		name string
		ctx  context.Context
		want []any
	}{
		{"empty", context.Background(), nil},
		{"request only", WithRequestMeta(context.Background(), &RequestMeta{RequestID: "r1"}), []any{"request_id", "r1"}},
		{"trace only", traced, []any{"trace_id", tid.String()}},
		{"both", WithRequestMeta(traced, &RequestMeta{RequestID: "r2"}), []any{"request_id", "r2", "trace_id", tid.String()}},
		{"nil meta", WithRequestMeta(context.Background(), nil), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LogAttrs(tt.ctx); !slices.Equal(got, tt.want) {
				t.Errorf("LogAttrs() = %v, want %v", got, tt.want)
			}
		})
	}
}

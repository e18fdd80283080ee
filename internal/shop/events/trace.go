package events

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the ids of the span active when an event was recorded.
type TraceInfo struct {
	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`
}

// ExtractTraceInfo returns the active span's ids, or empty strings when ctx
// carries no valid span.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

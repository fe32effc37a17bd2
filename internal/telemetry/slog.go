// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// ContextAttrFunc extracts a log attribute from a request context. It
// reports false when the context carries nothing to add.
type ContextAttrFunc func(ctx context.Context) (slog.Attr, bool)

// traceHandler adds trace_id and span_id to records logged with a context
// carrying a valid span, plus whatever the extractors find.
type traceHandler struct {
	inner      slog.Handler
	extractors []ContextAttrFunc
}

// NewTraceHandler wraps inner with trace correlation. Extractors run in
// order on every record after the trace attributes.
func NewTraceHandler(
	inner slog.Handler,
	extractors ...ContextAttrFunc,
) slog.Handler {
	return &traceHandler{
		inner:      inner,
		extractors: extractors,
	}
}

func (h *traceHandler) Enabled(
	ctx context.Context,
	level slog.Level,
) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *traceHandler) Handle(
	ctx context.Context,
	record slog.Record,
) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	for _, extract := range h.extractors {
		if attr, ok := extract(ctx); ok {
			record.AddAttrs(attr)
		}
	}

	return h.inner.Handle(ctx, record)
}

func (h *traceHandler) WithAttrs(
	attrs []slog.Attr,
) slog.Handler {
	return &traceHandler{
		inner:      h.inner.WithAttrs(attrs),
		extractors: h.extractors,
	}
}

func (h *traceHandler) WithGroup(
	name string,
) slog.Handler {
	return &traceHandler{
		inner:      h.inner.WithGroup(name),
		extractors: h.extractors,
	}
}

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
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/retr0h/gatekeeper/internal/audit"
)

const meterName = "github.com/retr0h/gatekeeper"

// Instruments holds the counters recorded by the gate and the audit store.
type Instruments struct {
	decisions metric.Int64Counter
	events    metric.Int64Counter
}

// NewInstruments registers the gatekeeper counters on provider.
func NewInstruments(
	provider metric.MeterProvider,
) (*Instruments, error) {
	meter := provider.Meter(meterName)

	decisions, err := meter.Int64Counter(
		"gate.decisions",
		metric.WithDescription("Pipeline stage decisions by stage and outcome."),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gate.decisions counter: %w", err)
	}

	events, err := meter.Int64Counter(
		"audit.events",
		metric.WithDescription("Recorded audit events by type and severity."),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating audit.events counter: %w", err)
	}

	return &Instruments{decisions: decisions, events: events}, nil
}

// RecordDecision counts one stage decision.
func (i *Instruments) RecordDecision(
	ctx context.Context,
	stage string,
	outcome string,
) {
	i.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("outcome", outcome),
	))
}

// ObserveEvent counts one audit event. It matches audit.WithObserver.
func (i *Instruments) ObserveEvent(
	e audit.Event,
) {
	i.events.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("type", string(e.EventType)),
		attribute.String("severity", string(e.Severity)),
	))
}

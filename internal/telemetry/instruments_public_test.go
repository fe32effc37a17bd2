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

package telemetry_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/retr0h/gatekeeper/internal/audit"
	"github.com/retr0h/gatekeeper/internal/telemetry"
)

type InstrumentsPublicTestSuite struct {
	suite.Suite

	ctx    context.Context
	reader *sdkmetric.ManualReader
	inst   *telemetry.Instruments
}

func (s *InstrumentsPublicTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.reader = sdkmetric.NewManualReader()

	inst, err := telemetry.NewInstruments(
		sdkmetric.NewMeterProvider(sdkmetric.WithReader(s.reader)),
	)
	s.Require().NoError(err)
	s.inst = inst
}

// counts returns the sum of every data point of the named counter keyed by
// the joined attribute values.
func (s *InstrumentsPublicTestSuite) counts(
	name string,
	keys ...attribute.Key,
) map[string]int64 {
	var rm metricdata.ResourceMetrics
	s.Require().NoError(s.reader.Collect(s.ctx, &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			s.Require().True(ok)
			for _, dp := range sum.DataPoints {
				label := ""
				for i, k := range keys {
					v, _ := dp.Attributes.Value(k)
					if i > 0 {
						label += "/"
					}
					label += v.AsString()
				}
				out[label] += dp.Value
			}
		}
	}

	return out
}

func (s *InstrumentsPublicTestSuite) TestRecordDecision() {
	s.inst.RecordDecision(s.ctx, "screen", "pass")
	s.inst.RecordDecision(s.ctx, "screen", "pass")
	s.inst.RecordDecision(s.ctx, "rate_limit", "429")

	got := s.counts("gate.decisions", "stage", "outcome")

	s.Equal(map[string]int64{
		"screen/pass":    2,
		"rate_limit/429": 1,
	}, got)
}

func (s *InstrumentsPublicTestSuite) TestObserveEventThroughStore() {
	store := audit.NewMemoryStore(
		slog.New(slog.DiscardHandler),
		audit.WithObserver(s.inst.ObserveEvent),
	)

	store.Record(s.ctx, audit.RateLimitExceeded(
		"10.0.0.1",
		"curl/8.0",
		"/api/x",
		"api",
		60,
		audit.SeverityHigh,
	))
	store.Record(s.ctx, audit.Input{
		EventType: audit.EventLogout,
		Severity:  audit.SeverityLow,
		Success:   true,
	})

	got := s.counts("audit.events", "type", "severity")

	s.Equal(int64(1), got["rate_limit_exceeded/high"])
	s.Equal(int64(1), got["logout/low"])
}

func TestInstrumentsPublicTestSuite(t *testing.T) {
	suite.Run(t, new(InstrumentsPublicTestSuite))
}

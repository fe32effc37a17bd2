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
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"

	"github.com/retr0h/gatekeeper/internal/config"
)

type MetricsTestSuite struct {
	suite.Suite
}

func (s *MetricsTestSuite) TestInitMeter() {
	tests := []struct {
		name     string
		cfg      config.MetricsConfig
		wantPath string
	}{
		{
			name:     "when path is empty uses default",
			wantPath: DefaultMetricsPath,
		},
		{
			name:     "when path is configured uses it",
			cfg:      config.MetricsConfig{Path: "/internal/metrics"},
			wantPath: "/internal/metrics",
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			m, err := InitMeter("gatekeeper", "v0.0.0", tc.cfg)

			s.Require().NoError(err)
			s.NotNil(m.Handler)
			s.NotNil(m.Registry)
			s.Equal(tc.wantPath, m.Path)
			s.NoError(m.Shutdown(context.Background()))
		})
	}
}

func (s *MetricsTestSuite) TestScrapeIncludesCounters() {
	m, err := InitMeter("gatekeeper", "v0.0.0", config.MetricsConfig{})
	s.Require().NoError(err)
	defer func() { _ = m.Shutdown(context.Background()) }()

	inst, err := NewInstruments(otel.GetMeterProvider())
	s.Require().NoError(err)
	inst.RecordDecision(context.Background(), "screen", "deny")

	rec := httptest.NewRecorder()
	m.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, m.Path, nil))

	body, err := io.ReadAll(rec.Body)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Regexp(`gate[._]decisions`, string(body))
	s.Contains(string(body), "go_goroutines")
}

func (s *MetricsTestSuite) TestInitMeterExporterError() {
	original := prometheusNewFn
	defer func() { prometheusNewFn = original }()

	prometheusNewFn = func(
		_ ...prometheus.Option,
	) (*prometheus.Exporter, error) {
		return nil, errors.New("registry closed")
	}

	m, err := InitMeter("gatekeeper", "v0.0.0", config.MetricsConfig{})

	s.Error(err)
	s.Contains(err.Error(), "creating prometheus exporter")
	s.Nil(m)
}

func TestMetricsTestSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

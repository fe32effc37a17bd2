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
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/retr0h/gatekeeper/internal/config"
)

// Replaced in tests.
var prometheusNewFn = prometheus.New

// DefaultMetricsPath is used when no path is configured.
const DefaultMetricsPath = "/metrics"

// Meter is the installed meter provider and its scrape endpoint.
type Meter struct {
	// Handler serves the Prometheus text format for Registry.
	Handler  http.Handler
	Path     string
	Registry *promclient.Registry
	Shutdown ShutdownFunc
}

// InitMeter installs a global meter provider exporting to a private
// Prometheus registry. The registry also carries the Go runtime and process
// collectors, so the scrape endpoint reports heap and file descriptor usage
// next to the gate counters.
func InitMeter(
	serviceName string,
	serviceVersion string,
	cfg config.MetricsConfig,
) (*Meter, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultMetricsPath
	}

	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheusNewFn(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(serviceResource(serviceName, serviceVersion)),
	)
	otel.SetMeterProvider(mp)

	return &Meter{
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Path:     path,
		Registry: registry,
		Shutdown: mp.Shutdown,
	}, nil
}

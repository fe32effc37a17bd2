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

package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/retr0h/gatekeeper/internal/cli"
	"github.com/retr0h/gatekeeper/internal/telemetry"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gatekeeper server",
	Long: `Start the HTTP server with the request gate in front of every route,
plus the housekeeping scheduler. Shuts down gracefully on SIGINT/SIGTERM.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		shutdownTracer, err := telemetry.InitTracer(
			ctx,
			"gatekeeper",
			buildVersion().GitVersion,
			appConfig.Telemetry.Tracing,
		)
		if err != nil {
			cli.LogFatal(logger, "failed to initialize tracer", err)
		}

		meter, err := telemetry.InitMeter(
			"gatekeeper",
			buildVersion().GitVersion,
			appConfig.Telemetry.Metrics,
		)
		if err != nil {
			cli.LogFatal(logger, "failed to initialize meter", err)
		}

		instruments, err := telemetry.NewInstruments(otel.GetMeterProvider())
		if err != nil {
			cli.LogFatal(logger, "failed to create instruments", err)
		}

		c := newComponents(logger, instruments)
		sm := newServer(logger.With("component", "api"), c, meter)
		sched := newScheduler(logger.With("component", "scheduler"), c)

		sched.Start()
		sm.Start()

		cli.RunServer(
			ctx,
			cli.DefaultShutdownTimeout,
			[]cli.Lifecycle{sched, sm},
			func(ctx context.Context) {
				if err := c.store.Wait(ctx); err != nil {
					logger.Warn("pending audit notifications abandoned", slog.String("error", err.Error()))
				}
			},
			func(_ context.Context) {
				if c.nc == nil {
					return
				}
				if err := c.nc.Drain(); err != nil {
					logger.Warn("nats drain failed", slog.String("error", err.Error()))
				}
			},
			func(ctx context.Context) { _ = meter.Shutdown(ctx) },
			func(ctx context.Context) { _ = shutdownTracer(ctx) },
		)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

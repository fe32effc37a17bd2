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
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/retr0h/gatekeeper/internal/api"
	"github.com/retr0h/gatekeeper/internal/audit"
	"github.com/retr0h/gatekeeper/internal/authtoken"
	"github.com/retr0h/gatekeeper/internal/bruteforce"
	"github.com/retr0h/gatekeeper/internal/cli"
	"github.com/retr0h/gatekeeper/internal/gate"
	"github.com/retr0h/gatekeeper/internal/policy"
	"github.com/retr0h/gatekeeper/internal/ratelimit"
	"github.com/retr0h/gatekeeper/internal/scheduler"
	"github.com/retr0h/gatekeeper/internal/telemetry"
)

// components holds the process-wide state shared by the server and the
// scheduler.
type components struct {
	store     *audit.MemoryStore
	limiter   *ratelimit.Limiter
	detector  *bruteforce.Detector
	validator *authtoken.Validator
	gate      *gate.Gate
	nc        *nats.Conn
}

func newComponents(
	log *slog.Logger,
	instruments *telemetry.Instruments,
) *components {
	c := &components{
		limiter:  ratelimit.New(appConfig.Gate.LimiterConfigs()),
		detector: bruteforce.New(),
	}

	storeOpts := []audit.Option{
		audit.WithCapacity(appConfig.Audit.Capacity),
		audit.WithNotifyTimeout(appConfig.Audit.NotifyTimeout),
		audit.WithNotifier(audit.NewLogNotifier(log.With("component", "audit"))),
		audit.WithObserver(instruments.ObserveEvent),
	}

	if natsCfg := appConfig.Audit.NATS; natsCfg.Enabled {
		nc, err := audit.DialNATS(natsCfg.URL, natsCfg.ClientName, appConfig.Audit.NotifyTimeout)
		if err != nil {
			cli.LogFatal(log, "failed to connect to NATS", err, "url", natsCfg.URL)
		}
		c.nc = nc
		storeOpts = append(storeOpts, audit.WithNotifier(audit.NewNATSNotifier(nc, natsCfg.Subject)))
		log.Info(
			"publishing critical audit events",
			slog.String("url", natsCfg.URL),
			slog.String("subject", natsCfg.Subject),
		)
	}

	c.store = audit.NewMemoryStore(log.With("component", "audit"), storeOpts...)

	c.validator = authtoken.NewValidator(
		log.With("component", "authtoken"),
		authtoken.New(log),
		appConfig.API.Server.Security.SigningKey,
		appConfig.API.Server.Security.CustomRoles(),
	)

	c.gate = gate.New(
		log.With("component", "gate"),
		appConfig.Gate.GateConfig(),
		policy.New(appConfig.PolicyConfig()),
		c.limiter,
		c.detector,
		c.store,
		c.validator,
		gate.WithRecorder(instruments),
	)

	return c
}

func newServer(
	log *slog.Logger,
	c *components,
	meter *telemetry.Meter,
) *api.Server {
	return api.New(
		appConfig,
		log,
		c.gate,
		api.WithAuditStore(c.store),
		api.WithSubject(c.validator.Subject),
		api.WithMetrics(meter.Handler, meter.Path),
		api.WithVersion(buildVersion().GitVersion),
	)
}

func newScheduler(
	log *slog.Logger,
	c *components,
) *scheduler.Scheduler {
	sched := scheduler.New(log)

	err := sched.RegisterMaintenance(
		scheduler.Maintenance{
			SweepSchedule:   appConfig.Gate.BruteForce.SweepSchedule,
			AttemptWindow:   appConfig.Gate.BruteForce.Window,
			CleanupSchedule: appConfig.Audit.CleanupSchedule,
			RetentionDays:   appConfig.Audit.RetentionDays,
		},
		c.detector,
		c.limiter,
		c.store,
	)
	if err != nil {
		cli.LogFatal(log, "failed to schedule maintenance", err)
	}

	return sched
}

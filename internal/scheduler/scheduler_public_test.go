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

package scheduler_test

import (
	"context"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/retr0h/gatekeeper/internal/audit"
	"github.com/retr0h/gatekeeper/internal/bruteforce"
	"github.com/retr0h/gatekeeper/internal/ratelimit"
	"github.com/retr0h/gatekeeper/internal/scheduler"
)

type SchedulerPublicTestSuite struct {
	suite.Suite

	ctx    context.Context
	logger *slog.Logger
	now    time.Time
	clock  func() time.Time
}

func (s *SchedulerPublicTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.DiscardHandler)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return s.now }
}

func (s *SchedulerPublicTestSuite) TestAdd() {
	tests := []struct {
		name        string
		jobName     string
		schedule    string
		errContains string
		wantJobs    []string
	}{
		{
			name:     "when descriptor schedule registers job",
			jobName:  "probe",
			schedule: "@every 1m",
			wantJobs: []string{"probe"},
		},
		{
			name:     "when five field schedule registers job",
			jobName:  "probe",
			schedule: "*/5 * * * *",
			wantJobs: []string{"probe"},
		},
		{
			name:     "when schedule is empty job is disabled",
			jobName:  "probe",
			wantJobs: []string{},
		},
		{
			name:        "when schedule is invalid returns error",
			jobName:     "probe",
			schedule:    "every minute",
			errContains: "scheduling probe",
			wantJobs:    []string{},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			sched := scheduler.New(s.logger)

			err := sched.Add(tc.jobName, tc.schedule, func(context.Context) int { return 0 })
			if tc.errContains != "" {
				s.Error(err)
				s.Contains(err.Error(), tc.errContains)
			} else {
				s.NoError(err)
			}

			s.ElementsMatch(tc.wantJobs, sched.Jobs())
		})
	}
}

func (s *SchedulerPublicTestSuite) TestAddDuplicate() {
	sched := scheduler.New(s.logger)
	noop := func(context.Context) int { return 0 }

	s.Require().NoError(sched.Add("probe", "@hourly", noop))
	err := sched.Add("probe", "@hourly", noop)

	s.Error(err)
	s.Contains(err.Error(), "already registered")
}

func (s *SchedulerPublicTestSuite) TestRunNowUnknown() {
	_, err := scheduler.New(s.logger).RunNow(s.ctx, "missing")

	s.Error(err)
	s.Contains(err.Error(), "unknown job")
}

func (s *SchedulerPublicTestSuite) TestRegisterMaintenance() {
	detector := bruteforce.New(bruteforce.WithClock(s.clock))
	limiter := ratelimit.New(
		map[ratelimit.Category]ratelimit.Config{
			ratelimit.CategoryPublic: {Window: time.Minute, MaxRequests: 10},
		},
		ratelimit.WithClock(s.clock),
	)
	store := audit.NewMemoryStore(s.logger, audit.WithClock(s.clock))

	detector.RecordAndCheck("10.0.0.1", 5, 15*time.Minute)
	limiter.Check("10.0.0.1", ratelimit.CategoryPublic)
	store.Record(s.ctx, audit.AuthFailure("10.0.0.1", "curl/8.0", "/admin", "invalid token", audit.SeverityHigh))

	sched := scheduler.New(s.logger)
	s.Require().NoError(sched.RegisterMaintenance(
		scheduler.Maintenance{
			SweepSchedule:   "@every 5m",
			AttemptWindow:   15 * time.Minute,
			CleanupSchedule: "@daily",
			RetentionDays:   30,
		},
		detector,
		limiter,
		store,
	))

	jobs := sched.Jobs()
	sort.Strings(jobs)
	s.Equal([]string{
		scheduler.JobAuditCleanup,
		scheduler.JobBruteForceSweep,
		scheduler.JobRateLimitSweep,
	}, jobs)

	s.now = s.now.Add(31 * 24 * time.Hour)

	removed, err := sched.RunNow(s.ctx, scheduler.JobBruteForceSweep)
	s.NoError(err)
	s.Equal(1, removed)
	s.Zero(detector.Len())

	removed, err = sched.RunNow(s.ctx, scheduler.JobRateLimitSweep)
	s.NoError(err)
	s.Equal(1, removed)
	s.Zero(limiter.Len())

	removed, err = sched.RunNow(s.ctx, scheduler.JobAuditCleanup)
	s.NoError(err)
	s.Equal(1, removed)
	s.Zero(store.Len())
}

func (s *SchedulerPublicTestSuite) TestRegisterMaintenanceWithoutRetention() {
	sched := scheduler.New(s.logger)
	s.Require().NoError(sched.RegisterMaintenance(
		scheduler.Maintenance{
			SweepSchedule:   "@every 5m",
			AttemptWindow:   time.Minute,
			CleanupSchedule: "@daily",
		},
		bruteforce.New(),
		ratelimit.New(nil),
		audit.NewMemoryStore(s.logger),
	))

	s.NotContains(sched.Jobs(), scheduler.JobAuditCleanup)
}

func (s *SchedulerPublicTestSuite) TestStartStop() {
	ran := make(chan struct{}, 1)
	sched := scheduler.New(s.logger)
	s.Require().NoError(sched.Add("tick", "@every 1s", func(context.Context) int {
		select {
		case ran <- struct{}{}:
		default:
		}
		return 0
	}))

	sched.Start()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		s.Fail("job did not run")
	}

	ctx, cancel := context.WithTimeout(s.ctx, time.Second)
	defer cancel()
	sched.Stop(ctx)
}

func TestSchedulerPublicTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerPublicTestSuite))
}

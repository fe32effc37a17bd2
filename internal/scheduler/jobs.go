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

package scheduler

import (
	"context"
	"time"
)

// Job names.
const (
	JobBruteForceSweep = "bruteforce_sweep"
	JobRateLimitSweep  = "ratelimit_sweep"
	JobAuditCleanup    = "audit_cleanup"
)

// AttemptSweeper prunes stale brute-force records.
type AttemptSweeper interface {
	Sweep(window time.Duration) int
}

// WindowSweeper prunes expired rate-limit windows.
type WindowSweeper interface {
	Sweep() int
}

// EventCleaner prunes audit events past retention.
type EventCleaner interface {
	Cleanup(ctx context.Context, daysToKeep int) int
}

// Maintenance describes the schedules for the built-in jobs.
type Maintenance struct {
	SweepSchedule   string
	AttemptWindow   time.Duration
	CleanupSchedule string
	RetentionDays   int
}

// RegisterMaintenance adds the sweep and cleanup jobs. The brute-force and
// rate-limit sweeps share SweepSchedule. Cleanup is skipped when
// RetentionDays is zero.
func (s *Scheduler) RegisterMaintenance(
	m Maintenance,
	attempts AttemptSweeper,
	windows WindowSweeper,
	events EventCleaner,
) error {
	if err := s.Add(JobBruteForceSweep, m.SweepSchedule, func(context.Context) int {
		return attempts.Sweep(m.AttemptWindow)
	}); err != nil {
		return err
	}

	if err := s.Add(JobRateLimitSweep, m.SweepSchedule, func(context.Context) int {
		return windows.Sweep()
	}); err != nil {
		return err
	}

	if m.RetentionDays <= 0 {
		return nil
	}

	return s.Add(JobAuditCleanup, m.CleanupSchedule, func(ctx context.Context) int {
		return events.Cleanup(ctx, m.RetentionDays)
	})
}

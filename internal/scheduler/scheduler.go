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

// Package scheduler runs the periodic maintenance jobs that keep the
// in-memory limiter, detector and audit store bounded.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc performs one maintenance pass and returns the number of entries
// it removed.
type JobFunc func(ctx context.Context) int

// Scheduler wraps a cron runner with named jobs.
type Scheduler struct {
	logger *slog.Logger
	cron   *cron.Cron

	mu   sync.Mutex
	jobs map[string]JobFunc
}

// New creates a Scheduler using the standard five-field cron parser, which
// also accepts descriptors such as "@every 5m" and "@daily".
func New(
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		logger: logger,
		cron: cron.New(
			cron.WithLogger(&cronLogger{logger: logger}),
			cron.WithChain(cron.SkipIfStillRunning(&cronLogger{logger: logger})),
		),
		jobs: make(map[string]JobFunc),
	}
}

// Add registers fn under name on the given schedule. An empty schedule
// disables the job without error.
func (s *Scheduler) Add(
	name string,
	schedule string,
	fn JobFunc,
) error {
	if schedule == "" {
		s.logger.Debug("job disabled", slog.String("job", name))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.run(context.Background(), name, fn) }); err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
	s.jobs[name] = fn

	return nil
}

// RunNow executes the named job synchronously.
func (s *Scheduler) RunNow(
	ctx context.Context,
	name string,
) (int, error) {
	s.mu.Lock()
	fn, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return 0, fmt.Errorf("unknown job %q", name)
	}

	return s.run(ctx, name, fn), nil
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}

	return names
}

func (s *Scheduler) run(
	ctx context.Context,
	name string,
	fn JobFunc,
) int {
	start := time.Now()
	removed := fn(ctx)

	s.logger.DebugContext(
		ctx,
		"job completed",
		slog.String("job", name),
		slog.Int("removed", removed),
		slog.Duration("duration", time.Since(start)),
	)

	return removed
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.Jobs())))
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(
	ctx context.Context,
) {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out", slog.String("error", ctx.Err().Error()))
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l *cronLogger) Info(
	msg string,
	keysAndValues ...any,
) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l *cronLogger) Error(
	err error,
	msg string,
	keysAndValues ...any,
) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}

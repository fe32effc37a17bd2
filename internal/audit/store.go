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

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/retr0h/gatekeeper/internal/validation"
)

func init() {
	validation.RegisterEnum("valid_event_type", func(v string) bool {
		return EventType(v).Valid()
	})
	validation.RegisterEnum("valid_severity", func(v string) bool {
		return Severity(v).Valid()
	})
}

// DefaultCapacity is the number of events retained when no capacity is given.
const DefaultCapacity = 10000

// recentFailureWindow bounds Stats.RecentFailures.
const recentFailureWindow = time.Hour

// Store records and queries audit events.
type Store interface {
	// Record stores a new event and returns it with ID and Timestamp set.
	Record(ctx context.Context, in Input) Event
	// Search returns the page of events matching filter, newest first.
	Search(ctx context.Context, filter Filter) (*SearchResult, error)
	// Stats aggregates every retained event.
	Stats(ctx context.Context) Stats
	// ExportAll serializes every event matching filter (nil matches all).
	ExportAll(ctx context.Context, filter *Filter) ([]byte, error)
	// Cleanup removes events older than daysToKeep days.
	Cleanup(ctx context.Context, daysToKeep int) int
}

// ensure MemoryStore implements Store at compile time.
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the most recent events in a fixed-capacity ring.
// Once full, each Record evicts the oldest event.
type MemoryStore struct {
	mu sync.RWMutex
	// buf holds events oldest-first starting at head once the ring is full.
	buf      []Event
	head     int
	capacity int

	logger        *slog.Logger
	now           func() time.Time
	newID         func() string
	notifiers     []Notifier
	notifyTimeout time.Duration
	observers     []func(Event)
	pending       sync.WaitGroup
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithCapacity sets the maximum number of retained events.
func WithCapacity(
	capacity int,
) Option {
	return func(s *MemoryStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithClock replaces time.Now. Used by tests.
func WithClock(
	now func() time.Time,
) Option {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// WithNotifier adds an out-of-band sink for critical events.
func WithNotifier(
	n Notifier,
) Option {
	return func(s *MemoryStore) {
		s.notifiers = append(s.notifiers, n)
	}
}

// WithNotifyTimeout bounds each notifier call.
func WithNotifyTimeout(
	d time.Duration,
) Option {
	return func(s *MemoryStore) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// WithObserver registers a callback invoked synchronously for every
// recorded event. Used for metrics.
func WithObserver(
	fn func(Event),
) Option {
	return func(s *MemoryStore) {
		s.observers = append(s.observers, fn)
	}
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore(
	logger *slog.Logger,
	opts ...Option,
) *MemoryStore {
	s := &MemoryStore{
		capacity:      DefaultCapacity,
		logger:        logger,
		now:           time.Now,
		newID:         func() string { return uuid.New().String() },
		notifyTimeout: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Record stores the event. Critical events are also dispatched to every
// notifier in the background.
func (s *MemoryStore) Record(
	ctx context.Context,
	in Input,
) Event {
	if in.Severity == "" {
		in.Severity = SeverityLow
	}

	event := Event{
		ID:           s.newID(),
		EventType:    in.EventType,
		Severity:     in.Severity,
		UserID:       in.UserID,
		UserEmail:    in.UserEmail,
		IPAddress:    in.IPAddress,
		UserAgent:    in.UserAgent,
		ResourceType: in.ResourceType,
		ResourceID:   in.ResourceID,
		OldValues:    maps.Clone(in.OldValues),
		NewValues:    maps.Clone(in.NewValues),
		Metadata:     maps.Clone(in.Metadata),
		Timestamp:    s.now(),
		Success:      in.Success,
		ErrorMessage: in.ErrorMessage,
	}

	s.mu.Lock()
	if len(s.buf) < s.capacity {
		s.buf = append(s.buf, event)
	} else {
		s.buf[s.head] = event
		s.head = (s.head + 1) % s.capacity
	}
	s.mu.Unlock()

	s.logger.DebugContext(
		ctx,
		"audit event",
		slog.String("id", event.ID),
		slog.String("event_type", string(event.EventType)),
		slog.String("severity", string(event.Severity)),
		slog.String("ip_address", event.IPAddress),
		slog.Bool("success", event.Success),
	)

	for _, fn := range s.observers {
		fn(event)
	}

	if event.Severity == SeverityCritical {
		s.dispatch(event)
	}

	return clone(event)
}

// dispatch sends event to every notifier without blocking the caller. The
// notification context is detached from the request so an aborted request
// does not cancel it.
func (s *MemoryStore) dispatch(
	event Event,
) {
	for _, n := range s.notifiers {
		s.pending.Add(1)
		go func(n Notifier) {
			defer s.pending.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error(
						"audit notifier panicked",
						slog.String("entry_id", event.ID),
						slog.Any("panic", r),
					)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
			defer cancel()

			if err := n.Notify(ctx, event); err != nil {
				s.logger.Warn(
					"failed to deliver critical audit notification",
					slog.String("error", err.Error()),
					slog.String("entry_id", event.ID),
				)
			}
		}(n)
	}
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (s *MemoryStore) Wait(
	ctx context.Context,
) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// snapshot returns the retained events newest first. Caller holds s.mu.
func (s *MemoryStore) snapshot() []Event {
	n := len(s.buf)
	out := make([]Event, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, s.buf[(s.head+i)%n])
	}

	return out
}

// Search returns the page of events matching filter, newest first.
func (s *MemoryStore) Search(
	_ context.Context,
	filter Filter,
) (*SearchResult, error) {
	if errMsg, ok := validation.Struct(filter); !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFilter, errMsg)
	}

	s.mu.RLock()
	events := s.snapshot()
	s.mu.RUnlock()

	matches := make([]Event, 0, len(events))
	for _, e := range events {
		if filter.matches(e) {
			matches = append(matches, e)
		}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	result := &SearchResult{
		Events: []Event{},
		Total:  len(matches),
		Page:   page,
		Limit:  limit,
	}

	start := (page - 1) * limit
	if start >= len(matches) {
		return result, nil
	}
	end := min(start+limit, len(matches))

	for _, e := range matches[start:end] {
		result.Events = append(result.Events, clone(e))
	}

	return result, nil
}

// Stats aggregates every retained event.
func (s *MemoryStore) Stats(
	_ context.Context,
) Stats {
	stats := Stats{
		ByType:     make(map[EventType]int),
		BySeverity: make(map[Severity]int),
	}
	cutoff := s.now().Add(-recentFailureWindow)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.buf {
		stats.Total++
		stats.ByType[e.EventType]++
		stats.BySeverity[e.Severity]++
		if !e.Success && !e.Timestamp.Before(cutoff) {
			stats.RecentFailures++
		}
	}

	return stats
}

// ExportAll serializes every event matching filter as an indented JSON
// array, newest first. Pagination fields of filter are ignored.
func (s *MemoryStore) ExportAll(
	_ context.Context,
	filter *Filter,
) ([]byte, error) {
	s.mu.RLock()
	events := s.snapshot()
	s.mu.RUnlock()

	out := make([]Event, 0, len(events))
	for _, e := range events {
		if filter == nil || filter.matches(e) {
			out = append(out, e)
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal audit events: %w", err)
	}

	return data, nil
}

// Cleanup removes events recorded more than daysToKeep days ago and returns
// the number removed. Order of the remaining events is preserved.
func (s *MemoryStore) Cleanup(
	ctx context.Context,
	daysToKeep int,
) int {
	cutoff := s.now().Add(-time.Duration(daysToKeep) * 24 * time.Hour)

	s.mu.Lock()
	n := len(s.buf)
	kept := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		e := s.buf[(s.head+i)%n]
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := n - len(kept)
	s.buf = kept
	s.head = 0
	s.mu.Unlock()

	if removed > 0 {
		s.logger.InfoContext(
			ctx,
			"audit cleanup completed",
			slog.Int("removed", removed),
			slog.Int("remaining", len(kept)),
		)
	}

	return removed
}

// Len returns the number of retained events.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.buf)
}

func clone(
	e Event,
) Event {
	e.OldValues = maps.Clone(e.OldValues)
	e.NewValues = maps.Clone(e.NewValues)
	e.Metadata = maps.Clone(e.Metadata)

	return e
}

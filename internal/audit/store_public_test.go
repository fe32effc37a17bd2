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

package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/gatekeeper/internal/audit"
	"github.com/retr0h/gatekeeper/internal/audit/mocks"
)

type MemoryStorePublicTestSuite struct {
	suite.Suite

	ctx   context.Context
	now   time.Time
	store *audit.MemoryStore
}

func (s *MemoryStorePublicTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	s.store = audit.NewMemoryStore(
		slog.Default(),
		audit.WithCapacity(5),
		audit.WithClock(func() time.Time { return s.now }),
	)
}

func (s *MemoryStorePublicTestSuite) record(
	eventType audit.EventType,
	severity audit.Severity,
	success bool,
	ip string,
) audit.Event {
	s.now = s.now.Add(time.Second)

	return s.store.Record(s.ctx, audit.Input{
		EventType:    eventType,
		Severity:     severity,
		Success:      success,
		IPAddress:    ip,
		UserID:       "user-" + ip,
		ResourceType: "route",
		ResourceID:   "/api/courses",
	})
}

func (s *MemoryStorePublicTestSuite) TestRecordOrdering() {
	e1 := s.record(audit.EventLoginSuccess, audit.SeverityLow, true, "1.1.1.1")
	e2 := s.record(audit.EventLoginFailure, audit.SeverityMedium, false, "2.2.2.2")
	e3 := s.record(audit.EventAdminAction, audit.SeverityHigh, true, "3.3.3.3")

	s.NotEmpty(e1.ID)
	s.NotEqual(e1.ID, e2.ID)
	s.True(e2.Timestamp.After(e1.Timestamp))

	result, err := s.store.Search(s.ctx, audit.Filter{})
	s.Require().NoError(err)
	s.Equal(3, result.Total)
	s.Require().Len(result.Events, 3)
	s.Equal(e3.ID, result.Events[0].ID)
	s.Equal(e2.ID, result.Events[1].ID)
	s.Equal(e1.ID, result.Events[2].ID)

	s.Equal(3, s.store.Stats(s.ctx).Total)
}

func (s *MemoryStorePublicTestSuite) TestRecordDefaultsSeverity() {
	e := s.store.Record(s.ctx, audit.Input{EventType: audit.EventDataAccess, Success: true})
	s.Equal(audit.SeverityLow, e.Severity)
}

func (s *MemoryStorePublicTestSuite) TestRecordEvictsOldest() {
	first := s.record(audit.EventDataAccess, audit.SeverityLow, true, "0.0.0.0")
	ids := []string{}
	for i := 1; i <= 5; i++ {
		ids = append(ids, s.record(audit.EventDataAccess, audit.SeverityLow, true, fmt.Sprintf("10.0.0.%d", i)).ID)
	}

	s.Equal(5, s.store.Len())

	result, err := s.store.Search(s.ctx, audit.Filter{})
	s.Require().NoError(err)
	s.Equal(5, result.Total)
	for _, e := range result.Events {
		s.NotEqual(first.ID, e.ID)
	}
	s.Equal(ids[4], result.Events[0].ID)
	s.Equal(ids[0], result.Events[4].ID)
}

func (s *MemoryStorePublicTestSuite) TestRecordIsImmutable() {
	meta := map[string]any{"key": "original"}
	e := s.store.Record(s.ctx, audit.Input{
		EventType: audit.EventDataModification,
		Metadata:  meta,
		Success:   true,
	})

	meta["key"] = "changed"
	e.Metadata["key"] = "changed-again"

	result, err := s.store.Search(s.ctx, audit.Filter{})
	s.Require().NoError(err)
	s.Equal("original", result.Events[0].Metadata["key"])
}

func (s *MemoryStorePublicTestSuite) TestSearch() {
	s.record(audit.EventLoginSuccess, audit.SeverityLow, true, "1.1.1.1")
	s.record(audit.EventLoginFailure, audit.SeverityMedium, false, "2.2.2.2")
	s.record(audit.EventSecurityViolation, audit.SeverityHigh, false, "2.2.2.2")
	s.record(audit.EventRateLimitExceeded, audit.SeverityMedium, false, "3.3.3.3")

	failed := false
	later := s.now.Add(-1500 * time.Millisecond)

	tests := []struct {
		name      string
		filter    audit.Filter
		wantTotal int
		wantLen   int
		wantErr   bool
	}{
		{
			name:      "no predicates matches everything",
			filter:    audit.Filter{},
			wantTotal: 4,
			wantLen:   4,
		},
		{
			name:      "event type set",
			filter:    audit.Filter{EventTypes: []audit.EventType{audit.EventLoginSuccess, audit.EventLoginFailure}},
			wantTotal: 2,
			wantLen:   2,
		},
		{
			name:      "severity and ip combine conjunctively",
			filter:    audit.Filter{Severities: []audit.Severity{audit.SeverityMedium}, IPAddress: "2.2.2.2"},
			wantTotal: 1,
			wantLen:   1,
		},
		{
			name:      "success flag",
			filter:    audit.Filter{Success: &failed},
			wantTotal: 3,
			wantLen:   3,
		},
		{
			name:      "time range",
			filter:    audit.Filter{StartTime: &later},
			wantTotal: 2,
			wantLen:   2,
		},
		{
			name:      "user id",
			filter:    audit.Filter{UserID: "user-3.3.3.3"},
			wantTotal: 1,
			wantLen:   1,
		},
		{
			name:      "pagination keeps pre-pagination total",
			filter:    audit.Filter{Page: 2, Limit: 3},
			wantTotal: 4,
			wantLen:   1,
		},
		{
			name:      "page past the end is empty",
			filter:    audit.Filter{Page: 5, Limit: 3},
			wantTotal: 4,
			wantLen:   0,
		},
		{
			name:    "unknown event type is rejected",
			filter:  audit.Filter{EventTypes: []audit.EventType{"bogus"}},
			wantErr: true,
		},
		{
			name:    "oversized limit is rejected",
			filter:  audit.Filter{Limit: audit.MaxPageSize + 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			result, err := s.store.Search(s.ctx, tt.filter)
			if tt.wantErr {
				s.Error(err)
				s.True(errors.Is(err, audit.ErrInvalidFilter))
				return
			}

			s.Require().NoError(err)
			s.Equal(tt.wantTotal, result.Total)
			s.Len(result.Events, tt.wantLen)
		})
	}
}

func (s *MemoryStorePublicTestSuite) TestStats() {
	s.record(audit.EventLoginFailure, audit.SeverityMedium, false, "1.1.1.1")
	s.now = s.now.Add(2 * time.Hour)
	s.record(audit.EventLoginFailure, audit.SeverityMedium, false, "1.1.1.1")
	s.record(audit.EventSecurityViolation, audit.SeverityHigh, false, "1.1.1.1")
	s.record(audit.EventLoginSuccess, audit.SeverityLow, true, "1.1.1.1")

	stats := s.store.Stats(s.ctx)
	s.Equal(4, stats.Total)
	s.Equal(2, stats.ByType[audit.EventLoginFailure])
	s.Equal(1, stats.ByType[audit.EventSecurityViolation])
	s.Equal(2, stats.BySeverity[audit.SeverityMedium])
	s.Equal(2, stats.RecentFailures)
}

func (s *MemoryStorePublicTestSuite) TestExportAll() {
	s.record(audit.EventLoginSuccess, audit.SeverityLow, true, "1.1.1.1")
	s.record(audit.EventLoginFailure, audit.SeverityMedium, false, "2.2.2.2")

	tests := []struct {
		name    string
		filter  *audit.Filter
		wantLen int
	}{
		{
			name:    "nil filter exports everything",
			filter:  nil,
			wantLen: 2,
		},
		{
			name:    "filter narrows the export and ignores paging",
			filter:  &audit.Filter{IPAddress: "2.2.2.2", Limit: 1, Page: 9},
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			data, err := s.store.ExportAll(s.ctx, tt.filter)
			s.Require().NoError(err)

			var events []audit.Event
			s.Require().NoError(json.Unmarshal(data, &events))
			s.Len(events, tt.wantLen)
		})
	}
}

func (s *MemoryStorePublicTestSuite) TestCleanup() {
	old := s.record(audit.EventDataAccess, audit.SeverityLow, true, "1.1.1.1")
	s.now = s.now.Add(10 * 24 * time.Hour)
	recent := s.record(audit.EventDataAccess, audit.SeverityLow, true, "2.2.2.2")

	s.Equal(1, s.store.Cleanup(s.ctx, 7))
	s.Equal(1, s.store.Len())

	result, err := s.store.Search(s.ctx, audit.Filter{})
	s.Require().NoError(err)
	s.Equal(recent.ID, result.Events[0].ID)
	s.NotEqual(old.ID, result.Events[0].ID)

	s.Equal(0, s.store.Cleanup(s.ctx, 7))
}

func (s *MemoryStorePublicTestSuite) TestCleanupThenRecordAfterWrap() {
	for i := 0; i < 7; i++ {
		s.record(audit.EventDataAccess, audit.SeverityLow, true, fmt.Sprintf("10.0.0.%d", i))
	}
	s.now = s.now.Add(48 * time.Hour)
	s.Equal(5, s.store.Cleanup(s.ctx, 1))

	latest := s.record(audit.EventLogout, audit.SeverityLow, true, "9.9.9.9")
	result, err := s.store.Search(s.ctx, audit.Filter{})
	s.Require().NoError(err)
	s.Equal(1, result.Total)
	s.Equal(latest.ID, result.Events[0].ID)
}

func (s *MemoryStorePublicTestSuite) TestCriticalNotification() {
	tests := []struct {
		name      string
		severity  audit.Severity
		notifyErr error
		wantCall  bool
	}{
		{
			name:     "critical event is dispatched",
			severity: audit.SeverityCritical,
			wantCall: true,
		},
		{
			name:      "notifier failure does not affect the store",
			severity:  audit.SeverityCritical,
			notifyErr: fmt.Errorf("sink down"),
			wantCall:  true,
		},
		{
			name:     "high event is not dispatched",
			severity: audit.SeverityHigh,
			wantCall: false,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			ctrl := gomock.NewController(s.T())
			defer ctrl.Finish()

			notifier := mocks.NewMockNotifier(ctrl)
			if tt.wantCall {
				notifier.EXPECT().
					Notify(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, e audit.Event) error {
						_, hasDeadline := ctx.Deadline()
						s.True(hasDeadline)
						s.Equal(audit.EventSystemError, e.EventType)
						return tt.notifyErr
					})
			}

			store := audit.NewMemoryStore(slog.Default(), audit.WithNotifier(notifier))

			reqCtx, cancel := context.WithCancel(context.Background())
			cancel()
			store.Record(reqCtx, audit.Input{
				EventType: audit.EventSystemError,
				Severity:  tt.severity,
			})

			waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
			defer waitCancel()
			s.NoError(store.Wait(waitCtx))
			s.Equal(1, store.Len())
		})
	}
}

func (s *MemoryStorePublicTestSuite) TestNotifierPanicIsContained() {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	store := audit.NewMemoryStore(logger, audit.WithNotifier(panicNotifier{}))
	store.Record(s.ctx, audit.Input{EventType: audit.EventSystemError, Severity: audit.SeverityCritical})

	waitCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.NoError(store.Wait(waitCtx))
	s.Contains(buf.String(), "audit notifier panicked")
}

func (s *MemoryStorePublicTestSuite) TestObserver() {
	seen := []audit.EventType{}
	store := audit.NewMemoryStore(slog.Default(), audit.WithObserver(func(e audit.Event) {
		seen = append(seen, e.EventType)
	}))

	store.Record(s.ctx, audit.Input{EventType: audit.EventLogout})
	s.Equal([]audit.EventType{audit.EventLogout}, seen)
}

type panicNotifier struct{}

func (panicNotifier) Notify(context.Context, audit.Event) error {
	panic("boom")
}

func TestMemoryStorePublicTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryStorePublicTestSuite))
}

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

package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/retr0h/gatekeeper/internal/audit"
	"github.com/retr0h/gatekeeper/internal/audit/export"
	"github.com/retr0h/gatekeeper/internal/client"
	"github.com/retr0h/gatekeeper/internal/config"
)

type ClientPublicTestSuite struct {
	suite.Suite

	ctx      context.Context
	logger   *slog.Logger
	events   []audit.Event
	mu       sync.Mutex
	headers  []http.Header
	queries  []url.Values
	status   int
	throttle int
	server   *httptest.Server
	sut      *client.Client
}

func (s *ClientPublicTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.headers = nil
	s.queries = nil
	s.status = http.StatusOK
	s.throttle = 0

	s.events = make([]audit.Event, 0, 5)
	for i := range 5 {
		s.events = append(s.events, audit.Event{
			ID:        fmt.Sprintf("evt-%d", i),
			EventType: audit.EventUnauthorizedAccess,
			Severity:  audit.SeverityMedium,
			IPAddress: fmt.Sprintf("10.0.0.%d", i),
			Timestamp: time.Date(2026, 3, 1, 9, i, 0, 0, time.UTC),
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/audit", s.handleSearch)
	mux.HandleFunc("/api/admin/audit/stats", func(w http.ResponseWriter, r *http.Request) {
		s.capture(r)
		s.writeJSON(w, audit.Stats{
			Total:      len(s.events),
			ByType:     map[audit.EventType]int{audit.EventUnauthorizedAccess: len(s.events)},
			BySeverity: map[audit.Severity]int{audit.SeverityMedium: len(s.events)},
		})
	})
	mux.HandleFunc("/api/admin/audit/export", func(w http.ResponseWriter, r *http.Request) {
		s.capture(r)
		s.writeJSON(w, s.events)
	})

	s.server = httptest.NewServer(mux)
	s.sut = s.newClient()
}

func (s *ClientPublicTestSuite) newClient(
	opts ...client.Option,
) *client.Client {
	return client.New(s.logger, config.Config{
		API: config.API{
			Client: config.Client{
				URL:     s.server.URL + "/",
				Timeout: 5 * time.Second,
				Security: config.ClientSecurity{
					BearerToken: "admin-token",
				},
			},
		},
	}, opts...)
}

func (s *ClientPublicTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientPublicTestSuite) capture(
	r *http.Request,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.headers = append(s.headers, r.Header.Clone())
	s.queries = append(s.queries, r.URL.Query())
}

func (s *ClientPublicTestSuite) writeJSON(
	w http.ResponseWriter,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	if s.status != http.StatusOK {
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(`{"error":"forbidden","request_id":"req-9"}`))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func (s *ClientPublicTestSuite) handleSearch(
	w http.ResponseWriter,
	r *http.Request,
) {
	s.capture(r)

	s.mu.Lock()
	throttled := s.throttle > 0
	if throttled {
		s.throttle--
	}
	s.mu.Unlock()

	if throttled {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limit exceeded","request_id":"req-429"}`))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page = max(page, 1)
	if limit <= 0 {
		limit = audit.DefaultPageSize
	}

	start := min((page-1)*limit, len(s.events))
	end := min(start+limit, len(s.events))

	s.writeJSON(w, audit.SearchResult{
		Events: s.events[start:end],
		Total:  len(s.events),
		Page:   page,
		Limit:  limit,
	})
}

func (s *ClientPublicTestSuite) TestSearchAudit() {
	result, err := s.sut.SearchAudit(s.ctx, url.Values{"severity": {"medium"}})

	s.Require().NoError(err)
	s.Equal(5, result.Total)
	s.Len(result.Events, 5)

	s.Require().Len(s.headers, 1)
	s.Equal("Bearer admin-token", s.headers[0].Get("Authorization"))
	s.Equal(client.DefaultUserAgent, s.headers[0].Get("User-Agent"))
	s.Equal("medium", s.queries[0].Get("severity"))
}

func (s *ClientPublicTestSuite) TestAuditStats() {
	stats, err := s.sut.AuditStats(s.ctx)

	s.Require().NoError(err)
	s.Equal(5, stats.Total)
	s.Equal(5, stats.BySeverity[audit.SeverityMedium])
}

func (s *ClientPublicTestSuite) TestExportAudit() {
	events, err := s.sut.ExportAudit(s.ctx, nil)

	s.Require().NoError(err)
	s.Len(events, 5)
	s.Empty(s.queries[0])
}

func (s *ClientPublicTestSuite) TestAuditFetcherWithRun() {
	var written []audit.Event
	exporter := &sliceExporter{events: &written}

	result, err := export.Run(
		s.ctx,
		s.logger,
		s.sut.AuditFetcher(url.Values{"type": {"unauthorized_access"}}),
		exporter,
		2,
		nil,
	)

	s.Require().NoError(err)
	s.Equal(5, result.TotalEntries)
	s.Equal(5, result.ExportedEntries)
	s.Len(written, 5)
	s.Equal("evt-4", written[4].ID)

	s.Require().Len(s.queries, 3)
	for i, q := range s.queries {
		s.Equal(strconv.Itoa(i+1), q.Get("page"))
		s.Equal("2", q.Get("limit"))
		s.Equal("unauthorized_access", q.Get("type"))
	}

	// Later pages are bounded by the newest event of the first page.
	s.Empty(s.queries[0].Get("end"))
	s.Equal("2026-03-01T09:00:00Z", s.queries[1].Get("end"))
	s.Equal("2026-03-01T09:00:00Z", s.queries[2].Get("end"))
}

func (s *ClientPublicTestSuite) TestAuditFetcherKeepsCallerEnd() {
	end := "2026-03-01T09:03:00Z"

	_, err := export.Run(
		s.ctx,
		s.logger,
		s.sut.AuditFetcher(url.Values{"end": {end}}),
		&sliceExporter{events: new([]audit.Event)},
		2,
		nil,
	)

	s.Require().NoError(err)
	s.Require().Len(s.queries, 3)
	for _, q := range s.queries {
		s.Equal(end, q.Get("end"))
	}
}

func (s *ClientPublicTestSuite) TestRateLimitedRequestRetried() {
	tests := []struct {
		name       string
		throttle   int
		maxRetries int
		wantErr    bool
		wantWaits  []time.Duration
		wantCalls  int
	}{
		{
			name:       "retries after the advertised delay",
			throttle:   2,
			maxRetries: 3,
			wantWaits:  []time.Duration{7 * time.Second, 7 * time.Second},
			wantCalls:  3,
		},
		{
			name:       "returns the 429 once retries run out",
			throttle:   5,
			maxRetries: 1,
			wantErr:    true,
			wantWaits:  []time.Duration{7 * time.Second},
			wantCalls:  2,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.queries = nil
			s.throttle = tc.throttle

			var waits []time.Duration
			c := s.newClient(
				client.WithMaxRetries(tc.maxRetries),
				client.WithSleep(func(_ context.Context, d time.Duration) error {
					waits = append(waits, d)
					return nil
				}),
			)

			result, err := c.SearchAudit(s.ctx, nil)

			s.Equal(tc.wantWaits, waits)
			s.Len(s.queries, tc.wantCalls)
			if tc.wantErr {
				var respErr *client.ResponseError
				s.Require().True(errors.As(err, &respErr))
				s.Equal(http.StatusTooManyRequests, respErr.StatusCode)
				s.Equal(7*time.Second, respErr.RetryAfter)
				s.Equal("req-429", respErr.RequestID)
				return
			}

			s.Require().NoError(err)
			s.Equal(5, result.Total)
		})
	}
}

func (s *ClientPublicTestSuite) TestRateLimitWaitCancelled() {
	s.throttle = 1

	c := s.newClient(
		client.WithSleep(func(context.Context, time.Duration) error {
			return context.Canceled
		}),
	)

	_, err := c.SearchAudit(s.ctx, nil)

	s.Require().Error(err)
	s.ErrorIs(err, context.Canceled)
	s.Contains(err.Error(), "waiting out rate limit")
}

func (s *ClientPublicTestSuite) TestErrorResponse() {
	s.status = http.StatusForbidden

	_, err := s.sut.AuditStats(s.ctx)

	var respErr *client.ResponseError
	s.Require().True(errors.As(err, &respErr))
	s.Equal(http.StatusForbidden, respErr.StatusCode)
	s.Equal("forbidden", respErr.Message)
	s.Equal("req-9", respErr.RequestID)
	s.Equal("unexpected status 403: forbidden", err.Error())
}

func (s *ClientPublicTestSuite) TestTransportError() {
	s.server.Close()

	_, err := s.sut.AuditStats(s.ctx)

	s.Error(err)
	s.Contains(err.Error(), "requesting /api/admin/audit/stats")
}

type sliceExporter struct {
	events *[]audit.Event
}

func (e *sliceExporter) Open(context.Context) error { return nil }

func (e *sliceExporter) Write(
	_ context.Context,
	event audit.Event,
) error {
	*e.events = append(*e.events, event)
	return nil
}

func (e *sliceExporter) Close(context.Context) error { return nil }

func TestClientPublicTestSuite(t *testing.T) {
	suite.Run(t, new(ClientPublicTestSuite))
}

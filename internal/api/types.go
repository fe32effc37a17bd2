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

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/retr0h/gatekeeper/internal/audit"
	"github.com/retr0h/gatekeeper/internal/config"
	"github.com/retr0h/gatekeeper/internal/gate"
)

// Server implementation of the gatekeeper's HTTP API.
type Server struct {
	// Echo server instance.
	Echo *echo.Echo

	logger    *slog.Logger
	appConfig config.Config
	gate      *gate.Gate
	store     audit.Store
	subject   SubjectFunc
	version   string
	startTime time.Time
	now       func() time.Time

	metricsHandler http.Handler
	metricsPath    string
}

// SubjectFunc resolves the subject of an authenticated token for audit
// attribution.
type SubjectFunc func(ctx context.Context, token string) string

// Option configures a Server.
type Option func(*Server)

// WithAuditStore mounts the admin audit routes backed by store.
func WithAuditStore(
	store audit.Store,
) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithSubject sets the resolver used to attribute admin actions.
func WithSubject(
	fn SubjectFunc,
) Option {
	return func(s *Server) {
		s.subject = fn
	}
}

// WithMetrics mounts handler at path.
func WithMetrics(
	handler http.Handler,
	path string,
) Option {
	return func(s *Server) {
		s.metricsHandler = handler
		s.metricsPath = path
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(
	version string,
) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithClock replaces time.Now. Used by tests.
func WithClock(
	now func() time.Time,
) Option {
	return func(s *Server) {
		s.now = now
	}
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime"`
}

// CSRFResponse carries a freshly issued CSRF token.
type CSRFResponse struct {
	Token string `json:"token"`
}

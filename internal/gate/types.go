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

// Package gate runs every inbound request through an ordered list of stages
// (screen, rate limit, authenticate, route-specific checks) and finalizes
// the response headers. The first stage to terminate decides the response.
package gate

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Context keys set on the echo context for downstream handlers.
const (
	ContextKeyRequestID = "gate.request_id"
	ContextKeyClientIP  = "gate.client_ip"
	ContextKeyToken     = "gate.token"
)

var (
	// ErrValidatorTimeout is returned when the token validator does not
	// answer within the configured timeout.
	ErrValidatorTimeout = errors.New("token validator timed out")
	// ErrNoValidator is returned when protected routes exist but no token
	// validator was supplied.
	ErrNoValidator = errors.New("no token validator configured")
)

// TokenValidator is the delegated credential check.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (bool, error)
	IsAdmin(ctx context.Context, token string) (bool, error)
}

// Recorder receives one observation per stage decision.
type Recorder interface {
	RecordDecision(ctx context.Context, stage string, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordDecision(context.Context, string, string) {}

// Config tunes the gate.
type Config struct {
	Routes Routes
	// ScreenMaxAttempts is the brute-force threshold for screening violations.
	ScreenMaxAttempts int
	// AuthMaxAttempts is the brute-force threshold for invalid credentials.
	AuthMaxAttempts int
	// BruteForceWindow is shared by both brute-force call sites.
	BruteForceWindow time.Duration
	// MaxUploadBytes caps the declared Content-Length on upload routes.
	MaxUploadBytes int64
	// APIVersion is echoed in X-API-Version on API routes.
	APIVersion string
	// AuthCookieName is read when no bearer token is present.
	AuthCookieName string
	// AuthTimeout bounds each call to the TokenValidator.
	AuthTimeout time.Duration
	// CSRFEnabled turns on double-submit checks for cookie-authenticated
	// mutating API requests.
	CSRFEnabled bool
	// TrustProxy enables X-Forwarded-For and X-Real-IP.
	TrustProxy        bool
	TrustedProxyCount int
}

// DefaultConfig returns the built-in gate settings.
func DefaultConfig() Config {
	return Config{
		Routes:            DefaultRoutes(),
		ScreenMaxAttempts: 10,
		AuthMaxAttempts:   5,
		BruteForceWindow:  15 * time.Minute,
		MaxUploadBytes:    10 << 20,
		APIVersion:        "1.0",
		AuthCookieName:    "auth-token",
		AuthTimeout:       5 * time.Second,
		CSRFEnabled:       true,
	}
}

// Request carries per-request state between stages.
type Request struct {
	HTTP     *http.Request
	ClientIP string
	Route    Route
	// Bearer is true when the credential came from the Authorization header.
	Bearer bool
	// Authenticated is set by the authenticate stage after validation.
	Authenticated bool
	RequestID     string
	// Header accumulates response headers added by stages.
	Header http.Header

	token string
}

// Token returns the presented credential, if any.
func (r *Request) Token() string {
	return r.token
}

// Response is a terminal response built by a stage.
type Response struct {
	Status     int
	Message    string
	Location   string
	RetryAfter int
}

// Verdict is the result of a stage: pass through or terminate.
type Verdict struct {
	Terminate bool
	Response  Response
}

// PassThrough hands control to the next stage.
func PassThrough() Verdict {
	return Verdict{}
}

// Terminate ends the pipeline with resp.
func Terminate(
	resp Response,
) Verdict {
	return Verdict{Terminate: true, Response: resp}
}

// Stage is one step of the pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context, req *Request) Verdict
}

type stageFunc struct {
	name string
	fn   func(ctx context.Context, req *Request) Verdict
}

func (s stageFunc) Name() string { return s.name }

func (s stageFunc) Run(
	ctx context.Context,
	req *Request,
) Verdict {
	return s.fn(ctx, req)
}

// ErrorResponse is the JSON body of terminal API responses.
type ErrorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

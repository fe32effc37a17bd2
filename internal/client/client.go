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

// Package client provides the HTTP client used by the admin CLI.
package client

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/retr0h/gatekeeper/internal/config"
	"github.com/retr0h/gatekeeper/internal/telemetry"
)

// DefaultUserAgent identifies CLI requests. The gate rejects requests with
// no User-Agent.
const DefaultUserAgent = "gatekeeper-cli"

// DefaultMaxRetries is how often a rate-limited call is retried.
const DefaultMaxRetries = 3

// WithMaxRetries sets how often a call answered with 429 is retried after
// the server's Retry-After. Zero disables retries.
func WithMaxRetries(
	n int,
) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithSleep replaces the wait between rate-limited retries.
func WithSleep(
	fn SleepFunc,
) Option {
	return func(c *Client) {
		c.sleep = fn
	}
}

// New creates a Client from the api.client config section.
func New(
	logger *slog.Logger,
	appConfig config.Config,
	opts ...Option,
) *Client {
	return NewWithTransport(logger, appConfig, http.DefaultTransport, opts...)
}

// NewWithTransport creates a Client that sends requests through base.
func NewWithTransport(
	logger *slog.Logger,
	appConfig config.Config,
	base http.RoundTripper,
	opts ...Option,
) *Client {
	transport := &authTransport{
		base:       base,
		authHeader: "Bearer " + appConfig.API.Client.Security.BearerToken,
		userAgent:  DefaultUserAgent,
		logger:     logger,
	}

	c := &Client{
		baseURL: strings.TrimRight(appConfig.API.Client.URL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   appConfig.API.Client.Timeout,
		},
		logger:     logger,
		maxRetries: DefaultMaxRetries,
		sleep:      sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func sleepContext(
	ctx context.Context,
	d time.Duration,
) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RoundTrip implements the http.RoundTripper interface.
func (t *authTransport) RoundTrip(
	req *http.Request,
) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", t.authHeader)
	req.Header.Set("User-Agent", t.userAgent)
	telemetry.InjectTraceContextToHeader(req.Context(), req.Header)

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.logger.Debug("http request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		return nil, err
	}

	t.logger.Debug("http response",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, nil
}

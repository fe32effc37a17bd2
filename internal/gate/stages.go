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

package gate

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/retr0h/gatekeeper/internal/audit"
	"github.com/retr0h/gatekeeper/internal/policy"
)

func (g *Gate) screen(
	ctx context.Context,
	req *Request,
) Verdict {
	r := req.HTTP

	var reason string
	switch {
	case !g.policy.ValidateOrigin(r):
		reason = "origin not allowed"
	case !g.policy.ValidateUserAgent(r):
		reason = "user agent rejected"
	case g.csrfRequired(req) && !policy.ValidateCSRFToken(r):
		reason = "csrf token missing or mismatched"
	}

	if reason != "" {
		g.record(ctx, audit.SecurityViolation(
			req.ClientIP,
			r.UserAgent(),
			req.Route.Path,
			reason,
			audit.SeverityMedium,
		))

		if g.detector.RecordAndCheck(
			req.ClientIP,
			g.cfg.ScreenMaxAttempts,
			g.cfg.BruteForceWindow,
		) {
			return g.blocked(ctx, req)
		}

		return Terminate(Response{Status: http.StatusForbidden, Message: "forbidden"})
	}

	if g.detector.IsBlocked(req.ClientIP, g.cfg.ScreenMaxAttempts, g.cfg.BruteForceWindow) {
		return g.blocked(ctx, req)
	}

	return PassThrough()
}

func (g *Gate) csrfRequired(
	req *Request,
) bool {
	return g.cfg.CSRFEnabled &&
		req.Route.API &&
		!req.Route.CSRFExempt &&
		!req.Bearer &&
		IsMutating(req.HTTP.Method)
}

// blocked answers a client the brute-force detector has locked out.
func (g *Gate) blocked(
	ctx context.Context,
	req *Request,
) Verdict {
	retry := int(math.Ceil(g.cfg.BruteForceWindow.Seconds()))

	g.record(ctx, audit.RateLimitExceeded(
		req.ClientIP,
		req.HTTP.UserAgent(),
		req.Route.Path,
		"brute_force",
		retry,
		audit.SeverityHigh,
	))

	return Terminate(Response{
		Status:     http.StatusTooManyRequests,
		Message:    "too many failed attempts",
		RetryAfter: retry,
	})
}

func (g *Gate) rateLimit(
	ctx context.Context,
	req *Request,
) Verdict {
	d := g.limiter.Check(req.ClientIP, req.Route.Category)

	req.Header.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	req.Header.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

	if d.Allowed {
		return PassThrough()
	}

	retry := d.RetryAfterSeconds()
	g.record(ctx, audit.RateLimitExceeded(
		req.ClientIP,
		req.HTTP.UserAgent(),
		req.Route.Path,
		string(req.Route.Category),
		retry,
		audit.SeverityMedium,
	))

	return Terminate(Response{
		Status:     http.StatusTooManyRequests,
		Message:    "too many requests",
		RetryAfter: retry,
	})
}

func (g *Gate) authenticate(
	ctx context.Context,
	req *Request,
) Verdict {
	if !req.Route.Protected || isPreflight(req.HTTP) {
		return PassThrough()
	}

	if req.token == "" {
		g.record(ctx, audit.AuthFailure(
			req.ClientIP,
			req.HTTP.UserAgent(),
			req.Route.Path,
			"missing credentials",
			audit.SeverityMedium,
		))
		return g.unauthenticated(req)
	}

	if g.detector.IsBlocked(req.ClientIP, g.cfg.AuthMaxAttempts, g.cfg.BruteForceWindow) {
		return g.blocked(ctx, req)
	}

	ok, err := g.callValidator(ctx, req.token, g.validatorFunc(false))
	if err != nil {
		g.logger.WarnContext(
			ctx,
			"token validation failed",
			slog.String("client_ip", req.ClientIP),
			slog.String("error", err.Error()),
		)
		g.record(ctx, audit.AuthFailure(
			req.ClientIP,
			req.HTTP.UserAgent(),
			req.Route.Path,
			"token validation failed",
			audit.SeverityHigh,
		))
		return g.unauthenticated(req)
	}

	if !ok {
		g.record(ctx, audit.AuthFailure(
			req.ClientIP,
			req.HTTP.UserAgent(),
			req.Route.Path,
			"invalid token",
			audit.SeverityHigh,
		))

		if g.detector.RecordAndCheck(
			req.ClientIP,
			g.cfg.AuthMaxAttempts,
			g.cfg.BruteForceWindow,
		) {
			return g.blocked(ctx, req)
		}

		return g.unauthenticated(req)
	}

	req.Authenticated = true

	return PassThrough()
}

func (g *Gate) unauthenticated(
	req *Request,
) Verdict {
	if req.Route.API {
		return Terminate(Response{
			Status:  http.StatusUnauthorized,
			Message: "authentication required",
		})
	}

	return Terminate(Response{
		Status:   http.StatusFound,
		Location: g.cfg.Routes.LoginPath + "?redirect=" + url.QueryEscape(req.HTTP.URL.RequestURI()),
	})
}

func (g *Gate) routeSpecific(
	ctx context.Context,
	req *Request,
) Verdict {
	r := req.HTTP

	if req.Route.API {
		req.RequestID = g.newID()
		req.Header.Set(echo.HeaderXRequestID, req.RequestID)
		if g.cfg.APIVersion != "" {
			req.Header.Set("X-API-Version", g.cfg.APIVersion)
		}
	}

	if isPreflight(r) {
		return Terminate(Response{Status: http.StatusNoContent})
	}

	if req.Route.Upload && g.cfg.MaxUploadBytes > 0 && r.ContentLength > g.cfg.MaxUploadBytes {
		in := audit.SecurityViolation(
			req.ClientIP,
			r.UserAgent(),
			req.Route.Path,
			"upload exceeds size limit",
			audit.SeverityMedium,
		)
		in.Metadata["content_length"] = r.ContentLength
		in.Metadata["max_bytes"] = g.cfg.MaxUploadBytes
		g.record(ctx, in)

		return Terminate(Response{
			Status:  http.StatusRequestEntityTooLarge,
			Message: "payload too large",
		})
	}

	if req.Route.Admin {
		var (
			ok  bool
			err error
		)
		if req.Authenticated {
			ok, err = g.callValidator(ctx, req.token, g.validatorFunc(true))
		}

		if err != nil || !ok {
			reason := "admin authorization denied"
			if err != nil {
				reason = "admin authorization failed"
			}
			g.record(ctx, audit.AuthFailure(
				req.ClientIP,
				r.UserAgent(),
				req.Route.Path,
				reason,
				audit.SeverityHigh,
			))

			return Terminate(Response{Status: http.StatusForbidden, Message: "forbidden"})
		}
	}

	return PassThrough()
}

func isPreflight(
	r *http.Request,
) bool {
	return r.Method == http.MethodOptions &&
		r.Header.Get("Origin") != "" &&
		r.Header.Get("Access-Control-Request-Method") != ""
}

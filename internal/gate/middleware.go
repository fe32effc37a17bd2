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
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/retr0h/gatekeeper/internal/audit"
)

// Middleware adapts the gate to echo. Terminal verdicts are written
// directly; otherwise the finalized request continues to next. Panics from
// any stage or from next become a critical audit event and a generic 500.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			var req *Request

			defer func() {
				if rec := recover(); rec != nil {
					err = g.recoverPanic(c, req, rec)
				}
			}()

			ctx := c.Request().Context()
			req = g.NewRequest(c.Request())
			verdict := g.run(ctx, req)

			g.Finalize(req, c.Response().Header())

			if verdict.Terminate {
				return g.write(c, req, verdict.Response)
			}

			c.Set(ContextKeyClientIP, req.ClientIP)
			if req.RequestID != "" {
				c.Set(ContextKeyRequestID, req.RequestID)
				c.SetRequest(c.Request().WithContext(WithRequestID(ctx, req.RequestID)))
			}
			if req.Authenticated {
				c.Set(ContextKeyToken, req.token)
			}

			if req.Route.Upload && g.cfg.MaxUploadBytes > 0 {
				r := c.Request()
				r.Body = http.MaxBytesReader(c.Response(), r.Body, g.cfg.MaxUploadBytes)
			}

			return next(c)
		}
	}
}

func (g *Gate) write(
	c echo.Context,
	req *Request,
	resp Response,
) error {
	if resp.RetryAfter > 0 {
		c.Response().Header().Set("Retry-After", strconv.Itoa(resp.RetryAfter))
	}

	switch {
	case resp.Location != "":
		return c.Redirect(resp.Status, resp.Location)
	case resp.Status == http.StatusNoContent:
		return c.NoContent(resp.Status)
	case req.Route.API:
		return c.JSON(resp.Status, ErrorResponse{
			Error:      resp.Message,
			RetryAfter: resp.RetryAfter,
			RequestID:  req.RequestID,
		})
	default:
		return c.String(resp.Status, resp.Message)
	}
}

func (g *Gate) recoverPanic(
	c echo.Context,
	req *Request,
	rec any,
) error {
	r := c.Request()
	ctx := context.WithoutCancel(r.Context())

	if req == nil {
		req = &Request{
			HTTP:   r,
			Route:  g.cfg.Routes.resolve(NewClassifier(nil), r.Method, r.URL.Path),
			Header: http.Header{},
		}
	}

	detail := fmt.Sprintf("%v", rec)
	g.logger.ErrorContext(
		ctx,
		"recovered panic in request pipeline",
		slog.String("path", r.URL.Path),
		slog.String("error", detail),
	)

	in := audit.SystemError(req.ClientIP, req.Route.Path, detail)
	in.UserAgent = r.UserAgent()
	in.Metadata = map[string]any{"stack": string(debug.Stack())}
	g.record(ctx, in)
	g.recorder.RecordDecision(ctx, StageRecover, strconv.Itoa(http.StatusInternalServerError))

	if c.Response().Committed {
		return nil
	}

	g.Finalize(req, c.Response().Header())

	return g.write(c, req, Response{
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
	})
}

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
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/retr0h/gatekeeper/internal/gate"
	"github.com/retr0h/gatekeeper/internal/policy"
)

// GetCSRFToken issues a double-submit token. The same value is set in the
// csrf-token cookie and returned in the body for the client to echo back
// in X-CSRF-Token.
func (s *Server) GetCSRFToken(
	c echo.Context,
) error {
	token, err := policy.IssueCSRFToken()
	if err != nil {
		s.logger.ErrorContext(
			c.Request().Context(),
			"failed to issue csrf token",
			slog.String("error", err.Error()),
		)
		return c.JSON(http.StatusInternalServerError, gate.ErrorResponse{
			Error:     "internal server error",
			RequestID: requestID(c),
		})
	}

	c.SetCookie(policy.CSRFCookieFor(token, s.appConfig.Gate.CSRF.CookieSecure))

	return c.JSON(http.StatusOK, CSRFResponse{Token: token})
}

func requestID(
	c echo.Context,
) string {
	id, _ := c.Get(gate.ContextKeyRequestID).(string)
	return id
}

func clientIP(
	c echo.Context,
) string {
	ip, _ := c.Get(gate.ContextKeyClientIP).(string)
	return ip
}

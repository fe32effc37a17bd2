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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/retr0h/gatekeeper/internal/audit"
	"github.com/retr0h/gatekeeper/internal/gate"
	"github.com/retr0h/gatekeeper/internal/validation"
)

// GetAuditEvents returns a page of audit events matching the query.
//
// Query parameters: type and severity (repeatable or comma separated),
// user_id, resource_type, resource_id, ip, success, start and end
// (RFC 3339), page and limit.
func (s *Server) GetAuditEvents(
	c echo.Context,
) error {
	ctx := c.Request().Context()

	filter, err := parseFilter(c)
	if err != nil {
		return s.badRequest(c, err)
	}

	result, err := s.store.Search(ctx, filter)
	if err != nil {
		if errors.Is(err, audit.ErrInvalidFilter) {
			return s.badRequest(c, err)
		}

		s.logger.ErrorContext(ctx, "failed to search audit events", slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, gate.ErrorResponse{
			Error:     "failed to search audit events",
			RequestID: requestID(c),
		})
	}

	return c.JSON(http.StatusOK, result)
}

// GetAuditStats returns aggregate counts over every retained event.
func (s *Server) GetAuditStats(
	c echo.Context,
) error {
	return c.JSON(http.StatusOK, s.store.Stats(c.Request().Context()))
}

// GetAuditExport downloads every matching event as a JSON array. Paging
// parameters are ignored. The export itself is audited.
func (s *Server) GetAuditExport(
	c echo.Context,
) error {
	ctx := c.Request().Context()

	filter, err := parseFilter(c)
	if err != nil {
		return s.badRequest(c, err)
	}

	data, err := s.store.ExportAll(ctx, &filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to export audit events", slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, gate.ErrorResponse{
			Error:     "failed to export audit events",
			RequestID: requestID(c),
		})
	}

	s.store.Record(ctx, audit.AdminAction(
		clientIP(c),
		s.subjectOf(c),
		"audit_export",
		"audit",
		c.Request().URL.RawQuery,
	))

	name := fmt.Sprintf("audit-export-%s.json", s.now().UTC().Format("20060102T150405Z"))
	c.Response().Header().Set(
		echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", name),
	)

	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

func (s *Server) subjectOf(
	c echo.Context,
) string {
	token, _ := c.Get(gate.ContextKeyToken).(string)
	if token == "" || s.subject == nil {
		return ""
	}

	return s.subject(c.Request().Context(), token)
}

func (s *Server) badRequest(
	c echo.Context,
	err error,
) error {
	return c.JSON(http.StatusBadRequest, gate.ErrorResponse{
		Error:     err.Error(),
		RequestID: requestID(c),
	})
}

// parseFilter binds the audit query parameters and validates the result.
func parseFilter(
	c echo.Context,
) (audit.Filter, error) {
	var (
		f          audit.Filter
		types      []string
		severities []string
		success    string
		start      time.Time
		end        time.Time
	)

	err := echo.QueryParamsBinder(c).
		Strings("type", &types).
		Strings("severity", &severities).
		String("user_id", &f.UserID).
		String("resource_type", &f.ResourceType).
		String("resource_id", &f.ResourceID).
		String("ip", &f.IPAddress).
		String("success", &success).
		Time("start", &start, time.RFC3339).
		Time("end", &end, time.RFC3339).
		Int("page", &f.Page).
		Int("limit", &f.Limit).
		BindError()
	if err != nil {
		return audit.Filter{}, fmt.Errorf("%w: %s", audit.ErrInvalidFilter, bindMessage(err))
	}

	for _, t := range splitValues(types) {
		f.EventTypes = append(f.EventTypes, audit.EventType(t))
	}
	for _, sv := range splitValues(severities) {
		f.Severities = append(f.Severities, audit.Severity(sv))
	}

	if success != "" {
		b, err := strconv.ParseBool(success)
		if err != nil {
			return audit.Filter{}, fmt.Errorf("%w: success must be a boolean", audit.ErrInvalidFilter)
		}
		f.Success = &b
	}

	if !start.IsZero() {
		f.StartTime = &start
	}
	if !end.IsZero() {
		f.EndTime = &end
	}

	if msg, ok := validation.Struct(f); !ok {
		return audit.Filter{}, fmt.Errorf("%w: %s", audit.ErrInvalidFilter, msg)
	}

	return f, nil
}

// splitValues flattens repeated and comma-separated values.
func splitValues(
	values []string,
) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

func bindMessage(
	err error,
) string {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return fmt.Sprintf("invalid value for %s", be.Field)
	}

	return err.Error()
}

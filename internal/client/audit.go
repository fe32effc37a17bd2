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

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/retr0h/gatekeeper/internal/audit"
	"github.com/retr0h/gatekeeper/internal/audit/export"
)

const auditPath = "/api/admin/audit"

// SearchAudit returns a page of events matching query.
func (c *Client) SearchAudit(
	ctx context.Context,
	query url.Values,
) (*audit.SearchResult, error) {
	var result audit.SearchResult
	if err := c.getJSON(ctx, auditPath, query, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// AuditStats returns aggregate counts over every retained event.
func (c *Client) AuditStats(
	ctx context.Context,
) (*audit.Stats, error) {
	var stats audit.Stats
	if err := c.getJSON(ctx, auditPath+"/stats", nil, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

// ExportAudit downloads every event matching query in one response.
func (c *Client) ExportAudit(
	ctx context.Context,
	query url.Values,
) ([]audit.Event, error) {
	var events []audit.Event
	if err := c.getJSON(ctx, auditPath+"/export", query, &events); err != nil {
		return nil, err
	}

	return events, nil
}

// AuditFetcher pages through SearchAudit for export.Run. Offsets are
// converted to pages, so the batch size must stay constant. Unless query
// sets end, later pages are pinned to the newest timestamp of the first
// page, so events recorded during the run do not shift older ones onto the
// next page.
func (c *Client) AuditFetcher(
	query url.Values,
) export.Fetcher {
	var pinnedEnd string

	return func(
		ctx context.Context,
		limit int,
		offset int,
	) ([]audit.Event, int, error) {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		q.Set("limit", strconv.Itoa(limit))
		q.Set("page", strconv.Itoa(offset/limit+1))
		if pinnedEnd != "" {
			q.Set("end", pinnedEnd)
		}

		result, err := c.SearchAudit(ctx, q)
		if err != nil {
			return nil, 0, err
		}

		if pinnedEnd == "" && q.Get("end") == "" && len(result.Events) > 0 {
			pinnedEnd = result.Events[0].Timestamp.UTC().Format(time.RFC3339Nano)
		}

		return result.Events, result.Total, nil
	}
}

// getJSON decodes a GET response into out. A 429 is retried up to
// maxRetries times after the server's Retry-After.
func (c *Client) getJSON(
	ctx context.Context,
	path string,
	query url.Values,
	out any,
) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	for attempt := 0; ; attempt++ {
		err := c.fetchJSON(ctx, path, target, out)

		var respErr *ResponseError
		if !errors.As(err, &respErr) ||
			respErr.StatusCode != http.StatusTooManyRequests ||
			attempt >= c.maxRetries {
			return err
		}

		wait := max(respErr.RetryAfter, time.Second)
		c.logger.Info(
			"rate limited, retrying",
			slog.String("path", path),
			slog.Duration("wait", wait),
			slog.Int("attempt", attempt+1),
		)
		if err := c.sleep(ctx, wait); err != nil {
			return fmt.Errorf("waiting out rate limit: %w", err)
		}
	}
}

func (c *Client) fetchJSON(
	ctx context.Context,
	path string,
	target string,
	out any,
) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respErr := &ResponseError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
		var payload struct {
			Error     string `json:"error"`
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
		}
		if json.Unmarshal(body, &payload) == nil {
			respErr.Message = payload.Error
			if respErr.Message == "" {
				respErr.Message = payload.Message
			}
			respErr.RequestID = payload.RequestID
		}
		return respErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// parseRetryAfter reads delta-seconds. HTTP dates are not sent by the gate
// and yield zero.
func parseRetryAfter(
	value string,
) time.Duration {
	secs, err := strconv.Atoi(value)
	if err != nil || secs < 0 {
		return 0
	}

	return time.Duration(secs) * time.Second
}

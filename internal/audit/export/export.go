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

// Package export provides pluggable audit log export with pagination.
package export

import (
	"context"
	"fmt"
	"log/slog"
)

// ProgressFunc is called after each page with the running exported count
// and the latest total reported by the fetcher.
type ProgressFunc func(exported int, total int)

// Run pages through the fetcher and writes every event to the exporter.
// The exporter is closed on every path once opened. On error the returned
// Result reflects what was written before the failure. Cancelling ctx stops
// the run between pages.
func Run(
	ctx context.Context,
	logger *slog.Logger,
	fetcher Fetcher,
	exporter Exporter,
	batchSize int,
	onProgress ProgressFunc,
) (result *Result, err error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	if err := exporter.Open(ctx); err != nil {
		return nil, fmt.Errorf("opening exporter: %w", err)
	}
	defer func() {
		if closeErr := exporter.Close(ctx); closeErr != nil {
			logger.Error("closing exporter", slog.String("error", closeErr.Error()))
			if err == nil {
				err = fmt.Errorf("closing exporter: %w", closeErr)
			}
		}
	}()

	result = &Result{}
	seen := make(map[string]struct{})
	offset := 0
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf(
				"export cancelled after %d events: %w",
				result.ExportedEntries,
				ctxErr,
			)
		}

		page, total, err := fetcher(ctx, batchSize, offset)
		if err != nil {
			return result, fmt.Errorf("fetching events at offset %d: %w", offset, err)
		}
		result.TotalEntries = total
		result.Pages++
		offset += len(page)

		// Events recorded mid-run push older ones across page boundaries,
		// so an event may come back on the next page as well.
		for i := range page {
			if _, dup := seen[page[i].ID]; dup {
				result.Duplicates++
				continue
			}
			if err := exporter.Write(ctx, page[i]); err != nil {
				return result, fmt.Errorf("writing event %s: %w", page[i].ID, err)
			}
			seen[page[i].ID] = struct{}{}
			result.ExportedEntries++
		}

		logger.Debug(
			"exported page",
			slog.Int("page", result.Pages),
			slog.Int("events", len(page)),
			slog.Int("exported", result.ExportedEntries),
			slog.Int("total", total),
		)

		if onProgress != nil {
			onProgress(result.ExportedEntries, total)
		}

		// A short or empty page means the source is exhausted, even when
		// events recorded mid-run pushed the total past what we have.
		if len(page) < batchSize || offset >= total {
			return result, nil
		}
	}
}

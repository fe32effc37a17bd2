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

package export

import (
	"context"
	"time"

	"github.com/retr0h/gatekeeper/internal/audit"
)

// Fetcher returns up to limit events starting at offset, plus the total
// number of matching events.
type Fetcher func(ctx context.Context, limit int, offset int) ([]audit.Event, int, error)

// Exporter is a destination for exported events.
type Exporter interface {
	// Open prepares the destination.
	Open(ctx context.Context) error
	// Write appends a single event.
	Write(ctx context.Context, event audit.Event) error
	// Close flushes and releases the destination.
	Close(ctx context.Context) error
}

// Result summarizes an export run.
type Result struct {
	TotalEntries    int
	ExportedEntries int
	// Pages is the number of fetcher calls that returned.
	Pages int
	// Duplicates counts events skipped because their ID was already written.
	Duplicates int
}

// StoreFetcher pages through a local store with filter. Offsets are
// converted to pages, so limit must stay constant across calls. Unless
// filter sets EndTime, later pages stop at the newest timestamp seen on the
// first page.
func StoreFetcher(
	store audit.Store,
	filter audit.Filter,
) Fetcher {
	var pinned *time.Time

	return func(
		ctx context.Context,
		limit int,
		offset int,
	) ([]audit.Event, int, error) {
		f := filter
		f.Limit = limit
		f.Page = offset/limit + 1
		if pinned != nil {
			f.EndTime = pinned
		}

		result, err := store.Search(ctx, f)
		if err != nil {
			return nil, 0, err
		}

		if pinned == nil && filter.EndTime == nil && len(result.Events) > 0 {
			newest := result.Events[0].Timestamp
			pinned = &newest
		}

		return result.Events, result.Total, nil
	}
}

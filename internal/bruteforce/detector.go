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

// Package bruteforce tracks repeated attempts per identifier, independent of
// the per-category rate limiter.
package bruteforce

import (
	"sync"
	"time"
)

type attemptRecord struct {
	count       int
	lastAttempt time.Time
}

// Detector counts attempts per identifier. Thresholds are supplied per call
// so different call sites can apply different limits to the same records.
type Detector struct {
	mu      sync.Mutex
	records map[string]*attemptRecord
	now     func() time.Time
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock replaces time.Now. Used by tests.
func WithClock(
	now func() time.Time,
) Option {
	return func(d *Detector) {
		d.now = now
	}
}

// New creates an empty Detector.
func New(
	opts ...Option,
) *Detector {
	d := &Detector{
		records: make(map[string]*attemptRecord),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// RecordAndCheck records an attempt for identifier and returns true when the
// identifier is now blocked.
func (d *Detector) RecordAndCheck(
	identifier string,
	maxAttempts int,
	window time.Duration,
) bool {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.records[identifier]
	if !ok || now.Sub(rec.lastAttempt) > window {
		d.records[identifier] = &attemptRecord{count: 1, lastAttempt: now}
		return false
	}

	rec.count++
	rec.lastAttempt = now

	return rec.count > maxAttempts
}

// IsBlocked reports whether identifier is over maxAttempts within window
// without recording a new attempt.
func (d *Detector) IsBlocked(
	identifier string,
	maxAttempts int,
	window time.Duration,
) bool {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.records[identifier]
	if !ok || now.Sub(rec.lastAttempt) > window {
		return false
	}

	return rec.count > maxAttempts
}

// Attempts returns the recorded attempt count for identifier.
func (d *Detector) Attempts(
	identifier string,
) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if rec, ok := d.records[identifier]; ok {
		return rec.count
	}

	return 0
}

// Sweep removes records whose last attempt is older than window and returns
// the number removed.
func (d *Detector) Sweep(
	window time.Duration,
) int {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for id, rec := range d.records {
		if now.Sub(rec.lastAttempt) > window {
			delete(d.records, id)
			removed++
		}
	}

	return removed
}

// Len returns the number of tracked identifiers.
func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.records)
}

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

package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Decision is the outcome of a single Check.
type Decision struct {
	// Allowed is false when the request exceeded the window budget.
	Allowed bool
	// Limit is the MaxRequests of the applied config.
	Limit int
	// Remaining is the number of requests still admitted in this window.
	Remaining int
	// RetryAfter is the time until the window resets. Zero when allowed.
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never negative.
func (d Decision) RetryAfterSeconds() int {
	if d.RetryAfter <= 0 {
		return 0
	}

	return int(math.Ceil(d.RetryAfter.Seconds()))
}

type key struct {
	client   string
	category Category
}

type window struct {
	count int
	start time.Time
}

// Limiter counts requests per (client, category) in fixed windows.
// State is process-local; separate processes keep separate counters.
type Limiter struct {
	mu        sync.Mutex
	configs   map[Category]Config
	strictest *Config
	windows   map[key]*window
	now       func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now. Used by tests.
func WithClock(
	now func() time.Time,
) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a Limiter from per-category configs. The map is copied.
func New(
	configs map[Category]Config,
	opts ...Option,
) *Limiter {
	l := &Limiter{
		configs: make(map[Category]Config, len(configs)),
		windows: make(map[key]*window),
		now:     time.Now,
	}

	for category, cfg := range configs {
		if cfg.Window <= 0 || cfg.MaxRequests < 0 {
			continue
		}
		l.configs[category] = cfg

		if l.strictest == nil || cfg.perSecond() < l.strictest.perSecond() {
			c := cfg
			l.strictest = &c
		}
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// configFor resolves the limit for category. Unknown categories get the
// strictest configured limit.
func (l *Limiter) configFor(
	category Category,
) (Config, bool) {
	if cfg, ok := l.configs[category]; ok {
		return cfg, true
	}
	if l.strictest != nil {
		return *l.strictest, true
	}

	return Config{}, false
}

// Check counts one request for clientID in category and reports whether it
// is admitted. The increment and comparison happen under one lock.
func (l *Limiter) Check(
	clientID string,
	category Category,
) Decision {
	cfg, ok := l.configFor(category)
	if !ok {
		return Decision{Allowed: false}
	}

	now := l.now()
	k := key{client: clientID, category: category}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[k]
	if !exists || now.Sub(w.start) >= cfg.Window {
		l.windows[k] = &window{count: 1, start: now}
		if cfg.MaxRequests < 1 {
			return Decision{Allowed: false, RetryAfter: cfg.Window}
		}

		return Decision{
			Allowed:   true,
			Limit:     cfg.MaxRequests,
			Remaining: cfg.MaxRequests - 1,
		}
	}

	w.count++
	if w.count > cfg.MaxRequests {
		retry := w.start.Add(cfg.Window).Sub(now)
		if retry < 0 {
			retry = 0
		}

		return Decision{
			Allowed:    false,
			Limit:      cfg.MaxRequests,
			Remaining:  0,
			RetryAfter: retry,
		}
	}

	return Decision{
		Allowed:   true,
		Limit:     cfg.MaxRequests,
		Remaining: cfg.MaxRequests - w.count,
	}
}

// Count returns the requests counted in the live window for the key, or zero.
func (l *Limiter) Count(
	clientID string,
	category Category,
) int {
	cfg, ok := l.configFor(category)
	if !ok {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key{client: clientID, category: category}]
	if !exists || l.now().Sub(w.start) >= cfg.Window {
		return 0
	}

	return w.count
}

// Sweep drops windows that have already expired and returns how many were
// removed. Expired windows would be overwritten anyway; this bounds memory.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, w := range l.windows {
		cfg, ok := l.configs[k.category]
		if !ok && l.strictest != nil {
			cfg = *l.strictest
		}
		if now.Sub(w.start) >= cfg.Window {
			delete(l.windows, k)
			removed++
		}
	}

	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.windows)
}

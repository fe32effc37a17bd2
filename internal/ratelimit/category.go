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

// Package ratelimit provides fixed-window request counting keyed by client
// identifier and route category.
package ratelimit

import "time"

// Category selects the limit applied to a request.
type Category string

// Known route categories.
const (
	CategoryPublic   Category = "public"
	CategoryAuth     Category = "auth"
	CategoryMutation Category = "mutation"
	CategoryAdmin    Category = "admin"
	CategoryUpload   Category = "upload"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryPublic,
	CategoryAuth,
	CategoryMutation,
	CategoryAdmin,
	CategoryUpload,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}

	return false
}

// Config is the immutable limit for a category.
type Config struct {
	// Window is the length of a counting window.
	Window time.Duration
	// MaxRequests is the number of requests admitted per window.
	MaxRequests int
}

// perSecond returns the admitted request rate, used to rank strictness.
func (c Config) perSecond() float64 {
	if c.Window <= 0 {
		return 0
	}

	return float64(c.MaxRequests) / c.Window.Seconds()
}

// DefaultConfigs returns the built-in per-category limits.
func DefaultConfigs() map[Category]Config {
	return map[Category]Config{
		CategoryPublic:   {Window: time.Minute, MaxRequests: 100},
		CategoryAuth:     {Window: 15 * time.Minute, MaxRequests: 10},
		CategoryMutation: {Window: time.Minute, MaxRequests: 30},
		CategoryAdmin:    {Window: time.Minute, MaxRequests: 50},
		CategoryUpload:   {Window: time.Hour, MaxRequests: 20},
	}
}

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

package policy

import (
	"net/http"
	"slices"
	"strconv"
)

// CORS values sent alongside an allow-listed origin.
const (
	CORSAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	CORSAllowHeaders = "Content-Type, Authorization, X-CSRF-Token, X-Requested-With"
	CORSMaxAge       = 86400
)

// CORSHeaders sets the CORS response headers when origin is allow-listed and
// reports whether it did. Arbitrary origins are never reflected.
func (e *Engine) CORSHeaders(
	h http.Header,
	origin string,
) bool {
	if !slices.Contains(h.Values("Vary"), "Origin") {
		h.Add("Vary", "Origin")
	}

	if origin == "" || !e.OriginAllowed(origin) {
		return false
	}

	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", CORSAllowMethods)
	h.Set("Access-Control-Allow-Headers", CORSAllowHeaders)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Max-Age", strconv.Itoa(CORSMaxAge))

	return true
}

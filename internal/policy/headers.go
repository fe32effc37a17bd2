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
)

// ResponseClass selects which header set a response receives.
type ResponseClass string

const (
	// ClassPage is an HTML page response.
	ClassPage ResponseClass = "page"
	// ClassAPI is a JSON API response.
	ClassAPI ResponseClass = "api"
	// ClassUpload is a response to an upload endpoint.
	ClassUpload ResponseClass = "upload"
)

// HeaderSet maps header names to values. An empty value means the header is
// removed from the response.
type HeaderSet map[string]string

func (h HeaderSet) clone() HeaderSet {
	out := make(HeaderSet, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// DefaultHeaders returns a fresh copy of the built-in header catalog.
func DefaultHeaders() map[ResponseClass]HeaderSet {
	common := HeaderSet{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
		"Server":                    "",
		"X-Powered-By":              "",
	}

	page := common.clone()
	page["Content-Security-Policy"] = "default-src 'self'; script-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self'; " +
		"connect-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'"
	page["Referrer-Policy"] = "strict-origin-when-cross-origin"
	page["Permissions-Policy"] = "camera=(), microphone=(), geolocation=()"
	page["X-XSS-Protection"] = "1; mode=block"

	api := common.clone()
	api["Content-Security-Policy"] = "default-src 'none'; frame-ancestors 'none'"
	api["Referrer-Policy"] = "no-referrer"
	api["Cache-Control"] = "no-store, no-cache, must-revalidate, private"
	api["Pragma"] = "no-cache"

	upload := api.clone()
	upload["X-Download-Options"] = "noopen"
	upload["Cross-Origin-Resource-Policy"] = "same-origin"

	return map[ResponseClass]HeaderSet{
		ClassPage:   page,
		ClassAPI:    api,
		ClassUpload: upload,
	}
}

// ApplyHeaders merges the header set for class onto h. Empty-valued entries
// are deleted rather than written blank.
func (e *Engine) ApplyHeaders(
	h http.Header,
	class ResponseClass,
) {
	set, ok := e.headers[class]
	if !ok {
		set = e.headers[ClassPage]
	}

	for name, value := range set {
		if value == "" {
			h.Del(name)
			continue
		}
		h.Set(name, value)
	}
}

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

// Package policy holds the stateless request and response rules applied by
// the gate: security header catalogs, origin and user-agent screening, CORS,
// double-submit CSRF tokens and client IP resolution.
package policy

import (
	"net/http"
	"net/url"
	"strings"
)

// DefaultUserAgentDenyList holds substrings of well-known scanner signatures.
var DefaultUserAgentDenyList = []string{
	"sqlmap",
	"nikto",
	"nmap",
	"masscan",
	"zgrab",
	"dirbuster",
	"gobuster",
	"wpscan",
	"nuclei",
	"acunetix",
	"nessus",
	"havij",
	"w3af",
	"openvas",
	"burpcollaborator",
}

// Config configures an Engine. Zero values fall back to the package defaults.
type Config struct {
	// AllowedOrigins are exact Origin values trusted for CORS and screening.
	AllowedOrigins []string
	// UserAgentDenyList holds case-insensitive substrings that reject a request.
	UserAgentDenyList []string
	// Headers overrides the header catalog per response class.
	Headers map[ResponseClass]HeaderSet
}

// Engine evaluates policy rules. It holds no per-request state and is safe
// for concurrent use.
type Engine struct {
	origins map[string]struct{}
	denyUA  []string
	headers map[ResponseClass]HeaderSet
}

// New creates an Engine from the given Config.
func New(
	cfg Config,
) *Engine {
	e := &Engine{
		origins: make(map[string]struct{}, len(cfg.AllowedOrigins)),
		headers: DefaultHeaders(),
	}

	for _, o := range cfg.AllowedOrigins {
		e.origins[strings.TrimRight(o, "/")] = struct{}{}
	}

	denyList := cfg.UserAgentDenyList
	if len(denyList) == 0 {
		denyList = DefaultUserAgentDenyList
	}
	for _, token := range denyList {
		if token = strings.ToLower(strings.TrimSpace(token)); token != "" {
			e.denyUA = append(e.denyUA, token)
		}
	}

	for class, set := range cfg.Headers {
		e.headers[class] = set.clone()
	}

	return e
}

// OriginAllowed reports whether origin is on the allow-list.
func (e *Engine) OriginAllowed(
	origin string,
) bool {
	_, ok := e.origins[origin]
	return ok
}

// ValidateOrigin accepts requests without an Origin header, requests from an
// allow-listed origin, and same-origin requests whose Origin host matches the
// request Host.
func (e *Engine) ValidateOrigin(
	r *http.Request,
) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if e.OriginAllowed(origin) {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	return strings.EqualFold(u.Host, r.Host)
}

// ValidateUserAgent rejects requests with no User-Agent or one containing a
// deny-listed token.
func (e *Engine) ValidateUserAgent(
	r *http.Request,
) bool {
	ua := strings.ToLower(strings.TrimSpace(r.UserAgent()))
	if ua == "" {
		return false
	}

	for _, token := range e.denyUA {
		if strings.Contains(ua, token) {
			return false
		}
	}

	return true
}

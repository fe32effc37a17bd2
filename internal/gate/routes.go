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

package gate

import (
	"net/http"
	"strings"

	"github.com/retr0h/gatekeeper/internal/policy"
	"github.com/retr0h/gatekeeper/internal/ratelimit"
)

// Routes holds the path prefixes that drive classification.
type Routes struct {
	// APIPrefix marks JSON API routes.
	APIPrefix string
	// LoginPath is the redirect target for unauthenticated page requests.
	LoginPath string
	// ProtectedPrefixes require a valid token.
	ProtectedPrefixes []string
	// RestrictedAPIPrefixes fall into the auth rate-limit category.
	RestrictedAPIPrefixes []string
	// AdminPrefixes require an admin token and use the admin category.
	AdminPrefixes []string
	// UploadPrefixes are subject to the upload size cap and category.
	UploadPrefixes []string
	// CSRFExemptPrefixes skip double-submit validation.
	CSRFExemptPrefixes []string
}

// DefaultRoutes returns the built-in prefix layout.
func DefaultRoutes() Routes {
	return Routes{
		APIPrefix: "/api",
		LoginPath: "/login",
		ProtectedPrefixes: []string{
			"/admin",
			"/account",
			"/api/admin",
			"/api/account",
			"/api/upload",
			"/upload",
		},
		RestrictedAPIPrefixes: []string{
			"/api/auth",
			"/api/login",
			"/api/register",
			"/api/password-reset",
		},
		AdminPrefixes:      []string{"/admin", "/api/admin"},
		UploadPrefixes:     []string{"/api/upload", "/upload"},
		CSRFExemptPrefixes: []string{"/api/webhooks"},
	}
}

// Rule maps a path prefix to a rate-limit category. MutatingOnly rules match
// only methods other than GET, HEAD and OPTIONS.
type Rule struct {
	Prefix       string
	Category     ratelimit.Category
	MutatingOnly bool
}

// Rules builds the ordered classification list: admin, upload, restricted
// API, any mutation. Unmatched requests are public.
func (r Routes) Rules() []Rule {
	rules := make(
		[]Rule,
		0,
		len(r.AdminPrefixes)+len(r.UploadPrefixes)+len(r.RestrictedAPIPrefixes)+1,
	)

	for _, p := range r.AdminPrefixes {
		rules = append(rules, Rule{Prefix: p, Category: ratelimit.CategoryAdmin})
	}
	for _, p := range r.UploadPrefixes {
		rules = append(rules, Rule{Prefix: p, Category: ratelimit.CategoryUpload})
	}
	for _, p := range r.RestrictedAPIPrefixes {
		rules = append(rules, Rule{Prefix: p, Category: ratelimit.CategoryAuth})
	}

	return append(rules, Rule{
		Prefix:       "/",
		Category:     ratelimit.CategoryMutation,
		MutatingOnly: true,
	})
}

// Classifier evaluates Rules in order; the first match wins.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a Classifier over rules.
func NewClassifier(
	rules []Rule,
) *Classifier {
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// Classify returns the rate-limit category for a request.
func (c *Classifier) Classify(
	method string,
	path string,
) ratelimit.Category {
	mutating := IsMutating(method)

	for _, rule := range c.rules {
		if rule.MutatingOnly && !mutating {
			continue
		}
		if matchPrefix(path, rule.Prefix) {
			return rule.Category
		}
	}

	return ratelimit.CategoryPublic
}

// IsMutating reports whether method can change server state.
func IsMutating(
	method string,
) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

// Route is the resolved classification of a single request.
type Route struct {
	Path       string
	Category   ratelimit.Category
	Class      policy.ResponseClass
	API        bool
	Protected  bool
	Admin      bool
	Upload     bool
	CSRFExempt bool
}

func (r Routes) resolve(
	c *Classifier,
	method string,
	path string,
) Route {
	route := Route{
		Path:       path,
		Category:   c.Classify(method, path),
		API:        matchPrefix(path, r.APIPrefix),
		Protected:  matchAny(path, r.ProtectedPrefixes),
		Admin:      matchAny(path, r.AdminPrefixes),
		Upload:     matchAny(path, r.UploadPrefixes),
		CSRFExempt: matchAny(path, r.CSRFExemptPrefixes),
	}

	switch {
	case route.Upload:
		route.Class = policy.ClassUpload
	case route.API:
		route.Class = policy.ClassAPI
	default:
		route.Class = policy.ClassPage
	}

	return route
}

// matchPrefix matches on path segment boundaries, so "/api" covers "/api"
// and "/api/x" but not "/apix".
func matchPrefix(
	path string,
	prefix string,
) bool {
	if prefix == "" {
		return false
	}
	if prefix == "/" || strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(path, prefix)
	}

	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func matchAny(
	path string,
	prefixes []string,
) bool {
	for _, p := range prefixes {
		if matchPrefix(path, p) {
			return true
		}
	}

	return false
}

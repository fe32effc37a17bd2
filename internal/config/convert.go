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

package config

import (
	"github.com/retr0h/gatekeeper/internal/gate"
	"github.com/retr0h/gatekeeper/internal/policy"
	"github.com/retr0h/gatekeeper/internal/ratelimit"
)

// LimiterConfigs converts the rate-limit table for ratelimit.New.
func (g Gate) LimiterConfigs() map[ratelimit.Category]ratelimit.Config {
	out := make(map[ratelimit.Category]ratelimit.Config, len(g.RateLimits))
	for name, rl := range g.RateLimits {
		out[ratelimit.Category(name)] = ratelimit.Config{
			Window:      rl.Window,
			MaxRequests: rl.MaxRequests,
		}
	}

	return out
}

// GateConfig converts the pipeline settings for gate.New.
func (g Gate) GateConfig() gate.Config {
	return gate.Config{
		Routes: gate.Routes{
			APIPrefix:             g.Routes.APIPrefix,
			LoginPath:             g.Routes.LoginPath,
			ProtectedPrefixes:     g.Routes.ProtectedPrefixes,
			RestrictedAPIPrefixes: g.Routes.RestrictedAPIPrefixes,
			AdminPrefixes:         g.Routes.AdminPrefixes,
			UploadPrefixes:        g.Routes.UploadPrefixes,
			CSRFExemptPrefixes:    g.Routes.CSRFExemptPrefixes,
		},
		ScreenMaxAttempts: g.BruteForce.ScreenMaxAttempts,
		AuthMaxAttempts:   g.BruteForce.AuthMaxAttempts,
		BruteForceWindow:  g.BruteForce.Window,
		MaxUploadBytes:    g.MaxUploadBytes,
		APIVersion:        g.APIVersion,
		AuthCookieName:    g.Auth.CookieName,
		AuthTimeout:       g.Auth.Timeout,
		CSRFEnabled:       g.CSRF.Enabled,
		TrustProxy:        g.TrustProxy,
		TrustedProxyCount: g.TrustedProxyCount,
	}
}

// PolicyConfig converts origin and user-agent settings for policy.New.
func (c Config) PolicyConfig() policy.Config {
	return policy.Config{
		AllowedOrigins:    c.API.Server.Security.CORS.AllowOrigins,
		UserAgentDenyList: c.Gate.UserAgentDenyList,
	}
}

// CustomRoles flattens configured roles for the token validator.
func (s ServerSecurity) CustomRoles() map[string][]string {
	if len(s.Roles) == 0 {
		return nil
	}

	out := make(map[string][]string, len(s.Roles))
	for name, role := range s.Roles {
		out[name] = role.Permissions
	}

	return out
}

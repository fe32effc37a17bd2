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
	"time"

	"github.com/spf13/viper"

	"github.com/retr0h/gatekeeper/internal/audit"
	"github.com/retr0h/gatekeeper/internal/gate"
	"github.com/retr0h/gatekeeper/internal/ratelimit"
)

// Defaults for values left empty in the configuration file.
const (
	DefaultPort            = 8080
	DefaultMetricsPath     = "/metrics"
	DefaultSweepSchedule   = "@every 5m"
	DefaultCleanupSchedule = "@daily"
	DefaultRetentionDays   = 30
	DefaultNotifyTimeout   = 5 * time.Second
	DefaultClientURL       = "http://localhost:8080"
	DefaultClientTimeout   = 30 * time.Second
	DefaultNATSSubject     = "gatekeeper.audit.critical"
)

// SetDefaults registers the defaults whose zero value is meaningful in the
// file: CSRF enforcement, audit retention and the job schedules. An explicit
// false, 0 or "" in the file or environment overrides them, which is how
// cleanup and the sweeps are turned off. Call before unmarshalling.
func SetDefaults(
	v *viper.Viper,
) {
	v.SetDefault("gate.csrf.enabled", true)
	v.SetDefault("gate.brute_force.sweep_schedule", DefaultSweepSchedule)
	v.SetDefault("audit.retention_days", DefaultRetentionDays)
	v.SetDefault("audit.cleanup_schedule", DefaultCleanupSchedule)
}

// ApplyDefaults fills the remaining zero values in cfg. Values covered by
// SetDefaults are left as read.
func ApplyDefaults(
	cfg *Config,
) {
	gd := gate.DefaultConfig()

	if cfg.API.Server.Port == 0 {
		cfg.API.Server.Port = DefaultPort
	}
	if cfg.API.Client.URL == "" {
		cfg.API.Client.URL = DefaultClientURL
	}
	if cfg.API.Client.Timeout <= 0 {
		cfg.API.Client.Timeout = DefaultClientTimeout
	}

	if cfg.Gate.RateLimits == nil {
		cfg.Gate.RateLimits = make(map[string]RateLimit)
	}
	for category, rl := range ratelimit.DefaultConfigs() {
		if _, ok := cfg.Gate.RateLimits[string(category)]; !ok {
			cfg.Gate.RateLimits[string(category)] = RateLimit{
				Window:      rl.Window,
				MaxRequests: rl.MaxRequests,
			}
		}
	}

	bf := &cfg.Gate.BruteForce
	if bf.ScreenMaxAttempts == 0 {
		bf.ScreenMaxAttempts = gd.ScreenMaxAttempts
	}
	if bf.AuthMaxAttempts == 0 {
		bf.AuthMaxAttempts = gd.AuthMaxAttempts
	}
	if bf.Window == 0 {
		bf.Window = gd.BruteForceWindow
	}

	applyRouteDefaults(&cfg.Gate.Routes, gd.Routes)

	if cfg.Gate.MaxUploadBytes == 0 {
		cfg.Gate.MaxUploadBytes = gd.MaxUploadBytes
	}
	if cfg.Gate.APIVersion == "" {
		cfg.Gate.APIVersion = gd.APIVersion
	}
	if cfg.Gate.Auth.CookieName == "" {
		cfg.Gate.Auth.CookieName = gd.AuthCookieName
	}
	if cfg.Gate.Auth.Timeout == 0 {
		cfg.Gate.Auth.Timeout = gd.AuthTimeout
	}

	if cfg.Audit.Capacity == 0 {
		cfg.Audit.Capacity = audit.DefaultCapacity
	}
	if cfg.Audit.NotifyTimeout == 0 {
		cfg.Audit.NotifyTimeout = DefaultNotifyTimeout
	}
	if cfg.Audit.NATS.Subject == "" {
		cfg.Audit.NATS.Subject = DefaultNATSSubject
	}

	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

func applyRouteDefaults(
	r *Routes,
	d gate.Routes,
) {
	if r.APIPrefix == "" {
		r.APIPrefix = d.APIPrefix
	}
	if r.LoginPath == "" {
		r.LoginPath = d.LoginPath
	}
	if r.ProtectedPrefixes == nil {
		r.ProtectedPrefixes = d.ProtectedPrefixes
	}
	if r.RestrictedAPIPrefixes == nil {
		r.RestrictedAPIPrefixes = d.RestrictedAPIPrefixes
	}
	if r.AdminPrefixes == nil {
		r.AdminPrefixes = d.AdminPrefixes
	}
	if r.UploadPrefixes == nil {
		r.UploadPrefixes = d.UploadPrefixes
	}
	if r.CSRFExemptPrefixes == nil {
		r.CSRFExemptPrefixes = d.CSRFExemptPrefixes
	}
}

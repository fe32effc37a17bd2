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
)

// Config represents the root structure of the YAML configuration file.
// This struct is used to unmarshal configuration data from Viper.
type Config struct {
	API       API       `mapstructure:"api"       mask:"struct"`
	Gate      Gate      `mapstructure:"gate"`
	Audit     Audit     `mapstructure:"audit"`
	Telemetry Telemetry `mapstructure:"telemetry"`
	// Debug enable or disable debug option set from CLI.
	Debug bool `mapstructure:"debug"`
}

// Telemetry configuration settings.
type Telemetry struct {
	Tracing TracingConfig `mapstructure:"tracing,omitempty"`
	Metrics MetricsConfig `mapstructure:"metrics,omitempty"`
}

// MetricsConfig configuration settings for Prometheus metrics.
type MetricsConfig struct {
	// Path is the HTTP path for the Prometheus scrape endpoint.
	// Defaults to "/metrics" when empty.
	Path string `mapstructure:"path"`
}

// TracingConfig configuration settings for distributed tracing.
type TracingConfig struct {
	// Enabled enables or disables tracing.
	Enabled bool `mapstructure:"enabled"`
	// Exporter selects the trace exporter: "stdout" or "otlp".
	Exporter string `mapstructure:"exporter" validate:"omitempty,oneof=stdout otlp"`
	// OTLPEndpoint is the gRPC endpoint for the OTLP exporter (e.g., "localhost:4317").
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// API configuration settings.
type API struct {
	Client `mapstructure:"client" mask:"struct"`
	Server `mapstructure:"server" mask:"struct"`
}

// Client configuration settings.
type Client struct {
	// URL the client will connect to
	URL string `mapstructure:"url"`
	// Timeout bounds each client request.
	Timeout time.Duration `mapstructure:"timeout"`
	// Security contains security-related configuration for the client, such as access tokens.
	Security ClientSecurity `mapstructure:"security" mask:"struct"`
}

// Server configuration settings.
type Server struct {
	// Port the server will bind to.
	Port int `mapstructure:"port" validate:"gte=0,lte=65535"`
	// Security contains security-related configuration for the server, such as CORS and tokens.
	Security ServerSecurity `mapstructure:"security" mask:"struct"`
}

// CustomRole defines a named set of permissions that can be assigned to tokens.
type CustomRole struct {
	// Permissions granted to this role.
	Permissions []string `mapstructure:"permissions"`
}

// ServerSecurity represents security-related settings for the server.
type ServerSecurity struct {
	// CORS Cross-Origin Resource Sharing (CORS) settings for the server.
	CORS CORS `mapstructure:"cors"`
	// SigningKey is the key used for signing or validating tokens.
	SigningKey string `mapstructure:"signing_key" validate:"required" mask:"password"`
	// Roles defines custom roles with fine-grained permissions.
	Roles map[string]CustomRole `mapstructure:"roles"`
}

// ClientSecurity represents security-related settings for the client.
type ClientSecurity struct {
	// BearerToken is the JWT sent by admin client commands.
	BearerToken string `mapstructure:"bearer_token" mask:"password"`
}

// CORS represents the CORS (Cross-Origin Resource Sharing) settings.
type CORS struct {
	// List of origins allowed to access the server (e.g., "https://app.example.com").
	AllowOrigins []string `mapstructure:"allow_origins,omitempty"`
}

// Gate configures the request pipeline.
type Gate struct {
	// RateLimits keyed by category name (public, auth, mutation, admin, upload).
	RateLimits map[string]RateLimit `mapstructure:"rate_limits" validate:"dive,keys,valid_category,endkeys"`
	BruteForce BruteForce           `mapstructure:"brute_force"`
	Routes     Routes               `mapstructure:"routes"`
	// UserAgentDenyList replaces the built-in scanner signature list.
	UserAgentDenyList []string `mapstructure:"user_agent_deny_list"`
	// MaxUploadBytes caps Content-Length on upload routes.
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"gte=0"`
	APIVersion     string `mapstructure:"api_version"`
	Auth           Auth   `mapstructure:"auth"`
	CSRF           CSRF   `mapstructure:"csrf"`
	// TrustProxy honours X-Forwarded-For and X-Real-IP.
	TrustProxy        bool `mapstructure:"trust_proxy"`
	TrustedProxyCount int  `mapstructure:"trusted_proxy_count" validate:"gte=0"`
}

// RateLimit is a fixed-window budget.
type RateLimit struct {
	Window      time.Duration `mapstructure:"window"       validate:"gt=0"`
	MaxRequests int           `mapstructure:"max_requests" validate:"gte=0"`
}

// BruteForce thresholds share one attempt map keyed by client IP.
type BruteForce struct {
	ScreenMaxAttempts int           `mapstructure:"screen_max_attempts" validate:"gt=0"`
	AuthMaxAttempts   int           `mapstructure:"auth_max_attempts"   validate:"gt=0"`
	Window            time.Duration `mapstructure:"window"              validate:"gt=0"`
	// SweepSchedule is a cron expression for pruning stale attempt records.
	SweepSchedule string `mapstructure:"sweep_schedule"`
}

// Routes holds the classification prefixes.
type Routes struct {
	APIPrefix             string   `mapstructure:"api_prefix"              validate:"required,startswith=/"`
	LoginPath             string   `mapstructure:"login_path"              validate:"required,startswith=/"`
	ProtectedPrefixes     []string `mapstructure:"protected_prefixes"      validate:"dive,startswith=/"`
	RestrictedAPIPrefixes []string `mapstructure:"restricted_api_prefixes" validate:"dive,startswith=/"`
	AdminPrefixes         []string `mapstructure:"admin_prefixes"          validate:"dive,startswith=/"`
	UploadPrefixes        []string `mapstructure:"upload_prefixes"         validate:"dive,startswith=/"`
	CSRFExemptPrefixes    []string `mapstructure:"csrf_exempt_prefixes"    validate:"dive,startswith=/"`
}

// Auth configures credential extraction and the validator timeout.
type Auth struct {
	CookieName string        `mapstructure:"cookie_name"`
	Timeout    time.Duration `mapstructure:"timeout"     validate:"gt=0"`
}

// CSRF configures double-submit protection.
type CSRF struct {
	Enabled      bool `mapstructure:"enabled"`
	CookieSecure bool `mapstructure:"cookie_secure"`
}

// Audit configures the in-memory event store.
type Audit struct {
	// Capacity is the number of retained events.
	Capacity int `mapstructure:"capacity" validate:"gt=0"`
	// RetentionDays prunes older events on CleanupSchedule; zero disables.
	RetentionDays   int           `mapstructure:"retention_days"   validate:"gte=0"`
	CleanupSchedule string        `mapstructure:"cleanup_schedule"`
	NotifyTimeout   time.Duration `mapstructure:"notify_timeout"   validate:"gt=0"`
	NATS            AuditNATS     `mapstructure:"nats"`
}

// AuditNATS publishes critical events to a NATS subject.
type AuditNATS struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"         validate:"required_if=Enabled true"`
	Subject    string `mapstructure:"subject"     validate:"required_if=Enabled true"`
	ClientName string `mapstructure:"client_name"`
}

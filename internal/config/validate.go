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
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/retr0h/gatekeeper/internal/ratelimit"
	"github.com/retr0h/gatekeeper/internal/validation"
)

func init() {
	validation.RegisterEnum("valid_category", func(v string) bool {
		return ratelimit.Category(v).Valid()
	})
}

// Validate checks struct constraints and cron schedules. Call it after
// ApplyDefaults.
func Validate(
	cfg *Config,
) error {
	if errMsg, ok := validation.Struct(cfg); !ok {
		return fmt.Errorf("invalid configuration: %s", errMsg)
	}

	for name, rl := range cfg.Gate.RateLimits {
		if rl.Window <= 0 {
			return fmt.Errorf("invalid configuration: gate.rate_limits.%s.window must be positive", name)
		}
	}

	schedules := map[string]string{
		"gate.brute_force.sweep_schedule": cfg.Gate.BruteForce.SweepSchedule,
		"audit.cleanup_schedule":          cfg.Audit.CleanupSchedule,
	}
	for key, spec := range schedules {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid configuration: %s %q: %w", key, spec, err)
		}
	}

	return nil
}

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

package audit

// SecurityViolation builds the input for a blocked origin, user agent or
// CSRF check.
func SecurityViolation(
	ip string,
	userAgent string,
	path string,
	reason string,
	severity Severity,
) Input {
	return Input{
		EventType:    EventSecurityViolation,
		Severity:     severity,
		IPAddress:    ip,
		UserAgent:    userAgent,
		ResourceType: "route",
		ResourceID:   path,
		ErrorMessage: reason,
		Metadata:     map[string]any{"reason": reason},
	}
}

// RateLimitExceeded builds the input for a throttled request.
func RateLimitExceeded(
	ip string,
	userAgent string,
	path string,
	limiter string,
	retryAfterSeconds int,
	severity Severity,
) Input {
	return Input{
		EventType:    EventRateLimitExceeded,
		Severity:     severity,
		IPAddress:    ip,
		UserAgent:    userAgent,
		ResourceType: "route",
		ResourceID:   path,
		ErrorMessage: "rate limit exceeded",
		Metadata: map[string]any{
			"limiter":             limiter,
			"retry_after_seconds": retryAfterSeconds,
		},
	}
}

// AuthFailure builds the input for a missing or rejected credential.
func AuthFailure(
	ip string,
	userAgent string,
	path string,
	reason string,
	severity Severity,
) Input {
	return Input{
		EventType:    EventUnauthorizedAccess,
		Severity:     severity,
		IPAddress:    ip,
		UserAgent:    userAgent,
		ResourceType: "route",
		ResourceID:   path,
		ErrorMessage: reason,
	}
}

// SystemError builds the input for an unexpected pipeline fault.
func SystemError(
	ip string,
	path string,
	detail string,
) Input {
	return Input{
		EventType:    EventSystemError,
		Severity:     SeverityCritical,
		IPAddress:    ip,
		ResourceType: "route",
		ResourceID:   path,
		ErrorMessage: detail,
	}
}

// AdminAction builds the input for a successful administrative operation
// such as an audit export.
func AdminAction(
	ip string,
	userID string,
	action string,
	resourceType string,
	resourceID string,
) Input {
	return Input{
		EventType:    EventAdminAction,
		Severity:     SeverityMedium,
		UserID:       userID,
		IPAddress:    ip,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Success:      true,
		Metadata:     map[string]any{"action": action},
	}
}

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

// Package audit provides the bounded in-memory security event log.
package audit

import (
	"errors"
	"time"
)

// ErrInvalidFilter is returned when a Filter cannot be applied.
var ErrInvalidFilter = errors.New("invalid audit filter")

// EventType classifies an audit event.
type EventType string

// Known event types.
const (
	EventLoginSuccess       EventType = "login_success"
	EventLoginFailure       EventType = "login_failure"
	EventLogout             EventType = "logout"
	EventRegister           EventType = "register"
	EventPasswordReset      EventType = "password_reset"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventSecurityViolation  EventType = "security_violation"
	EventRateLimitExceeded  EventType = "rate_limit_exceeded"
	EventSuspiciousActivity EventType = "suspicious_activity"
	EventAdminAction        EventType = "admin_action"
	EventDataAccess         EventType = "data_access"
	EventDataModification   EventType = "data_modification"
	EventPurchase           EventType = "purchase"
	EventSystemError        EventType = "system_error"
)

// EventTypes lists every known event type.
var EventTypes = []EventType{
	EventLoginSuccess,
	EventLoginFailure,
	EventLogout,
	EventRegister,
	EventPasswordReset,
	EventUnauthorizedAccess,
	EventSecurityViolation,
	EventRateLimitExceeded,
	EventSuspiciousActivity,
	EventAdminAction,
	EventDataAccess,
	EventDataModification,
	EventPurchase,
	EventSystemError,
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}

	return false
}

// Severity ranks an audit event.
type Severity string

// Known severities, lowest first.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every known severity, lowest first.
var Severities = []Severity{
	SeverityLow,
	SeverityMedium,
	SeverityHigh,
	SeverityCritical,
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	for _, known := range Severities {
		if s == known {
			return true
		}
	}

	return false
}

// Input is what callers supply to Record. The store assigns ID and Timestamp.
type Input struct {
	EventType    EventType
	Severity     Severity
	UserID       string
	UserEmail    string
	IPAddress    string
	UserAgent    string
	ResourceType string
	ResourceID   string
	OldValues    map[string]any
	NewValues    map[string]any
	Metadata     map[string]any
	Success      bool
	ErrorMessage string
}

// Event is a recorded audit entry. Events are never modified after Record.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`
	// EventType classifies the event.
	EventType EventType `json:"event_type"`
	// Severity ranks the event.
	Severity Severity `json:"severity"`
	// UserID identifies the acting user, when known.
	UserID string `json:"user_id,omitempty"`
	// UserEmail is the acting user's email, when known.
	UserEmail string `json:"user_email,omitempty"`
	// IPAddress is the resolved client address.
	IPAddress string `json:"ip_address,omitempty"`
	// UserAgent is the raw User-Agent header.
	UserAgent string `json:"user_agent,omitempty"`
	// ResourceType names the affected resource kind (e.g. "route", "course").
	ResourceType string `json:"resource_type,omitempty"`
	// ResourceID identifies the affected resource.
	ResourceID string `json:"resource_id,omitempty"`
	// OldValues is the resource state before a modification.
	OldValues map[string]any `json:"old_values,omitempty"`
	// NewValues is the resource state after a modification.
	NewValues map[string]any `json:"new_values,omitempty"`
	// Metadata carries free-form context.
	Metadata map[string]any `json:"metadata,omitempty"`
	// Timestamp is when the store accepted the event.
	Timestamp time.Time `json:"timestamp"`
	// Success is false for denials and failures.
	Success bool `json:"success"`
	// ErrorMessage describes the failure, when Success is false.
	ErrorMessage string `json:"error_message,omitempty"`
}

// Filter selects events for Search. Zero-valued fields do not constrain.
type Filter struct {
	EventTypes   []EventType `validate:"dive,valid_event_type"`
	Severities   []Severity  `validate:"dive,valid_severity"`
	UserID       string
	ResourceType string
	ResourceID   string
	StartTime    *time.Time
	EndTime      *time.Time
	Success      *bool
	IPAddress    string
	// Page is 1-based. Zero means the first page.
	Page int `validate:"gte=0"`
	// Limit is the page size. Zero means DefaultPageSize.
	Limit int `validate:"gte=0,lte=1000"`
}

// Pagination defaults.
const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

// SearchResult is a page of matching events.
type SearchResult struct {
	Events []Event `json:"events"`
	// Total is the number of matches before pagination.
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Stats aggregates the retained log.
type Stats struct {
	Total          int               `json:"total"`
	ByType         map[EventType]int `json:"by_type"`
	BySeverity     map[Severity]int  `json:"by_severity"`
	RecentFailures int               `json:"recent_failures"`
}

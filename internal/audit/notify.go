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

//go:generate go tool mockgen -source=notify.go -destination=mocks/publisher.gen.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Notifier delivers critical events out of band.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes critical events to the logger at error level.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(
	logger *slog.Logger,
) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the event.
func (n *LogNotifier) Notify(
	ctx context.Context,
	event Event,
) error {
	n.logger.ErrorContext(
		ctx,
		"critical security event",
		slog.String("id", event.ID),
		slog.String("event_type", string(event.EventType)),
		slog.String("ip_address", event.IPAddress),
		slog.String("resource_type", event.ResourceType),
		slog.String("resource_id", event.ResourceID),
		slog.String("error_message", event.ErrorMessage),
		slog.Time("timestamp", event.Timestamp),
	)

	return nil
}

// Publisher is the subset of *nats.Conn used by NATSNotifier.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// flusher is implemented by *nats.Conn.
type flusher interface {
	FlushWithContext(ctx context.Context) error
}

// NATSNotifier publishes critical events as JSON to a NATS subject.
type NATSNotifier struct {
	publisher Publisher
	subject   string
}

// NewNATSNotifier creates a new NATSNotifier.
func NewNATSNotifier(
	publisher Publisher,
	subject string,
) *NATSNotifier {
	return &NATSNotifier{
		publisher: publisher,
		subject:   subject,
	}
}

// Notify publishes the event and, when the publisher supports it, flushes
// within ctx so delivery failures surface.
func (n *NATSNotifier) Notify(
	ctx context.Context,
	event Event,
) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	if err := n.publisher.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}

	if f, ok := n.publisher.(flusher); ok {
		if err := f.FlushWithContext(ctx); err != nil {
			return fmt.Errorf("flush audit event: %w", err)
		}
	}

	return nil
}

// DialNATS connects to the NATS server used for critical notifications.
func DialNATS(
	url string,
	name string,
	timeout time.Duration,
) (*nats.Conn, error) {
	nc, err := nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return nc, nil
}

// Package notify tells downstream consumers (flashers, deploy jobs) that a new
// firmware image landed in the latest slot.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/fwpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/fwpublish/internal/logfields"
)

// Event is the payload published after a successful copy.
type Event struct {
	ID          string    `json:"id"`
	Project     string    `json:"project"`
	Destination string    `json:"destination"`
	Size        int64     `json:"size"`
	BLAKE3      string    `json:"blake3,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Notifier delivers publish events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Close() error
}

// NoopNotifier drops every event (default when notify.nats_url is unset).
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, Event) error { return nil }
func (NoopNotifier) Close() error                        { return nil }

// NATSNotifier publishes events as JSON on a core NATS subject.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier connects to url. Extra options are passed to nats.Connect.
func NewNATSNotifier(url, subject string, opts ...nats.Option) (*NATSNotifier, error) {
	if subject == "" {
		return nil, ferrors.ValidationError("notify subject is required").Build()
	}
	opts = append([]nats.Option{nats.Name("fwpublish"), nats.Timeout(5 * time.Second)}, opts...)
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, ferrors.NotifyError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	slog.Debug("NATS notifier connected", "url", conn.ConnectedUrl(), logfields.Subject(subject))
	return &NATSNotifier{conn: conn, subject: subject}, nil
}

// Notify publishes ev and waits for the server to acknowledge the flush.
func (n *NATSNotifier) Notify(ctx context.Context, ev Event) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return ferrors.NotifyError("failed to publish event").
			WithCause(err).
			WithContext("subject", n.subject).
			Build()
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return ferrors.NotifyError("failed to flush event").
			WithCause(err).
			WithContext("subject", n.subject).
			Build()
	}
	return nil
}

// Close drains the connection.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}

// Encode renders the wire form of ev.
func Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal notify event: %w", err)
	}
	return data, nil
}

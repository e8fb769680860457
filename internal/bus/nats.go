package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/groblegark/relay/internal/model"
)

// NATSPublisher publishes event copies onto the JetStream stream.
type NATSPublisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewNATSPublisher connects to NATS and ensures the stream exists.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}
	if err := ensureStream(js); err != nil {
		nc.Close()
		return nil, err
	}
	return &NATSPublisher{conn: nc, js: js}, nil
}

// PublishEvent publishes one JSON-encoded copy of the event per entry in
// Targets, routed by "{event_type}.{target_system}". An event with no
// targets produces no bus traffic. The stream's file storage is what makes
// the hop durable; the broker's own in-process log is a separate,
// volatile, durability domain.
func (p *NATSPublisher) PublishEvent(ctx context.Context, event *model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event %s: %w", event.ID, err)
	}
	for _, target := range event.Targets {
		subject := Subject(event.Type, target)
		if _, err := p.js.Publish(subject, data, nats.Context(ctx)); err != nil {
			return fmt.Errorf("publishing %s to %s: %w", event.ID, subject, err)
		}
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// ensureStream creates the EVENTS stream if it does not already exist.
func ensureStream(js nats.JetStreamContext) error {
	_, err := js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("looking up stream %s: %w", StreamName, err)
	}
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"*.*"},
		Storage:  nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("creating stream %s: %w", StreamName, err)
	}
	return nil
}

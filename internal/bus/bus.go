// Package bus is the durable transport hop between subsystems.
//
// Events ride a single JetStream stream with file storage, one copy per
// target system, routed by subject "{event_type}.{target_system}". Each
// subscribed system drains its own durable consumer bound to the wildcard
// "*.{system_name}", acknowledging only after processing (at-least-once).
//
// The bus is an optional hop: when no NATS server is configured or
// reachable, publishing and consuming are skipped and logged, and the rest
// of the publish pipeline still runs.
package bus

import (
	"context"
	"strings"

	"github.com/groblegark/relay/internal/model"
)

// StreamName is the JetStream stream holding all routed event copies.
const StreamName = "EVENTS"

// Publisher is the interface for handing events to the bus.
type Publisher interface {
	// PublishEvent publishes one copy of the event per target system.
	PublishEvent(ctx context.Context, event *model.Event) error
	Close() error
}

// Subject returns the routing subject for one event copy.
func Subject(eventType, targetSystem string) string {
	return token(eventType) + "." + token(targetSystem)
}

// FilterSubject returns the wildcard subject a system's consumer binds to,
// matching any event type addressed to that system.
func FilterSubject(system string) string {
	return "*." + token(system)
}

// token makes a string safe for use as a single subject token.
func token(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, s)
}

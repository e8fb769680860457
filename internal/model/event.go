package model

import (
	"time"
)

// Priority is a free-form event priority tag. Only "high" and "low" are
// special-cased (by the audit annotator); any other value is treated the
// same as "normal" rather than rejected.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// Event is a broker envelope. Once recorded, an event's fields never
// mutate; a cascade creates a new Event that copies the triggering
// event's CorrelationID unchanged so that related events can be grouped.
type Event struct {
	ID            string         `json:"event_id"`
	Type          string         `json:"event_type"`
	Source        string         `json:"source_system"`
	Targets       []string       `json:"target_systems"`
	Payload       map[string]any `json:"payload"`
	Timestamp     time.Time      `json:"timestamp"`
	Priority      Priority       `json:"priority"`
	CorrelationID string         `json:"correlation_id"`
}

// Clone returns a deep copy of the event. The payload map is copied one
// level deep; nested values are shared.
func (e *Event) Clone() *Event {
	clone := *e
	clone.Targets = append([]string(nil), e.Targets...)
	if e.Payload != nil {
		clone.Payload = make(map[string]any, len(e.Payload))
		for k, v := range e.Payload {
			clone.Payload[k] = v
		}
	}
	return &clone
}

// PublishResult is returned to the caller of every publish, describing
// best-effort outcomes. SubscribersNotified counts webhook deliveries that
// returned 2xx; it says nothing about bus delivery.
type PublishResult struct {
	EventID             string `json:"event_id"`
	Status              string `json:"status"`
	SubscribersNotified int    `json:"subscribers_notified"`
}

// Publish result status values.
const (
	StatusPublished = "published"
)

// Package broker runs the publish pipeline: validate, annotate, record,
// trigger, bus-publish, webhook fan-out. The pipeline is deliberately not
// transactional — each step after validation is best-effort and a failure
// in a later step never unwinds earlier ones.
package broker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/groblegark/relay/internal/audit"
	"github.com/groblegark/relay/internal/bus"
	"github.com/groblegark/relay/internal/eventlog"
	"github.com/groblegark/relay/internal/idgen"
	"github.com/groblegark/relay/internal/model"
	"github.com/groblegark/relay/internal/registry"
	"github.com/groblegark/relay/internal/trigger"
	"github.com/groblegark/relay/internal/webhook"
)

// DefaultMaxCascadeDepth bounds how many times trigger actions may re-enter
// publish for one correlation chain.
const DefaultMaxCascadeDepth = 5

// Broker owns the event log and the subscription registry; everything else
// reaches them through it.
type Broker struct {
	registry  *registry.Registry
	log       *eventlog.Log
	annotator *audit.Annotator
	triggers  *trigger.Engine
	bus       bus.Publisher
	notifier  *webhook.Notifier
	logger    *slog.Logger

	maxCascadeDepth int
}

// Config collects the broker's collaborators.
type Config struct {
	Registry  *registry.Registry
	Log       *eventlog.Log
	Annotator *audit.Annotator
	Triggers  *trigger.Engine
	Bus       bus.Publisher
	Notifier  *webhook.Notifier
	Logger    *slog.Logger

	// MaxCascadeDepth <= 0 selects DefaultMaxCascadeDepth.
	MaxCascadeDepth int
}

// New creates a Broker from its collaborators.
func New(cfg Config) *Broker {
	depth := cfg.MaxCascadeDepth
	if depth <= 0 {
		depth = DefaultMaxCascadeDepth
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		registry:        cfg.Registry,
		log:             cfg.Log,
		annotator:       cfg.Annotator,
		triggers:        cfg.Triggers,
		bus:             cfg.Bus,
		notifier:        cfg.Notifier,
		logger:          logger,
		maxCascadeDepth: depth,
	}
}

// Publish validates and normalizes the event, then runs the pipeline:
// annotate, append to the log, run trigger actions, publish to the bus,
// fan out to webhooks — strictly in that order. Only validation can fail;
// every later step degrades to logged-and-skipped.
//
// The returned SubscribersNotified counts webhook 2xx responses only.
func (b *Broker) Publish(ctx context.Context, event *model.Event) (*model.PublishResult, error) {
	if err := model.ValidateEvent(event); err != nil {
		return nil, err
	}

	ev, err := b.normalize(event)
	if err != nil {
		return nil, err
	}

	ann := b.annotator.Annotate(ev)
	b.log.Append(&model.Record{
		Event:      ev,
		TrustScore: ann.TrustScore,
		Compliant:  ann.Compliant,
		RecordedAt: time.Now().UTC(),
	})

	b.triggers.Run(ctx, ev, "")

	if err := b.bus.PublishEvent(ctx, ev); err != nil {
		b.logger.Warn("bus publish failed, event not routed",
			"event_id", ev.ID, "event_type", ev.Type, "error", err)
	}

	notified := b.notifier.Notify(ctx, ev)

	b.logger.Info("event published",
		"event_id", ev.ID, "event_type", ev.Type, "source", ev.Source,
		"targets", len(ev.Targets), "notified", notified)

	return &model.PublishResult{
		EventID:             ev.ID,
		Status:              model.StatusPublished,
		SubscribersNotified: notified,
	}, nil
}

// Cascade re-enters Publish for an event synthesized by a trigger action,
// incrementing the cascade depth carried on the context. When the depth
// limit is reached the event is dropped with a warning instead of
// recursing further.
func (b *Broker) Cascade(ctx context.Context, event *model.Event) error {
	depth := trigger.Depth(ctx)
	if depth >= b.maxCascadeDepth {
		b.logger.Warn("cascade depth limit reached, dropping synthesized event",
			"event_type", event.Type, "correlation_id", event.CorrelationID, "depth", depth)
		return nil
	}
	_, err := b.Publish(trigger.WithDepth(ctx, depth+1), event)
	return err
}

// HandleDelivery processes one event pulled from the bus for the named
// consuming system: re-run the trigger actions tagged with that system,
// then append a consumption record. The bus acknowledges only after this
// returns, so everything here must tolerate re-runs.
func (b *Broker) HandleDelivery(ctx context.Context, event *model.Event, system string) {
	b.triggers.Run(ctx, event, system)

	ann := b.annotator.Annotate(event)
	b.log.Append(&model.Record{
		Event:      event,
		TrustScore: ann.TrustScore,
		Compliant:  ann.Compliant,
		ConsumedBy: system,
		RecordedAt: time.Now().UTC(),
	})
}

// Subscribe validates and stores a subscription, fully replacing any prior
// record for the same system name.
func (b *Broker) Subscribe(sub *model.Subscription) error {
	if err := model.ValidateSubscription(sub); err != nil {
		return err
	}
	b.registry.Upsert(sub)
	b.logger.Info("subscription stored",
		"system", sub.SystemName, "event_types", len(sub.EventTypes), "active", sub.Active)
	return nil
}

// Subscriptions returns a snapshot of all subscriptions keyed by system.
func (b *Broker) Subscriptions() map[string]*model.Subscription {
	return b.registry.List()
}

// Events queries the event log. See eventlog.Query for the filter/limit
// ordering semantics.
func (b *Broker) Events(q eventlog.Query) []*model.Record {
	return b.log.Query(q)
}

// Health describes the broker's current state.
type Health struct {
	Status       string    `json:"status"`
	Subscribers  int       `json:"subscribers"`
	EventsStored int       `json:"events_stored"`
	Timestamp    time.Time `json:"timestamp"`
}

// Health returns the current subscriber and event counts.
func (b *Broker) Health() Health {
	return Health{
		Status:       "ok",
		Subscribers:  b.registry.Len(),
		EventsStored: b.log.Len(),
		Timestamp:    time.Now().UTC(),
	}
}

// normalize fills in generated and defaulted fields on a copy of the
// inbound event. The copy is what gets recorded; stored events never
// mutate afterward.
func (b *Broker) normalize(event *model.Event) (*model.Event, error) {
	ev := event.Clone()
	if ev.ID == "" {
		id, err := idgen.Generate()
		if err != nil {
			return nil, fmt.Errorf("generating event id: %w", err)
		}
		ev.ID = id
	}
	if ev.CorrelationID == "" {
		ev.CorrelationID = ev.ID
	}
	if ev.Targets == nil {
		ev.Targets = []string{}
	}
	if ev.Payload == nil {
		ev.Payload = map[string]any{}
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.Priority == "" {
		ev.Priority = model.PriorityNormal
	}
	return ev, nil
}

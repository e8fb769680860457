// Package trigger maps event types to ordered lists of named actions and
// runs them with per-action failure isolation. An action may synthesize a
// new event and re-enter publish through a Cascader; the cascade depth
// carried on the context bounds that recursion.
package trigger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/groblegark/relay/internal/model"
)

// Handler performs one named side-effecting action for an event. Handlers
// run at-least-once per event (bus redelivery re-runs them), so they must
// tolerate repeats.
type Handler interface {
	Name() string
	Handle(ctx context.Context, event *model.Event) error
}

// Cascader re-enters publish for events synthesized during trigger
// processing. The synthesized event must carry the triggering event's
// correlation id unchanged.
type Cascader interface {
	Cascade(ctx context.Context, event *model.Event) error
}

// Engine dispatches events to registered action handlers by name. The rule
// table is read-only at runtime; adding an action is a table change, not a
// new branch.
type Engine struct {
	rules    map[string][]string
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewEngine creates an engine with the given event-type-to-actions table.
func NewEngine(rules map[string][]string, logger *slog.Logger) *Engine {
	return &Engine{
		rules:    rules,
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register adds a handler to the dispatch table, keyed by its name.
func (e *Engine) Register(h Handler) {
	e.handlers[h.Name()] = h
}

// Run invokes the ordered action list bound to the event's type. One
// action failing (error or panic) is logged and never aborts the remaining
// actions or the enclosing publish/consume call. consumer tags the log
// lines with the consuming system name; it is empty on the publish side.
func (e *Engine) Run(ctx context.Context, event *model.Event, consumer string) {
	actions := e.rules[event.Type]
	for _, name := range actions {
		h, ok := e.handlers[name]
		if !ok {
			e.logger.Warn("no handler registered for action",
				"action", name, "event_type", event.Type, "event_id", event.ID)
			continue
		}

		if err := e.runOne(ctx, h, event); err != nil {
			e.logger.Warn("trigger action failed",
				"action", name, "event_id", event.ID, "consumer", consumer, "error", err)
			continue
		}
		e.logger.Info("trigger action completed",
			"action", name, "event_id", event.ID, "consumer", consumer)
	}
}

// runOne executes a single handler, converting panics into errors.
func (e *Engine) runOne(ctx context.Context, h Handler, event *model.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()
	return h.Handle(ctx, event)
}

// depthKey carries the cascade depth across publish re-entry.
type depthKey struct{}

// Depth returns the cascade depth recorded on the context; zero for an
// externally published event.
func Depth(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

// WithDepth returns a context recording the given cascade depth.
func WithDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, depthKey{}, depth)
}

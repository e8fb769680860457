// Package registry holds per-system event subscriptions.
//
// The registry is the single owner of subscription state; all access goes
// through its mutex. Records live for the process lifetime — there is no
// delete operation.
package registry

import (
	"sort"
	"sync"

	"github.com/groblegark/relay/internal/model"
)

// Registry is a mutex-guarded map of system name to subscription.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]*model.Subscription
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{subs: make(map[string]*model.Subscription)}
}

// Upsert stores a subscription, fully replacing any prior record for the
// same system name. There is no incremental merge: last write wins.
func (r *Registry) Upsert(sub *model.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *sub
	clone.EventTypes = append([]string(nil), sub.EventTypes...)
	r.subs[sub.SystemName] = &clone
}

// Get returns the subscription for a system, or nil if none exists.
func (r *Registry) Get(system string) *model.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subs[system]
	if !ok {
		return nil
	}
	clone := *sub
	clone.EventTypes = append([]string(nil), sub.EventTypes...)
	return &clone
}

// List returns a snapshot of all subscriptions keyed by system name.
func (r *Registry) List() map[string]*model.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*model.Subscription, len(r.subs))
	for name, sub := range r.subs {
		clone := *sub
		clone.EventTypes = append([]string(nil), sub.EventTypes...)
		out[name] = &clone
	}
	return out
}

// Matching returns the active subscriptions whose event type set contains
// eventType, sorted by system name for deterministic delivery order.
func (r *Registry) Matching(eventType string) []*model.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Subscription
	for _, sub := range r.subs {
		if sub.Active && sub.WantsType(eventType) {
			clone := *sub
			clone.EventTypes = append([]string(nil), sub.EventTypes...)
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SystemName < out[j].SystemName })
	return out
}

// Systems returns the sorted names of all subscribed systems, active or not.
// Consumer loops are started once per system at broker startup.
func (r *Registry) Systems() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.subs))
	for name := range r.subs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

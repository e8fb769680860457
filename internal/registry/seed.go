package registry

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/groblegark/relay/internal/model"
)

// seedFile is the on-disk TOML layout:
//
//	[subscriptions.crm]
//	event_types = ["order_created", "customer_created"]
//	webhook_url = "http://crm:8080/webhooks/relay"
//	active = true
type seedFile struct {
	Subscriptions map[string]seedEntry `toml:"subscriptions"`
}

type seedEntry struct {
	EventTypes []string `toml:"event_types"`
	WebhookURL string   `toml:"webhook_url"`
	Active     *bool    `toml:"active"` // nil defaults to true
}

// Defaults returns the static subscriptions used when no seed file is
// configured, covering the standard subsystem deployment.
func Defaults() []*model.Subscription {
	return []*model.Subscription{
		{
			SystemName: "crm",
			EventTypes: []string{"order_created", "order_shipped", "customer_created", "payment_received"},
			WebhookURL: "http://crm:8080/webhooks/relay",
			Active:     true,
		},
		{
			SystemName: "task_manager",
			EventTypes: []string{"order_created", "task_overdue", "compliance_violation"},
			WebhookURL: "http://task-manager:8080/webhooks/relay",
			Active:     true,
		},
		{
			SystemName: "logistics",
			EventTypes: []string{"order_created", "order_shipped", "order_delivered"},
			WebhookURL: "http://logistics:8080/webhooks/relay",
			Active:     true,
		},
	}
}

// SeedDefaults loads the static default subscriptions into the registry.
func (r *Registry) SeedDefaults() {
	for _, sub := range Defaults() {
		r.Upsert(sub)
	}
}

// SeedFile loads subscriptions from a TOML file into the registry,
// overwriting any existing record for the same system name.
func (r *Registry) SeedFile(path string) error {
	var sf seedFile
	if _, err := toml.DecodeFile(path, &sf); err != nil {
		return fmt.Errorf("loading subscriptions from %s: %w", path, err)
	}

	for name, entry := range sf.Subscriptions {
		active := true
		if entry.Active != nil {
			active = *entry.Active
		}
		sub := &model.Subscription{
			SystemName: name,
			EventTypes: entry.EventTypes,
			WebhookURL: entry.WebhookURL,
			Active:     active,
		}
		if err := model.ValidateSubscription(sub); err != nil {
			return fmt.Errorf("subscription %q: %w", name, err)
		}
		r.Upsert(sub)
	}
	return nil
}

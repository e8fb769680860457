package model

// Subscription records a subsystem's interest in event types and where its
// webhook lives. SystemName is the registry key: subscribing again for the
// same system fully replaces the prior record (last write wins).
type Subscription struct {
	SystemName string   `json:"system_name"`
	EventTypes []string `json:"event_types"`
	WebhookURL string   `json:"webhook_url"`
	Active     bool     `json:"active"`
}

// WantsType reports whether the subscription's event type set contains typ.
func (s *Subscription) WantsType(typ string) bool {
	for _, t := range s.EventTypes {
		if t == typ {
			return true
		}
	}
	return false
}

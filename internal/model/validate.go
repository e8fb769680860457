package model

import (
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateEvent checks an inbound event for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the event is
// valid. Validation runs before any side effect; a rejected event is never
// annotated, recorded, or delivered.
func ValidateEvent(e *Event) error {
	var ve ValidationError

	if strings.TrimSpace(e.Type) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "event_type", Message: "is required"})
	}
	if strings.TrimSpace(e.Source) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "source_system", Message: "is required"})
	}

	// Priority is deliberately not validated: unrecognized values pass
	// through and downstream consumers treat them as "normal".

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateSubscription checks a subscribe request. Webhook URLs are not
// validated beyond being non-empty; the network is assumed trusted.
func ValidateSubscription(s *Subscription) error {
	var ve ValidationError

	if strings.TrimSpace(s.SystemName) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "system_name", Message: "is required"})
	}
	if len(s.EventTypes) == 0 {
		ve.Errors = append(ve.Errors, FieldError{Field: "event_types", Message: "must contain at least one event type"})
	}
	if strings.TrimSpace(s.WebhookURL) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "webhook_url", Message: "is required"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

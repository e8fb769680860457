package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/groblegark/relay/internal/collab"
	"github.com/groblegark/relay/internal/model"
)

// EventTypeComplianceViolation is the type of events synthesized by a
// failed compliance check.
const EventTypeComplianceViolation = "compliance_violation"

// BrokerSystem is the source_system stamped on events the broker itself
// synthesizes.
const BrokerSystem = "relay"

// payloadString reads a string payload field, returning "" when absent or
// not a string.
func payloadString(event *model.Event, key string) string {
	v, _ := event.Payload[key].(string)
	return v
}

// payloadFloat reads a numeric payload field. JSON numbers decode as
// float64; integer values placed directly in the map are handled too.
func payloadFloat(event *model.Event, key string) float64 {
	switch v := event.Payload[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// CreateCRMLead creates a lead in the CRM from the event payload.
type CreateCRMLead struct {
	CRM *collab.CRMClient
}

func (a *CreateCRMLead) Name() string { return ActionCreateCRMLead }

func (a *CreateCRMLead) Handle(ctx context.Context, event *model.Event) error {
	company := payloadString(event, "company")
	if company == "" {
		company = payloadString(event, "customer_name")
	}
	return a.CRM.CreateLead(ctx, &collab.Lead{
		Company: company,
		Budget:  payloadFloat(event, "total_amount"),
		Notes:   fmt.Sprintf("created from %s event %s", event.Type, event.ID),
		Source:  event.Source,
	})
}

// CreateTask opens a follow-up task in the task manager.
type CreateTask struct {
	Tasks *collab.TaskClient
}

func (a *CreateTask) Name() string { return ActionCreateTask }

func (a *CreateTask) Handle(ctx context.Context, event *model.Event) error {
	title := payloadString(event, "title")
	if title == "" {
		title = fmt.Sprintf("Follow up on %s", event.Type)
	}
	return a.Tasks.CreateTask(ctx, &collab.Task{
		Title:       title,
		Description: payloadString(event, "description"),
		Priority:    event.Priority.String(),
		Assignee:    payloadString(event, "assignee"),
		ReferenceID: event.ID,
	})
}

// EscalateTask escalates the task named by the payload's task_id. A
// missing task_id is a no-op with a logged warning, not an error.
type EscalateTask struct {
	Tasks  *collab.TaskClient
	Logger *slog.Logger
}

func (a *EscalateTask) Name() string { return ActionEscalateTask }

func (a *EscalateTask) Handle(ctx context.Context, event *model.Event) error {
	taskID := payloadString(event, "task_id")
	if taskID == "" {
		a.Logger.Warn("escalate_task: no task_id in payload, skipping", "event_id", event.ID)
		return nil
	}
	return a.Tasks.EscalateTask(ctx, taskID, &collab.Escalation{
		Status:    "escalated",
		Priority:  "high",
		Reason:    fmt.Sprintf("escalated by %s event %s", event.Type, event.ID),
		Timestamp: time.Now().UTC(),
	})
}

// UpdateCRMOpportunity records last activity on the opportunity referenced
// by the payload (falling back to the correlation id), with stage and
// probability overrides for fulfillment events.
type UpdateCRMOpportunity struct {
	CRM *collab.CRMClient
}

func (a *UpdateCRMOpportunity) Name() string { return ActionUpdateCRMOpportunity }

func (a *UpdateCRMOpportunity) Handle(ctx context.Context, event *model.Event) error {
	ref := payloadString(event, "opportunity_id")
	if ref == "" {
		ref = event.CorrelationID
	}

	update := &collab.OpportunityUpdate{
		LastActivity:     event.Type,
		LastActivityTime: event.Timestamp,
	}
	switch event.Type {
	case "order_shipped":
		update.Stage = "fulfillment"
		p := 0.9
		update.Probability = &p
	case "order_delivered":
		update.Stage = "closed_won"
		p := 1.0
		update.Probability = &p
	}

	return a.CRM.UpdateOpportunity(ctx, ref, update)
}

// ComplianceCheck forwards a transaction-shaped record to the compliance
// service. A non-compliant verdict — including an unreachable service —
// synthesizes a compliance_violation event carrying the original event and
// the violation details, published with the same correlation id.
type ComplianceCheck struct {
	Compliance *collab.ComplianceClient
	Cascader   Cascader
	Logger     *slog.Logger
}

func (a *ComplianceCheck) Name() string { return ActionComplianceCheck }

func (a *ComplianceCheck) Handle(ctx context.Context, event *model.Event) error {
	result, err := a.Compliance.Check(ctx, &collab.Transaction{
		EventID:   event.ID,
		EventType: event.Type,
		Source:    event.Source,
		Amount:    payloadFloat(event, "amount"),
		Timestamp: event.Timestamp,
	})
	if err != nil {
		// Service unavailability is itself a non-compliant result, not an error.
		a.Logger.Warn("compliance_check: service unavailable, treating as non-compliant",
			"event_id", event.ID, "error", err)
		result = &CheckResultUnavailable
	}
	if result.Compliant {
		return nil
	}

	violation := &model.Event{
		Type:    EventTypeComplianceViolation,
		Source:  BrokerSystem,
		Targets: []string{"compliance", "task_manager"},
		Payload: map[string]any{
			"original_event": event,
			"violations":     result.Violations,
		},
		Priority:      model.PriorityHigh,
		CorrelationID: event.CorrelationID,
	}
	return a.Cascader.Cascade(ctx, violation)
}

// CheckResultUnavailable is the verdict substituted when the compliance
// service cannot be reached.
var CheckResultUnavailable = collab.CheckResult{
	Compliant:  false,
	Violations: []string{"compliance service unavailable"},
}

// SendChatAlert posts a short structured alert to a chat webhook. The same
// handler serves Slack and Teams with different names and clients.
type SendChatAlert struct {
	ActionName string
	Chat       *collab.ChatClient
}

func (a *SendChatAlert) Name() string { return a.ActionName }

func (a *SendChatAlert) Handle(ctx context.Context, event *model.Event) error {
	return a.Chat.PostAlert(ctx, &collab.Alert{
		Text:     fmt.Sprintf("[%s] %s from %s", event.Priority, event.Type, event.Source),
		Source:   event.Source,
		Priority: event.Priority.String(),
		EventID:  event.ID,
		Time:     event.Timestamp,
		Summary:  fmt.Sprintf("%d payload fields", len(event.Payload)),
	})
}

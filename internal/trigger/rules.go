package trigger

// Action names. Dispatch is by name through the engine's handler table.
const (
	ActionCreateCRMLead        = "create_crm_lead"
	ActionCreateTask           = "create_task"
	ActionEscalateTask         = "escalate_task"
	ActionUpdateCRMOpportunity = "update_crm_opportunity"
	ActionComplianceCheck      = "compliance_check"
	ActionSendSlackAlert       = "send_slack_alert"
	ActionSendTeamsAlert       = "send_teams_alert"
)

// DefaultRules is the static event-type-to-actions table. Order within a
// list is execution order.
func DefaultRules() map[string][]string {
	return map[string][]string{
		"order_created":        {ActionCreateCRMLead, ActionCreateTask},
		"order_shipped":        {ActionUpdateCRMOpportunity},
		"order_delivered":      {ActionUpdateCRMOpportunity},
		"payment_received":     {ActionComplianceCheck, ActionUpdateCRMOpportunity},
		"customer_created":     {ActionCreateCRMLead},
		"task_overdue":         {ActionEscalateTask, ActionSendSlackAlert},
		"compliance_violation": {ActionCreateTask, ActionSendTeamsAlert},
	}
}

package collab

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Task is the minimal payload for task creation.
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	ReferenceID string `json:"reference_id,omitempty"`
}

// Escalation marks an existing task as escalated.
type Escalation struct {
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskClient talks to the task-management system.
type TaskClient struct {
	baseURL    string
	httpClient httpDoer
}

// NewTaskClient creates a task manager client. An empty baseURL yields a
// client whose calls fail with ErrNotConfigured.
func NewTaskClient(baseURL string, timeout time.Duration) *TaskClient {
	return &TaskClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
	}
}

// CreateTask creates a new task.
func (c *TaskClient) CreateTask(ctx context.Context, task *Task) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	return doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/api/tasks", task, nil)
}

// EscalateTask escalates the task identified by taskID.
func (c *TaskClient) EscalateTask(ctx context.Context, taskID string, esc *Escalation) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	return doJSON(ctx, c.httpClient, http.MethodPatch, c.baseURL+"/api/tasks/"+url.PathEscape(taskID), esc, nil)
}

package collab

import (
	"context"
	"net/http"
	"time"
)

// Alert is a short structured chat message describing an event.
type Alert struct {
	Text     string    `json:"text"`
	Source   string    `json:"source_system"`
	Priority string    `json:"priority"`
	EventID  string    `json:"event_id"`
	Time     time.Time `json:"time"`
	Summary  string    `json:"summary,omitempty"`
}

// ChatClient posts alerts to a single incoming-webhook URL (Slack, Teams).
type ChatClient struct {
	webhookURL string
	httpClient httpDoer
}

// NewChatClient creates a chat alert client. An empty webhookURL yields a
// client whose calls fail with ErrNotConfigured.
func NewChatClient(webhookURL string, timeout time.Duration) *ChatClient {
	return &ChatClient{
		webhookURL: webhookURL,
		httpClient: newHTTPClient(timeout),
	}
}

// PostAlert delivers one alert to the webhook.
func (c *ChatClient) PostAlert(ctx context.Context, alert *Alert) error {
	if c.webhookURL == "" {
		return ErrNotConfigured
	}
	return doJSON(ctx, c.httpClient, http.MethodPost, c.webhookURL, alert, nil)
}

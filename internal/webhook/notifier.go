// Package webhook delivers events directly to subscriber endpoints,
// alongside (not instead of) the bus hop.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/groblegark/relay/internal/model"
	"github.com/groblegark/relay/internal/registry"
)

// DefaultTimeout bounds each individual webhook POST.
const DefaultTimeout = 5 * time.Second

// Notifier fans an event out to every active subscriber interested in its
// type. Delivery is best-effort: each subscriber's failure is counted
// individually and never blocks the remaining subscribers.
type Notifier struct {
	registry   *registry.Registry
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Notifier. timeout <= 0 falls back to DefaultTimeout.
func New(reg *registry.Registry, timeout time.Duration, logger *slog.Logger) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Notifier{
		registry:   reg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Notify POSTs the full envelope to each matching subscriber's webhook and
// returns how many responded 2xx.
func (n *Notifier) Notify(ctx context.Context, event *model.Event) int {
	subs := n.registry.Matching(event.Type)
	if len(subs) == 0 {
		return 0
	}

	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("failed to marshal event for webhook delivery", "event_id", event.ID, "error", err)
		return 0
	}

	notified := 0
	for _, sub := range subs {
		if err := n.deliver(ctx, sub.WebhookURL, data); err != nil {
			n.logger.Warn("webhook delivery failed",
				"system", sub.SystemName, "url", sub.WebhookURL, "event_id", event.ID, "error", err)
			continue
		}
		notified++
	}
	return notified
}

func (n *Notifier) deliver(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode}
	}
	return nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("webhook returned %d", e.code)
}

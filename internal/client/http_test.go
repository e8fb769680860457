package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/groblegark/relay/internal/audit"
	"github.com/groblegark/relay/internal/broker"
	"github.com/groblegark/relay/internal/bus"
	"github.com/groblegark/relay/internal/eventlog"
	"github.com/groblegark/relay/internal/model"
	"github.com/groblegark/relay/internal/registry"
	"github.com/groblegark/relay/internal/server"
	"github.com/groblegark/relay/internal/trigger"
	"github.com/groblegark/relay/internal/webhook"
)

func startTestServer(t *testing.T, authToken string) *httptest.Server {
	t.Helper()
	reg := registry.New()
	b := broker.New(broker.Config{
		Registry:  reg,
		Log:       eventlog.New(0),
		Annotator: audit.New(true),
		Triggers:  trigger.NewEngine(nil, slog.Default()),
		Bus:       &bus.NoopPublisher{},
		Notifier:  webhook.New(reg, time.Second, slog.Default()),
		Logger:    slog.Default(),
	})
	ts := httptest.NewServer(server.NewRelayServer(b).NewHTTPHandler(authToken))
	t.Cleanup(ts.Close)
	return ts
}

func TestPublishAndList(t *testing.T) {
	ts := startTestServer(t, "")
	c := NewHTTPClient(ts.URL, "")
	ctx := context.Background()

	result, err := c.PublishEvent(ctx, &model.Event{
		Type:    "order_created",
		Source:  "orders",
		Payload: map[string]any{"order_id": "ord-7"},
	})
	if err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}
	if result.EventID == "" || result.Status != model.StatusPublished {
		t.Errorf("result = %+v", result)
	}

	resp, err := c.ListEvents(ctx, &ListEventsRequest{EventType: "order_created"})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if resp.Count != 1 || len(resp.Events) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Events[0].Event.ID != result.EventID {
		t.Errorf("listed id = %q, want %q", resp.Events[0].Event.ID, result.EventID)
	}
}

func TestPublishValidationError(t *testing.T) {
	ts := startTestServer(t, "")
	c := NewHTTPClient(ts.URL, "")

	_, err := c.PublishEvent(context.Background(), &model.Event{Source: "orders"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 400 {
		t.Errorf("status = %d, want 400", apiErr.StatusCode)
	}
}

func TestSubscribeAndList(t *testing.T) {
	ts := startTestServer(t, "")
	c := NewHTTPClient(ts.URL, "")
	ctx := context.Background()

	err := c.Subscribe(ctx, &model.Subscription{
		SystemName: "logistics",
		EventTypes: []string{"order_shipped"},
		WebhookURL: "http://logistics/hooks",
		Active:     true,
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	subs, err := c.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	if len(subs) != 1 || subs["logistics"] == nil {
		t.Fatalf("subs = %+v", subs)
	}
}

func TestHealth(t *testing.T) {
	ts := startTestServer(t, "")
	c := NewHTTPClient(ts.URL, "")

	health, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
}

func TestAuthToken(t *testing.T) {
	ts := startTestServer(t, "sekret")

	if _, err := NewHTTPClient(ts.URL, "").ListEvents(context.Background(), &ListEventsRequest{}); err == nil {
		t.Fatal("expected error without token")
	}

	if _, err := NewHTTPClient(ts.URL, "sekret").ListEvents(context.Background(), &ListEventsRequest{}); err != nil {
		t.Fatalf("ListEvents with token: %v", err)
	}
}

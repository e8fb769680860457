package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/groblegark/relay/internal/audit"
	"github.com/groblegark/relay/internal/broker"
	"github.com/groblegark/relay/internal/bus"
	"github.com/groblegark/relay/internal/eventlog"
	"github.com/groblegark/relay/internal/model"
	"github.com/groblegark/relay/internal/registry"
	"github.com/groblegark/relay/internal/trigger"
	"github.com/groblegark/relay/internal/webhook"
)

func newTestHandler(t *testing.T, authToken string) http.Handler {
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
	return NewRelayServer(b).NewHTTPHandler(authToken)
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPublishEvent(t *testing.T) {
	h := newTestHandler(t, "")

	rec := doRequest(t, h, http.MethodPost, "/v1/events", map[string]any{
		"event_type":    "order_created",
		"source_system": "orders",
		"payload":       map[string]any{"order_id": "ord-1"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	var result model.PublishResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.EventID == "" || result.Status != model.StatusPublished {
		t.Errorf("result = %+v", result)
	}

	// The stored record defaults correlation_id to the generated id.
	rec = doRequest(t, h, http.MethodGet, "/v1/events?limit=1", nil)
	var list struct {
		Events []*model.Record `json:"events"`
		Count  int             `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if list.Count != 1 {
		t.Fatalf("count = %d, want 1", list.Count)
	}
	if got := list.Events[0].Event; got.CorrelationID != result.EventID {
		t.Errorf("correlation_id = %q, want %q", got.CorrelationID, result.EventID)
	}
}

func TestPublishEvent_Invalid(t *testing.T) {
	h := newTestHandler(t, "")

	rec := doRequest(t, h, http.MethodPost, "/v1/events", map[string]any{
		"source_system": "orders",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d for malformed JSON, want 400", w.Code)
	}
}

func TestSubscribe_OverwriteSemantics(t *testing.T) {
	h := newTestHandler(t, "")

	rec := doRequest(t, h, http.MethodPost, "/v1/subscriptions", map[string]any{
		"system_name": "crm",
		"event_types": []string{"lead_created"},
		"webhook_url": "http://crm-a/hook",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodPost, "/v1/subscriptions", map[string]any{
		"system_name": "crm",
		"event_types": []string{"lead_created", "lead_updated"},
		"webhook_url": "http://crm-b/hook",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/v1/subscriptions", nil)
	var list struct {
		Subscriptions map[string]*model.Subscription `json:"subscriptions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(list.Subscriptions) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(list.Subscriptions))
	}
	sub := list.Subscriptions["crm"]
	if sub.WebhookURL != "http://crm-b/hook" || len(sub.EventTypes) != 2 {
		t.Errorf("subscription = %+v, want second write to win", sub)
	}
	if !sub.Active {
		t.Error("Active = false, want default true")
	}
}

func TestSubscribe_Invalid(t *testing.T) {
	h := newTestHandler(t, "")
	rec := doRequest(t, h, http.MethodPost, "/v1/subscriptions", map[string]any{
		"system_name": "crm",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListEvents_LimitAndFilter(t *testing.T) {
	h := newTestHandler(t, "")

	// 5 order events then 60 heartbeats: the orders are outside the
	// default window.
	for i := 0; i < 5; i++ {
		doRequest(t, h, http.MethodPost, "/v1/events", map[string]any{
			"event_type":    "order_created",
			"source_system": "orders",
		})
	}
	for i := 0; i < 60; i++ {
		doRequest(t, h, http.MethodPost, "/v1/events", map[string]any{
			"event_type":    "heartbeat",
			"source_system": "monitor",
		})
	}

	var list struct {
		Events []*model.Record `json:"events"`
		Count  int             `json:"count"`
	}

	rec := doRequest(t, h, http.MethodGet, "/v1/events?type=order_created", nil)
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 0 {
		t.Fatalf("count = %d with default window semantics, want 0", list.Count)
	}

	rec = doRequest(t, h, http.MethodGet, "/v1/events?type=order_created&filter_first=true", nil)
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 5 {
		t.Fatalf("count = %d with filter_first, want 5", list.Count)
	}

	rec = doRequest(t, h, http.MethodGet, "/v1/events?limit=10", nil)
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 10 {
		t.Fatalf("count = %d with limit=10, want 10", list.Count)
	}

	if rec := doRequest(t, h, http.MethodGet, "/v1/events?limit=many", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d for bad limit, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, "")
	doRequest(t, h, http.MethodPost, "/v1/subscriptions", map[string]any{
		"system_name": "crm",
		"event_types": []string{"lead_created"},
		"webhook_url": "http://crm/hook",
	})
	doRequest(t, h, http.MethodPost, "/v1/events", map[string]any{
		"event_type":    "order_created",
		"source_system": "orders",
	})

	rec := doRequest(t, h, http.MethodGet, "/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var health broker.Health
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.Subscribers != 1 || health.EventsStored != 1 {
		t.Errorf("health = %+v", health)
	}
	if health.Timestamp.IsZero() {
		t.Error("timestamp is zero")
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestHandler(t, "sekret")

	for _, tc := range []struct {
		name   string
		header string
		path   string
		want   int
	}{
		{"MissingHeader", "", "/v1/events?limit=1", http.StatusUnauthorized},
		{"WrongScheme", "Basic sekret", "/v1/events?limit=1", http.StatusUnauthorized},
		{"WrongToken", "Bearer nope", "/v1/events?limit=1", http.StatusUnauthorized},
		{"ValidToken", "Bearer sekret", "/v1/events?limit=1", http.StatusOK},
		{"HealthExempt", "", "/v1/health", http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newTestHandler(t, "")
	rec := doRequest(t, h, http.MethodGet, "/v1/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

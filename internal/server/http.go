package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/groblegark/relay/internal/eventlog"
	"github.com/groblegark/relay/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *RelayServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/events", s.handlePublishEvent)
	mux.HandleFunc("GET /v1/events", s.handleListEvents)
	mux.HandleFunc("POST /v1/subscriptions", s.handleSubscribe)
	mux.HandleFunc("GET /v1/subscriptions", s.handleListSubscriptions)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, RequestLogger(mux))
}

// handlePublishEvent handles POST /v1/events.
func (s *RelayServer) handlePublishEvent(w http.ResponseWriter, r *http.Request) {
	var event model.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.broker.Publish(r.Context(), &event)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleListEvents handles GET /v1/events.
func (s *RelayServer) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := eventlog.Query{
		SourceSystem:  q.Get("system"),
		EventType:     q.Get("type"),
		CorrelationID: q.Get("correlation"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		query.Limit = n
	}
	if v := q.Get("filter_first"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "filter_first must be a boolean")
			return
		}
		query.FilterFirst = b
	}

	records := s.broker.Events(query)
	if records == nil {
		records = []*model.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": records,
		"count":  len(records),
	})
}

// subscribeInput is the POST /v1/subscriptions request body. Active
// defaults to true when omitted.
type subscribeInput struct {
	SystemName string   `json:"system_name"`
	EventTypes []string `json:"event_types"`
	WebhookURL string   `json:"webhook_url"`
	Active     *bool    `json:"active"`
}

// handleSubscribe handles POST /v1/subscriptions.
func (s *RelayServer) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var in subscribeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	sub := &model.Subscription{
		SystemName: in.SystemName,
		EventTypes: in.EventTypes,
		WebhookURL: in.WebhookURL,
		Active:     active,
	}

	if err := s.broker.Subscribe(sub); err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "subscribed",
		"system": sub.SystemName,
	})
}

// handleListSubscriptions handles GET /v1/subscriptions.
func (s *RelayServer) handleListSubscriptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"subscriptions": s.broker.Subscriptions(),
	})
}

// handleHealth handles GET /v1/health.
func (s *RelayServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.broker.Health())
}

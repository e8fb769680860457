// Package client is the HTTP client for the relay REST API, used by the
// relay CLI and by other Go services that publish through the broker.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/groblegark/relay/internal/model"
)

// HTTPClient talks to a relay server over its HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// PublishEvent publishes one event and returns the server's receipt.
func (c *HTTPClient) PublishEvent(ctx context.Context, event *model.Event) (*model.PublishResult, error) {
	var result model.PublishResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/events", event, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListEventsRequest filters the event log query. Zero values are omitted
// from the request.
type ListEventsRequest struct {
	SourceSystem  string
	EventType     string
	CorrelationID string
	Limit         int
	FilterFirst   bool
}

// ListEventsResponse is the event log query result.
type ListEventsResponse struct {
	Events []*model.Record `json:"events"`
	Count  int             `json:"count"`
}

// ListEvents queries recorded events.
func (c *HTTPClient) ListEvents(ctx context.Context, req *ListEventsRequest) (*ListEventsResponse, error) {
	q := url.Values{}
	if req.SourceSystem != "" {
		q.Set("system", req.SourceSystem)
	}
	if req.EventType != "" {
		q.Set("type", req.EventType)
	}
	if req.CorrelationID != "" {
		q.Set("correlation", req.CorrelationID)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.FilterFirst {
		q.Set("filter_first", "true")
	}

	path := "/v1/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListEventsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Subscribe registers or replaces a subscription.
func (c *HTTPClient) Subscribe(ctx context.Context, sub *model.Subscription) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/subscriptions", sub, nil)
}

// ListSubscriptions returns all subscriptions keyed by system name.
func (c *HTTPClient) ListSubscriptions(ctx context.Context) (map[string]*model.Subscription, error) {
	var resp struct {
		Subscriptions map[string]*model.Subscription `json:"subscriptions"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/subscriptions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Subscriptions, nil
}

// HealthStatus is the broker's self-reported state.
type HealthStatus struct {
	Status       string    `json:"status"`
	Subscribers  int       `json:"subscribers"`
	EventsStored int       `json:"events_stored"`
	Timestamp    time.Time `json:"timestamp"`
}

// Health fetches the broker health summary.
func (c *HTTPClient) Health(ctx context.Context) (*HealthStatus, error) {
	var resp HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the
// JSON response. If result is nil, the response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

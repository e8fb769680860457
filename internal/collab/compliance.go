package collab

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Transaction is the transaction-shaped record forwarded for audit logging.
type Transaction struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Source    string    `json:"source_system"`
	Amount    float64   `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CheckResult is the compliance service's verdict.
type CheckResult struct {
	Compliant  bool     `json:"compliant"`
	Violations []string `json:"violations,omitempty"`
}

// ComplianceClient talks to the compliance/decisioning service.
type ComplianceClient struct {
	baseURL    string
	httpClient httpDoer
}

// NewComplianceClient creates a compliance client. An empty baseURL yields
// a client whose calls fail with ErrNotConfigured.
func NewComplianceClient(baseURL string, timeout time.Duration) *ComplianceClient {
	return &ComplianceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
	}
}

// Check submits a transaction for a compliance verdict. Callers treat any
// error (including an unreachable service) as a non-compliant result
// rather than raising it.
func (c *ComplianceClient) Check(ctx context.Context, tx *Transaction) (*CheckResult, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	var result CheckResult
	if err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/api/check", tx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

package collab

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Lead is the minimal payload for CRM lead creation.
type Lead struct {
	Company string  `json:"company"`
	Budget  float64 `json:"budget,omitempty"`
	Notes   string  `json:"notes,omitempty"`
	Source  string  `json:"source"`
}

// OpportunityUpdate carries last-activity fields plus optional stage and
// probability overrides.
type OpportunityUpdate struct {
	LastActivity     string    `json:"last_activity"`
	LastActivityTime time.Time `json:"last_activity_time"`
	Stage            string    `json:"stage,omitempty"`
	Probability      *float64  `json:"probability,omitempty"`
}

// CRMClient talks to the customer-relationship system.
type CRMClient struct {
	baseURL    string
	httpClient httpDoer
}

// NewCRMClient creates a CRM client. An empty baseURL yields a client
// whose calls fail with ErrNotConfigured.
func NewCRMClient(baseURL string, timeout time.Duration) *CRMClient {
	return &CRMClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
	}
}

// CreateLead creates a new lead.
func (c *CRMClient) CreateLead(ctx context.Context, lead *Lead) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	return doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/api/leads", lead, nil)
}

// UpdateOpportunity updates the opportunity identified by ref.
func (c *CRMClient) UpdateOpportunity(ctx context.Context, ref string, update *OpportunityUpdate) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	return doJSON(ctx, c.httpClient, http.MethodPatch, c.baseURL+"/api/opportunities/"+url.PathEscape(ref), update, nil)
}

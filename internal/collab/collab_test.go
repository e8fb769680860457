package collab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCRMClient_CreateLead(t *testing.T) {
	var got Lead
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/leads" {
			t.Errorf("got %s %s, want POST /api/leads", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding lead: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewCRMClient(srv.URL, time.Second)
	err := c.CreateLead(context.Background(), &Lead{Company: "Acme", Budget: 5000, Source: "evt-1"})
	if err != nil {
		t.Fatalf("CreateLead() error: %v", err)
	}
	if got.Company != "Acme" || got.Budget != 5000 {
		t.Errorf("server received %+v", got)
	}
}

func TestCRMClient_UpdateOpportunityPath(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
	}))
	defer srv.Close()

	c := NewCRMClient(srv.URL, time.Second)
	if err := c.UpdateOpportunity(context.Background(), "opp-7", &OpportunityUpdate{LastActivity: "order_shipped"}); err != nil {
		t.Fatalf("UpdateOpportunity() error: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/api/opportunities/opp-7" {
		t.Errorf("got %s %s, want PATCH /api/opportunities/opp-7", gotMethod, gotPath)
	}
}

func TestTaskClient_EscalateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tasks/task-42" {
			t.Errorf("path = %s, want /api/tasks/task-42", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewTaskClient(srv.URL, time.Second)
	esc := &Escalation{Status: "escalated", Priority: "high", Reason: "task_overdue", Timestamp: time.Now().UTC()}
	if err := c.EscalateTask(context.Background(), "task-42", esc); err != nil {
		t.Fatalf("EscalateTask() error: %v", err)
	}
}

func TestComplianceClient_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(CheckResult{Compliant: false, Violations: []string{"limit exceeded"}})
	}))
	defer srv.Close()

	c := NewComplianceClient(srv.URL, time.Second)
	res, err := c.Check(context.Background(), &Transaction{EventID: "evt-1", EventType: "payment_received"})
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if res.Compliant {
		t.Error("Compliant = true, want false")
	}
	if len(res.Violations) != 1 || res.Violations[0] != "limit exceeded" {
		t.Errorf("Violations = %v", res.Violations)
	}
}

func TestNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, time.Second)
	err := c.PostAlert(context.Background(), &Alert{Text: "hi"})
	if err == nil {
		t.Fatal("PostAlert() error = nil, want non-2xx error")
	}
}

func TestNotConfigured(t *testing.T) {
	ctx := context.Background()

	if err := NewCRMClient("", time.Second).CreateLead(ctx, &Lead{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("CreateLead() = %v, want ErrNotConfigured", err)
	}
	if err := NewTaskClient("", time.Second).CreateTask(ctx, &Task{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("CreateTask() = %v, want ErrNotConfigured", err)
	}
	if _, err := NewComplianceClient("", time.Second).Check(ctx, &Transaction{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Check() = %v, want ErrNotConfigured", err)
	}
	if err := NewChatClient("", time.Second).PostAlert(ctx, &Alert{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("PostAlert() = %v, want ErrNotConfigured", err)
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewCRMClient(srv.URL, 20*time.Millisecond)
	if err := c.CreateLead(context.Background(), &Lead{Company: "Acme"}); err == nil {
		t.Fatal("CreateLead() error = nil, want timeout")
	}
}

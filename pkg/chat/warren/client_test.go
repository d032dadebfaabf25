package warren

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClientListMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/v1/agents/agent-1/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "10" {
			t.Errorf("expected limit=10, got %q", r.URL.Query().Get("limit"))
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"m1","messageType":"user_message","content":"hello"},
			{"id":"m2","messageType":"assistant_message","content":"hi"}
		]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithAPIKey("secret"))
	events, err := client.ListMessages(context.Background(), "agent-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != KindUser || events[0].Content.Plain() != "hello" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
}

func TestClientCreateMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		if body["maxSteps"] != float64(3) {
			t.Errorf("expected passthrough field, got %v", body["maxSteps"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"messages":[{"id":"m1","messageType":"assistant_message","content":"done"}],
			"usage":{"promptTokens":12,"completionTokens":4,"totalTokens":16,"stepCount":1}
		}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	resp, err := client.CreateMessages(context.Background(), "agent-1", CreateRequest{
		Messages: []MessageCreate{{Role: "user", Content: "hello"}},
		Extra:    map[string]any{"maxSteps": 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Messages) != 1 {
		t.Fatalf("expected 1 event, got %d", len(resp.Messages))
	}
	if resp.Usage.TotalTokens != 16 {
		t.Errorf("expected 16 total tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.ListMessages(context.Background(), "agent-1", 0)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Errorf("expected status in error, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "bad key") {
		t.Errorf("expected body in error, got %q", err.Error())
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	policy := &RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 1.0, MaxDelay: time.Millisecond}
	client := NewClient(WithBaseURL(server.URL), WithRetry(policy))
	if _, err := client.ListMessages(context.Background(), "agent-1", 0); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	policy := &RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 1.0, MaxDelay: time.Millisecond}
	client := NewClient(WithBaseURL(server.URL), WithRetry(policy))
	if _, err := client.ListMessages(context.Background(), "agent-1", 0); err == nil {
		t.Fatal("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected single attempt for 400, got %d", n)
	}
}

func TestClientHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/health" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	if err := client.Health(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestClientGetAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/agents/agent-1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":"agent-1","name":"scout","model":"gpt-4","tools":["web_search","archival_memory_search"]}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	agent, err := client.GetAgent(context.Background(), "agent-1")
	if err != nil {
		t.Fatal(err)
	}
	if agent.Name != "scout" {
		t.Errorf("expected name scout, got %q", agent.Name)
	}
	if len(agent.Tools) != 2 {
		t.Errorf("expected 2 tools, got %d", len(agent.Tools))
	}
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := &RetryPolicy{MaxAttempts: 5, InitialDelay: time.Second, Multiplier: 2.0, MaxDelay: 3 * time.Second}
	if d := policy.NextDelay(1); d != time.Second {
		t.Errorf("expected 1s, got %v", d)
	}
	if d := policy.NextDelay(2); d != 2*time.Second {
		t.Errorf("expected 2s, got %v", d)
	}
	if d := policy.NextDelay(4); d != 3*time.Second {
		t.Errorf("expected cap at 3s, got %v", d)
	}
}

package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/hutch/internal/task"
	"github.com/user/hutch/internal/transcript"
	"github.com/user/hutch/internal/types"
	"github.com/user/hutch/pkg/chat"
)

type mockBridge struct {
	lastKey  types.ChatKey
	lastText string
	reply    string
}

func (m *mockBridge) Handle(ctx context.Context, key types.ChatKey, text string) (string, error) {
	m.lastKey = key
	m.lastText = text
	return m.reply, nil
}

func setupServer(t *testing.T, mock *mockBridge, tasks ...*types.Task) *Server {
	t.Helper()
	dir := t.TempDir()
	store := task.NewStore(filepath.Join(dir, "tasks.json"))
	for _, tk := range tasks {
		if err := store.Add(tk); err != nil {
			t.Fatal(err)
		}
	}
	chats := transcript.NewChatStore(dir)
	transcripts := transcript.NewStore(dir)
	return NewServer(mock.Handle, store, chats, transcripts, "http:local:default")
}

func TestHealthEndpoint(t *testing.T) {
	mock := &mockBridge{reply: "unused"}
	srv := setupServer(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestMessageEndpoint(t *testing.T) {
	mock := &mockBridge{reply: "hello from the agent"}
	srv := setupServer(t, mock)

	body := `{"text":"say hi","chat_key":"http:user:1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["reply"] != "hello from the agent" {
		t.Errorf("expected 'hello from the agent', got %q", resp["reply"])
	}
	if mock.lastKey != "http:user:1" {
		t.Errorf("expected chat key 'http:user:1', got %q", mock.lastKey)
	}
	if mock.lastText != "say hi" {
		t.Errorf("expected text 'say hi', got %q", mock.lastText)
	}
}

func TestMessageEndpointDefaultKey(t *testing.T) {
	mock := &mockBridge{reply: "ok"}
	srv := setupServer(t, mock)

	body := `{"text":"no key here"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if mock.lastKey != "http:local:default" {
		t.Errorf("expected default chat key, got %q", mock.lastKey)
	}
}

func TestMessageEndpointMissingText(t *testing.T) {
	mock := &mockBridge{reply: "unused"}
	srv := setupServer(t, mock)

	body := `{"chat_key":"http:user:1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestTaskEndpoint(t *testing.T) {
	mock := &mockBridge{reply: "briefing done"}
	srv := setupServer(t, mock, &types.Task{
		Name:    "briefing",
		Prompt:  "summarize the day",
		ChatKey: "http:tasks:briefing",
		Enabled: true,
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/briefing", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["reply"] != "briefing done" {
		t.Errorf("expected 'briefing done', got %q", resp["reply"])
	}
	if mock.lastKey != "http:tasks:briefing" {
		t.Errorf("expected chat key 'http:tasks:briefing', got %q", mock.lastKey)
	}
	if mock.lastText != "summarize the day" {
		t.Errorf("expected task prompt, got %q", mock.lastText)
	}
}

func TestTaskEndpointOverridePrompt(t *testing.T) {
	mock := &mockBridge{reply: "custom"}
	srv := setupServer(t, mock, &types.Task{
		Name:    "flex",
		Prompt:  "default prompt",
		ChatKey: "http:tasks:flex",
		Enabled: true,
	})

	body := `{"prompt":"override prompt"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/flex", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if mock.lastText != "override prompt" {
		t.Errorf("expected prompt 'override prompt', got %q", mock.lastText)
	}
}

func TestTaskEndpointNotFound(t *testing.T) {
	mock := &mockBridge{reply: "unused"}
	srv := setupServer(t, mock)

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestTaskEndpointDisabled(t *testing.T) {
	mock := &mockBridge{reply: "unused"}
	srv := setupServer(t, mock, &types.Task{
		Name:    "off",
		Prompt:  "disabled task",
		ChatKey: "http:tasks:off",
		Enabled: false,
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/off", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	mock := &mockBridge{reply: "unused"}
	srv := setupServer(t, mock)

	ctx := context.Background()
	entry := &types.TranscriptEntry{
		ChatKey: "http:user:1",
		At:      time.Now().UTC(),
		Message: chat.UIMessage{
			ID:    "msg-1",
			Role:  chat.RoleUser,
			Parts: []chat.UIPart{{Type: chat.PartText, Text: "hello"}},
		},
	}
	if err := srv.transcripts.Append(ctx, entry); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/history?chat_key=http:user:1", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var entries []*types.TranscriptEntry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message.ID != "msg-1" {
		t.Errorf("expected message ID msg-1, got %q", entries[0].Message.ID)
	}
}

func TestHistoryEndpointEmpty(t *testing.T) {
	mock := &mockBridge{reply: "unused"}
	srv := setupServer(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/v1/history?chat_key=http:user:none", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestChatsEndpoint(t *testing.T) {
	mock := &mockBridge{reply: "unused"}
	srv := setupServer(t, mock)

	ctx := context.Background()
	if _, err := srv.chats.ResolveOrCreate(ctx, "http:user:1", "agent-1"); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/chats", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var result []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(result))
	}
	if result[0]["chat_key"] != "http:user:1" {
		t.Errorf("expected chat_key http:user:1, got %v", result[0]["chat_key"])
	}
	if result[0]["agent_id"] != "agent-1" {
		t.Errorf("expected agent_id agent-1, got %v", result[0]["agent_id"])
	}
}

// internal/httpapi/server.go

// Package httpapi exposes the daemon's local HTTP surface: health checks,
// message ingress, and transcript history.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/user/hutch/internal/types"
)

// Handler processes one inbound text within a chat and returns the rendered
// reply.
type Handler func(ctx context.Context, key types.ChatKey, text string) (string, error)

// Server is a lightweight HTTP handler for the daemon's local API.
type Server struct {
	handler     Handler
	tasks       types.TaskStore
	chats       types.ChatStore
	transcripts types.TranscriptStore
	defaultKey  types.ChatKey
	mux         *http.ServeMux
}

// NewServer creates a Server. defaultKey is used for requests that omit a
// chat key.
func NewServer(handler Handler, tasks types.TaskStore, chats types.ChatStore, transcripts types.TranscriptStore, defaultKey types.ChatKey) *Server {
	s := &Server{
		handler:     handler,
		tasks:       tasks,
		chats:       chats,
		transcripts: transcripts,
		defaultKey:  defaultKey,
		mux:         http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /v1/messages", s.handleMessage)
	s.mux.HandleFunc("POST /v1/tasks/{name}", s.handleTask)
	s.mux.HandleFunc("GET /v1/history", s.handleHistory)
	s.mux.HandleFunc("GET /v1/chats", s.handleChats)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// messageRequest is the JSON body for POST /v1/messages.
type messageRequest struct {
	ChatKey string `json:"chat_key"`
	Text    string `json:"text"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, `{"error":"text is required"}`, http.StatusBadRequest)
		return
	}

	key := types.ChatKey(req.ChatKey)
	if key == "" {
		key = s.defaultKey
	}

	reply, err := s.handler(r.Context(), key, req.Text)
	if err != nil {
		slog.Error("http message handler failed", "chat_key", string(key), "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"chat_key": string(key),
		"reply":    reply,
	})
}

// taskRequest is the optional JSON body for POST /v1/tasks/{name}.
type taskRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	task, err := s.tasks.Get(name)
	if err != nil {
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		return
	}

	if !task.Enabled {
		http.Error(w, `{"error":"task is disabled"}`, http.StatusForbidden)
		return
	}

	prompt := task.Prompt
	key := task.ChatKey
	if key == "" {
		key = s.defaultKey
	}

	// Allow body to override the prompt
	var body taskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Prompt != "" {
		prompt = body.Prompt
	}

	reply, err := s.handler(r.Context(), key, prompt)
	if err != nil {
		slog.Error("http task handler failed", "task", name, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"chat_key": string(key),
		"reply":    reply,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	key := types.ChatKey(r.URL.Query().Get("chat_key"))
	if key == "" {
		key = s.defaultKey
	}

	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.transcripts.Tail(r.Context(), key, limit)
	if err != nil {
		slog.Error("tail transcript failed", "chat_key", string(key), "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*types.TranscriptEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

type chatResponse struct {
	ChatKey      string `json:"chat_key"`
	AgentID      string `json:"agent_id"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	MessageCount int64  `json:"message_count"`
}

func (s *Server) handleChats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	chats, err := s.chats.List(ctx)
	if err != nil {
		slog.Error("list chats failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	result := make([]chatResponse, 0, len(chats))
	for _, c := range chats {
		count, err := s.transcripts.Count(ctx, c.ChatKey)
		if err != nil {
			slog.Warn("count transcript failed", "chat_key", string(c.ChatKey), "error", err)
		}
		result = append(result, chatResponse{
			ChatKey:      string(c.ChatKey),
			AgentID:      c.AgentID,
			Status:       c.Status,
			CreatedAt:    c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt:    c.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
			MessageCount: count,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt > result[j].UpdatedAt
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

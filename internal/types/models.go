// internal/types/models.go
package types

import (
	"encoding/json"
	"time"

	"github.com/user/hutch/pkg/chat"
)

// TranscriptEntry is one recorded UI message in a chat's transcript.
type TranscriptEntry struct {
	Seq     int64          `json:"seq"`
	ChatKey ChatKey        `json:"chat_key"`
	RunID   RunID          `json:"run_id,omitempty"`
	At      time.Time      `json:"at"`
	Message chat.UIMessage `json:"message"`
}

// ChatIndex is the persisted summary of one known chat.
type ChatIndex struct {
	ChatKey   ChatKey   `json:"chat_key"`
	AgentID   string    `json:"agent_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastRunID RunID     `json:"last_run_id,omitempty"`
	LastSeq   int64     `json:"last_seq"`
}

// Task is a named prompt that fires on a cron schedule or via the HTTP API.
type Task struct {
	ID       TaskID  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Prompt   string  `json:"prompt"`
	Schedule string  `json:"schedule,omitempty"`
	ChatKey  ChatKey `json:"chat_key"`
	Enabled  bool    `json:"enabled"`
}

// Inbound is a message arriving from a frontend, before it is turned into
// a prompt for the agent.
type Inbound struct {
	Source   string          `json:"source"`
	ChatKey  ChatKey         `json:"chat_key"`
	UserID   string          `json:"user_id"`
	Text     string          `json:"text"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

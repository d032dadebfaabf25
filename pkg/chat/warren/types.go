package warren

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/user/hutch/pkg/chat"
)

// EventKind discriminates platform event records.
type EventKind string

const (
	KindSystem     EventKind = "system_message"
	KindUser       EventKind = "user_message"
	KindAssistant  EventKind = "assistant_message"
	KindReasoning  EventKind = "reasoning_message"
	KindToolCall   EventKind = "tool_call_message"
	KindToolReturn EventKind = "tool_return_message"
)

// AllKinds returns every event kind, in dispatch order.
func AllKinds() []EventKind {
	return []EventKind{KindSystem, KindUser, KindAssistant, KindReasoning, KindToolCall, KindToolReturn}
}

// ParseKind resolves a kind from its wire literal or its short form
// (e.g. "user" for "user_message").
func ParseKind(s string) (EventKind, error) {
	name := strings.TrimSpace(s)
	if !strings.HasSuffix(name, "_message") {
		name += "_message"
	}
	for _, k := range AllKinds() {
		if EventKind(name) == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

// Event is a single timestamped record emitted by the agent server. IDs are
// not unique: events sharing an id are fragments of one logical turn. Which
// fields are populated depends on the kind.
type Event struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
	Kind EventKind `json:"messageType"`

	// system/user/assistant
	Content chat.MessageContent `json:"content"`

	// reasoning
	Reasoning string `json:"reasoning,omitempty"`

	// tool_call
	ToolCall *ToolCallBody `json:"toolCall,omitempty"`

	// tool_return
	ToolCallID string   `json:"toolCallId,omitempty"`
	ToolReturn any      `json:"toolReturn,omitempty"`
	Status     string   `json:"status,omitempty"`
	Stdout     []string `json:"stdout,omitempty"`
	Stderr     []string `json:"stderr,omitempty"`

	// provenance metadata, shared by reasoning and tool_return
	Name     *string `json:"name,omitempty"`
	Otid     *string `json:"otid,omitempty"`
	SenderID *string `json:"senderId,omitempty"`
	StepID   *string `json:"stepId,omitempty"`
	IsErr    *bool   `json:"isErr,omitempty"`
	SeqID    *int64  `json:"seqId,omitempty"`
	RunID    *string `json:"runId,omitempty"`
	Source   *string `json:"source,omitempty"`
}

// ToolCallBody is the nested payload of a tool_call event.
type ToolCallBody struct {
	Name       string          `json:"name"`
	ToolCallID string          `json:"toolCallId"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
}

// StatusError is the tool_return status value indicating failure; any other
// value counts as success.
const StatusError = "error"

// MessageCreate is one message of a message-creation request. Content is a
// plain string for verbatim system text, a fragment list otherwise, or an
// arbitrary passthrough value.
type MessageCreate struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// CreateRequest is the body of a message-creation call. Extra fields are
// merged into the encoded object next to "messages", so provider options
// can be passed through without the client knowing their shape.
type CreateRequest struct {
	Messages []MessageCreate `json:"messages"`
	Extra    map[string]any  `json:"-"`
}

func (r CreateRequest) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(r.Extra)+1)
	for k, v := range r.Extra {
		if k == "messages" {
			continue
		}
		body[k] = v
	}
	body["messages"] = r.Messages
	return json.Marshal(body)
}

// CreateResponse is the platform's reply to a message-creation call: the
// events produced by the turn plus token usage.
type CreateResponse struct {
	Messages []Event    `json:"messages"`
	Usage    UsageStats `json:"usage"`
}

// UsageStats is the platform's token accounting for one turn.
type UsageStats struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
	StepCount        int `json:"stepCount"`
}

// Agent is the read-only description of an agent as reported by the server.
type Agent struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Model string   `json:"model"`
	Tools []string `json:"tools"`
}

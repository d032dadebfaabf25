package chat

import (
	"encoding/json"
	"strings"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Part type discriminants. Tool parts use a dynamic type built from
// ToolPartPrefix plus the tool name, so they are matched by prefix rather
// than by a fixed constant.
const (
	PartText      = "text"
	PartFile      = "file"
	PartReasoning = "reasoning"

	ToolPartPrefix = "tool-"
)

// Coarse media types carried by file parts.
const (
	MediaTypeImage = "image/*"
	MediaTypeAudio = "audio/*"
)

// ToolState describes the lifecycle state of a tool part.
type ToolState string

const (
	ToolStateAvailable ToolState = "output-available"
	ToolStateError     ToolState = "output-error"
)

// UIMessage is one role-tagged message composed of ordered typed parts.
// IDs are unique within a converted sequence.
type UIMessage struct {
	ID    string   `json:"id"`
	Role  Role     `json:"role"`
	Parts []UIPart `json:"parts"`
}

// UIPart is one typed fragment within a UIMessage. The Type field selects
// which of the remaining fields are meaningful: text and reasoning parts use
// Text, file parts use URL and MediaType, tool parts use ToolCallID, State,
// Input, Output and ErrorText. Reasoning and tool-return parts additionally
// carry Meta.
type UIPart struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	MediaType  string          `json:"mediaType,omitempty"`
	URL        string          `json:"url,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	State      ToolState       `json:"state,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     any             `json:"output,omitempty"`
	ErrorText  string          `json:"errorText,omitempty"`
	Meta       *PartMeta       `json:"metadata,omitempty"`
}

// IsText reports whether the part is a plain text part.
func (p UIPart) IsText() bool { return p.Type == PartText }

// IsFile reports whether the part is a file part.
func (p UIPart) IsFile() bool { return p.Type == PartFile }

// IsReasoning reports whether the part is a reasoning part.
func (p UIPart) IsReasoning() bool { return p.Type == PartReasoning }

// IsTool reports whether the part belongs to the dynamically named tool
// part family.
func (p UIPart) IsTool() bool { return strings.HasPrefix(p.Type, ToolPartPrefix) }

// ToolName returns the tool name embedded in a tool part's type, or the
// empty string for non-tool parts.
func (p UIPart) ToolName() string {
	if !p.IsTool() {
		return ""
	}
	return strings.TrimPrefix(p.Type, ToolPartPrefix)
}

// PartMeta reproduces the provenance metadata of the source event. Every
// field is always serialized; absent values appear as explicit nulls so
// consumers can rely on a fixed record shape.
type PartMeta struct {
	Name     *string `json:"name"`
	Otid     *string `json:"otid"`
	SenderID *string `json:"senderId"`
	StepID   *string `json:"stepId"`
	IsErr    *bool   `json:"isErr"`
	SeqID    *int64  `json:"seqId"`
	RunID    *string `json:"runId"`
	Source   *string `json:"source"`
	Date     *string `json:"date"`
}

// PromptMessage is one message of an outgoing prompt.
type PromptMessage struct {
	Role    Role           `json:"role"`
	Content MessageContent `json:"content"`
}

// UserText builds a single-message user prompt entry from plain text.
func UserText(text string) PromptMessage {
	return PromptMessage{Role: RoleUser, Content: Text(text)}
}

// SystemText builds a system prompt entry from plain text.
func SystemText(text string) PromptMessage {
	return PromptMessage{Role: RoleSystem, Content: Text(text)}
}

// Tool describes a tool a model can surface, including its parameter schema.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Reply is a complete response from a model.
type Reply struct {
	Messages []UIMessage `json:"messages"`
	Usage    Usage       `json:"usage"`
}

// Usage tracks token consumption for a request/response pair.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Delta represents an incremental update during streaming.
type Delta struct {
	Messages []UIMessage `json:"messages,omitempty"`
	Usage    *Usage      `json:"usage,omitempty"`
}

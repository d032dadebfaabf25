// Package tokens estimates token counts for UI messages using tiktoken
// encodings. Counts are estimates: the agent server does its own accounting
// and may tokenize differently.
package tokens

import (
	"encoding/json"
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/hutch/pkg/chat"
)

// Estimator counts tokens with a model-appropriate encoding.
type Estimator struct {
	encoding *tiktoken.Tiktoken
}

// NewEstimator creates an Estimator for the given model name, falling back
// to cl100k_base for unknown models.
func NewEstimator(model string) (*Estimator, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &Estimator{encoding: enc}, nil
}

// CountText returns the token count for a string.
func (e *Estimator) CountText(text string) int {
	if text == "" {
		return 0
	}
	return len(e.encoding.Encode(text, nil, nil))
}

// CountMessages returns the total token count across all parts of the given
// UI messages. Tool inputs and non-string outputs are counted in their JSON
// form.
func (e *Estimator) CountMessages(messages []chat.UIMessage) int {
	total := 0
	for _, msg := range messages {
		for _, part := range msg.Parts {
			total += e.countPart(part)
		}
	}
	return total
}

func (e *Estimator) countPart(part chat.UIPart) int {
	switch {
	case part.IsText(), part.IsReasoning():
		return e.CountText(part.Text)
	case part.IsFile():
		return e.CountText(part.URL)
	case part.IsTool():
		n := e.CountText(part.ToolName())
		n += e.CountText(string(part.Input))
		n += e.CountText(valueText(part.Output))
		n += e.CountText(part.ErrorText)
		return n
	default:
		return 0
	}
}

// valueText renders an arbitrary value as text: strings pass through,
// anything else becomes JSON.
func valueText(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

package warren

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/user/hutch/pkg/chat"
)

// emptyMapping is the input placeholder for tool parts that carry none.
const emptyMapping = "{}"

type aggregateOptions struct {
	kinds map[EventKind]bool
}

// AggregateOption configures a call to AggregateEvents.
type AggregateOption func(*aggregateOptions)

// WithKinds restricts aggregation to the given event kinds. The default is
// all six kinds.
func WithKinds(kinds ...EventKind) AggregateOption {
	return func(o *aggregateOptions) {
		o.kinds = make(map[EventKind]bool, len(kinds))
		for _, k := range kinds {
			o.kinds[k] = true
		}
	}
}

// messageBuilder accumulates parts for one id while scanning events.
type messageBuilder struct {
	role  chat.Role
	parts []chat.UIPart
}

// AggregateEvents groups an ordered event sequence into UI messages, one per
// distinct id among allowed events, in first-occurrence order of each id.
// The final role of a message is decided by the last event processed for its
// id; reasoning and tool events force the assistant role. Parts accumulate
// in event order. The call fails as a whole on the first unsupported content
// fragment; no partial result is returned.
func AggregateEvents(events []Event, opts ...AggregateOption) ([]chat.UIMessage, error) {
	options := aggregateOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	allowed := func(k EventKind) bool {
		if options.kinds == nil {
			return true
		}
		return options.kinds[k]
	}

	byID := make(map[string]*messageBuilder)
	var order []string
	builderFor := func(id string) *messageBuilder {
		if b, ok := byID[id]; ok {
			return b
		}
		b := &messageBuilder{role: chat.RoleAssistant}
		byID[id] = b
		order = append(order, id)
		return b
	}

	for _, ev := range events {
		if !allowed(ev.Kind) {
			continue
		}
		b := builderFor(ev.ID)

		switch ev.Kind {
		case KindSystem:
			b.role = chat.RoleSystem
			b.parts = append(b.parts, chat.UIPart{Type: chat.PartText, Text: ev.Content.Plain()})

		case KindUser, KindAssistant:
			parts, err := contentToParts(ev.Content)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", ev.ID, err)
			}
			if ev.Kind == KindUser {
				b.role = chat.RoleUser
			} else {
				b.role = chat.RoleAssistant
			}
			b.parts = append(b.parts, parts...)

		case KindReasoning:
			b.role = chat.RoleAssistant
			b.parts = append(b.parts, chat.UIPart{
				Type: chat.PartReasoning,
				Text: ev.Reasoning,
				Meta: eventMeta(ev),
			})

		case KindToolCall:
			b.role = chat.RoleAssistant
			var name, callID string
			input := json.RawMessage(emptyMapping)
			if ev.ToolCall != nil {
				name = ev.ToolCall.Name
				callID = ev.ToolCall.ToolCallID
				if len(ev.ToolCall.Arguments) > 0 {
					input = ev.ToolCall.Arguments
				}
			}
			b.parts = append(b.parts, chat.UIPart{
				Type:       chat.ToolPartPrefix + name,
				ToolCallID: callID,
				State:      chat.ToolStateAvailable,
				Input:      input,
				Output:     "",
			})

		case KindToolReturn:
			b.role = chat.RoleAssistant
			var name string
			if ev.Name != nil {
				name = *ev.Name
			}
			part := chat.UIPart{
				Type:       chat.ToolPartPrefix + name,
				ToolCallID: ev.ToolCallID,
				State:      chat.ToolStateAvailable,
				Input:      json.RawMessage(emptyMapping),
				Output:     ev.ToolReturn,
				Meta:       eventMeta(ev),
			}
			if ev.Status == StatusError {
				part.State = chat.ToolStateError
				part.ErrorText = structuralText(ev.ToolReturn)
			}
			b.parts = append(b.parts, part)
		}
	}

	messages := make([]chat.UIMessage, 0, len(order))
	for _, id := range order {
		b := byID[id]
		messages = append(messages, chat.UIMessage{ID: id, Role: b.role, Parts: b.parts})
	}
	return messages, nil
}

// eventMeta builds the fixed-shape metadata record from an event's
// provenance fields. Absent fields stay nil and serialize as explicit null.
func eventMeta(ev Event) *chat.PartMeta {
	meta := &chat.PartMeta{
		Name:     ev.Name,
		Otid:     ev.Otid,
		SenderID: ev.SenderID,
		StepID:   ev.StepID,
		IsErr:    ev.IsErr,
		SeqID:    ev.SeqID,
		RunID:    ev.RunID,
		Source:   ev.Source,
	}
	if !ev.Date.IsZero() {
		s := ev.Date.Format(time.RFC3339Nano)
		meta.Date = &s
	}
	return meta
}

// structuralText renders a tool return value for error text: strings pass
// through, anything else becomes its canonical JSON form.
func structuralText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// contentToParts is the inbound content transform: plain strings become one
// text part, fragment sequences map one-to-one or one-to-zero onto parts.
// Image and audio fragments missing a usable URL are dropped silently; an
// unrecognized fragment type fails the whole call.
func contentToParts(content chat.MessageContent) ([]chat.UIPart, error) {
	if content.IsPlain() {
		return []chat.UIPart{{Type: chat.PartText, Text: content.Plain()}}, nil
	}
	fragments := content.Fragments()
	if fragments == nil {
		return nil, nil
	}
	parts := make([]chat.UIPart, 0, len(fragments))
	for _, f := range fragments {
		switch f.Type {
		case chat.FragmentText:
			parts = append(parts, chat.UIPart{Type: chat.PartText, Text: f.Text})
		case chat.FragmentImageURL:
			if url, ok := payloadURL(f.ImageURL, true); ok {
				parts = append(parts, chat.UIPart{Type: chat.PartFile, MediaType: chat.MediaTypeImage, URL: url})
			}
		case chat.FragmentInputAudio:
			if url, ok := payloadURL(f.InputAudio, false); ok {
				parts = append(parts, chat.UIPart{Type: chat.PartFile, MediaType: chat.MediaTypeAudio, URL: url})
			}
		default:
			return nil, &chat.UnsupportedContentTypeError{Type: f.Type}
		}
	}
	return parts, nil
}

// payloadURL resolves a fragment payload to a URL string. The payload is
// either an object with a url field or, when allowDirect is set, a bare
// string used as-is.
func payloadURL(payload json.RawMessage, allowDirect bool) (string, bool) {
	if len(payload) == 0 {
		return "", false
	}
	value := gjson.ParseBytes(payload)
	if allowDirect && value.Type == gjson.String {
		return value.Str, true
	}
	if url := value.Get("url"); url.Type == gjson.String {
		return url.Str, true
	}
	return "", false
}

// FlattenPrompt converts a prompt into the platform's message-creation
// payload. Only user and system roles are accepted: the platform manages
// assistant turns itself, so assistant or tool content cannot be submitted
// as new input.
func FlattenPrompt(prompt []chat.PromptMessage) ([]MessageCreate, error) {
	out := make([]MessageCreate, 0, len(prompt))
	for _, msg := range prompt {
		switch msg.Role {
		case chat.RoleUser:
			fragments, err := promptFragments(msg.Content)
			if err != nil {
				return nil, err
			}
			out = append(out, MessageCreate{Role: string(chat.RoleUser), Content: fragments})

		case chat.RoleSystem:
			switch {
			case msg.Content.IsPlain():
				out = append(out, MessageCreate{Role: string(chat.RoleSystem), Content: msg.Content.Plain()})
			case msg.Content.Fragments() != nil:
				fragments, err := promptFragments(msg.Content)
				if err != nil {
					return nil, err
				}
				out = append(out, MessageCreate{Role: string(chat.RoleSystem), Content: fragments})
			default:
				out = append(out, MessageCreate{Role: string(chat.RoleSystem), Content: msg.Content.Raw()})
			}

		default:
			return nil, &chat.UnsupportedRoleError{Role: msg.Role}
		}
	}
	return out, nil
}

// promptFragments is the outbound content transform: text fragments pass
// through, tool parts are dropped because tool artifacts are not
// re-submittable, and any other type fails the whole call.
func promptFragments(content chat.MessageContent) ([]chat.ContentFragment, error) {
	if content.IsPlain() {
		return []chat.ContentFragment{chat.TextFragment(content.Plain())}, nil
	}
	fragments := content.Fragments()
	out := make([]chat.ContentFragment, 0, len(fragments))
	for _, f := range fragments {
		switch {
		case f.Type == chat.FragmentText:
			out = append(out, chat.TextFragment(f.Text))
		case strings.HasPrefix(f.Type, chat.ToolPartPrefix):
			continue
		default:
			return nil, &chat.UnsupportedContentTypeError{Type: f.Type}
		}
	}
	return out, nil
}

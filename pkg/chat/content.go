package chat

import "encoding/json"

// Content fragment discriminants recognized on message content.
const (
	FragmentText       = "text"
	FragmentImageURL   = "image_url"
	FragmentInputAudio = "input_audio"
)

// ContentFragment is one typed fragment of structured message content.
// Image and audio payloads are kept raw because the wire allows both a
// nested object with a url field and a bare string.
type ContentFragment struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	ImageURL   json.RawMessage `json:"image_url,omitempty"`
	InputAudio json.RawMessage `json:"input_audio,omitempty"`
}

// TextFragment builds a plain text content fragment.
func TextFragment(text string) ContentFragment {
	return ContentFragment{Type: FragmentText, Text: text}
}

// MessageContent is message content that is either a plain string or an
// ordered sequence of typed fragments. The shape is resolved exactly once,
// at construction or unmarshal time; values that are neither are retained
// raw so callers can pass them through untouched.
type MessageContent struct {
	plain     *string
	fragments []ContentFragment
	raw       json.RawMessage
}

// Text builds plain string content.
func Text(s string) MessageContent {
	return MessageContent{plain: &s}
}

// Parts builds structured content from the given fragments.
func Parts(fragments ...ContentFragment) MessageContent {
	if fragments == nil {
		fragments = []ContentFragment{}
	}
	return MessageContent{fragments: fragments}
}

// IsPlain reports whether the content resolved to a plain string.
func (c MessageContent) IsPlain() bool { return c.plain != nil }

// Plain returns the plain string form, or "" if the content is structured.
func (c MessageContent) Plain() string {
	if c.plain == nil {
		return ""
	}
	return *c.plain
}

// Fragments returns the structured form, or nil if the content is plain or
// unresolved.
func (c MessageContent) Fragments() []ContentFragment { return c.fragments }

// Raw returns the retained raw value for content that resolved to neither a
// string nor a fragment sequence.
func (c MessageContent) Raw() json.RawMessage { return c.raw }

// IsZero reports whether the content is entirely unset.
func (c MessageContent) IsZero() bool {
	return c.plain == nil && c.fragments == nil && c.raw == nil
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	*c = MessageContent{}
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.plain = &s
		return nil
	}
	var fragments []ContentFragment
	if err := json.Unmarshal(data, &fragments); err == nil {
		if fragments == nil {
			fragments = []ContentFragment{}
		}
		c.fragments = fragments
		return nil
	}
	c.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	switch {
	case c.plain != nil:
		return json.Marshal(*c.plain)
	case c.fragments != nil:
		return json.Marshal(c.fragments)
	case c.raw != nil:
		return append(json.RawMessage(nil), c.raw...), nil
	default:
		return []byte("null"), nil
	}
}

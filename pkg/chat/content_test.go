package chat

import (
	"encoding/json"
	"testing"
)

func TestMessageContentUnmarshalString(t *testing.T) {
	var c MessageContent
	if err := json.Unmarshal([]byte(`"hello"`), &c); err != nil {
		t.Fatal(err)
	}
	if !c.IsPlain() {
		t.Fatal("expected plain content")
	}
	if c.Plain() != "hello" {
		t.Errorf("expected %q, got %q", "hello", c.Plain())
	}
	if c.Fragments() != nil {
		t.Errorf("expected nil fragments, got %v", c.Fragments())
	}
}

func TestMessageContentUnmarshalFragments(t *testing.T) {
	raw := `[{"type":"text","text":"hi"},{"type":"image_url","image_url":{"url":"https://x.test/a.png"}}]`
	var c MessageContent
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatal(err)
	}
	if c.IsPlain() {
		t.Fatal("expected structured content")
	}
	frags := c.Fragments()
	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(frags))
	}
	if frags[0].Type != FragmentText || frags[0].Text != "hi" {
		t.Errorf("unexpected first fragment: %+v", frags[0])
	}
	if frags[1].Type != FragmentImageURL {
		t.Errorf("expected image_url fragment, got %q", frags[1].Type)
	}
}

func TestMessageContentUnmarshalUnresolved(t *testing.T) {
	var c MessageContent
	if err := json.Unmarshal([]byte(`{"weird":true}`), &c); err != nil {
		t.Fatal(err)
	}
	if c.IsPlain() || c.Fragments() != nil {
		t.Fatal("expected unresolved content")
	}
	if string(c.Raw()) != `{"weird":true}` {
		t.Errorf("expected raw value retained, got %q", string(c.Raw()))
	}
}

func TestMessageContentUnmarshalNull(t *testing.T) {
	var c MessageContent
	if err := json.Unmarshal([]byte(`null`), &c); err != nil {
		t.Fatal(err)
	}
	if !c.IsZero() {
		t.Errorf("expected zero content, got %+v", c)
	}
}

func TestMessageContentMarshalRoundTrip(t *testing.T) {
	out, err := json.Marshal(Text("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"hello"` {
		t.Errorf("expected %q, got %q", `"hello"`, string(out))
	}

	out, err = json.Marshal(Parts(TextFragment("hi")))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `[{"type":"text","text":"hi"}]` {
		t.Errorf("unexpected fragment marshal: %s", out)
	}

	out, err = json.Marshal(MessageContent{})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "null" {
		t.Errorf("expected null for zero content, got %s", out)
	}
}

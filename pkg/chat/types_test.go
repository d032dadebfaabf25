package chat

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestUIPartToolHelpers(t *testing.T) {
	p := UIPart{Type: ToolPartPrefix + "web_search", State: ToolStateAvailable}
	if !p.IsTool() {
		t.Fatal("expected tool part")
	}
	if p.ToolName() != "web_search" {
		t.Errorf("expected tool name %q, got %q", "web_search", p.ToolName())
	}
	if p.IsText() || p.IsFile() || p.IsReasoning() {
		t.Error("tool part misclassified")
	}

	text := UIPart{Type: PartText, Text: "hi"}
	if text.IsTool() {
		t.Error("text part classified as tool")
	}
	if text.ToolName() != "" {
		t.Errorf("expected empty tool name, got %q", text.ToolName())
	}
}

func TestPartMetaExplicitNulls(t *testing.T) {
	out, err := json.Marshal(&PartMeta{})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"name", "otid", "senderId", "stepId", "isErr", "seqId", "runId", "source", "date"} {
		v, present := m[field]
		if !present {
			t.Errorf("field %q missing from metadata record", field)
			continue
		}
		if v != nil {
			t.Errorf("field %q expected null, got %v", field, v)
		}
	}
}

func TestErrorTypes(t *testing.T) {
	var err error = &UnsupportedContentTypeError{Type: "unknown_kind"}
	var ctErr *UnsupportedContentTypeError
	if !errors.As(err, &ctErr) {
		t.Fatal("errors.As failed for UnsupportedContentTypeError")
	}
	if ctErr.Type != "unknown_kind" {
		t.Errorf("expected type %q, got %q", "unknown_kind", ctErr.Type)
	}

	err = &UnsupportedRoleError{Role: RoleAssistant}
	var roleErr *UnsupportedRoleError
	if !errors.As(err, &roleErr) {
		t.Fatal("errors.As failed for UnsupportedRoleError")
	}
	if roleErr.Role != RoleAssistant {
		t.Errorf("expected role %q, got %q", RoleAssistant, roleErr.Role)
	}
}

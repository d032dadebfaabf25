package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/user/hutch/pkg/chat"
)

// printMessages renders UI messages for terminal output. Each message gets a
// role header; parts are indented beneath it.
func printMessages(w io.Writer, messages []chat.UIMessage) {
	for i, msg := range messages {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "[%s]\n", msg.Role)
		for _, part := range msg.Parts {
			printPart(w, part)
		}
	}
}

func printPart(w io.Writer, part chat.UIPart) {
	switch {
	case part.IsText():
		fmt.Fprintln(w, indent(part.Text))
	case part.IsReasoning():
		fmt.Fprintln(w, indent("(thinking) "+part.Text))
	case part.IsTool():
		fmt.Fprintf(w, "  tool %s (%s)\n", part.ToolName(), part.State)
		if len(part.Input) > 0 {
			fmt.Fprintf(w, "    input: %s\n", compactJSON(part.Input))
		}
		if part.State == chat.ToolStateError {
			fmt.Fprintf(w, "    error: %s\n", part.ErrorText)
		} else if part.Output != nil {
			fmt.Fprintf(w, "    output: %s\n", renderOutput(part.Output))
		}
	case part.IsFile():
		fmt.Fprintf(w, "  file %s %s\n", part.MediaType, part.URL)
	}
}

// printMessagesJSON dumps messages as indented JSON, for scripting.
func printMessagesJSON(w io.Writer, messages []chat.UIMessage) error {
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func indent(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return truncate(buf.String(), 200)
}

func renderOutput(output any) string {
	if s, ok := output.(string); ok {
		return truncate(strings.ReplaceAll(s, "\n", " "), 200)
	}
	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Sprintf("%v", output)
	}
	return truncate(string(data), 200)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

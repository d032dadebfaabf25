package bridge

import (
	"fmt"
	"strings"

	"github.com/user/hutch/pkg/chat"
)

// RenderText flattens assistant messages into plain text for frontends that
// display a single string per reply. Text parts are joined by blank lines;
// reasoning and tool parts collapse to one-line summaries.
func RenderText(messages []chat.UIMessage) string {
	var lines []string
	for _, msg := range messages {
		if msg.Role != chat.RoleAssistant {
			continue
		}
		for _, part := range msg.Parts {
			switch {
			case part.IsText():
				if part.Text != "" {
					lines = append(lines, part.Text)
				}
			case part.IsReasoning():
				if summary := firstLine(part.Text); summary != "" {
					lines = append(lines, fmt.Sprintf("[thinking: %s]", summary))
				}
			case part.IsTool():
				line := fmt.Sprintf("[tool %s: %s]", part.ToolName(), part.State)
				if part.State == chat.ToolStateError && part.ErrorText != "" {
					line = fmt.Sprintf("[tool %s failed: %s]", part.ToolName(), firstLine(part.ErrorText))
				}
				lines = append(lines, line)
			case part.IsFile():
				lines = append(lines, fmt.Sprintf("[file %s: %s]", part.MediaType, part.URL))
			}
		}
	}
	return strings.Join(lines, "\n\n")
}

// firstLine truncates text to its first line, capped at 120 characters.
func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 120 {
		text = text[:117] + "..."
	}
	return text
}

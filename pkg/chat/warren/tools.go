package warren

import (
	"encoding/json"

	"github.com/user/hutch/pkg/chat"
)

// placeholderSchema accepts any arguments; the server owns the real schema.
var placeholderSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// PlaceholderTool builds a stub definition for a server-side tool. The
// adapter never executes tools locally, so the stub only carries enough to
// render tool parts by name.
func PlaceholderTool(name string) chat.Tool {
	return chat.Tool{
		Name:        name,
		Description: "Executed remotely by the agent server.",
		Parameters:  append(json.RawMessage(nil), placeholderSchema...),
	}
}

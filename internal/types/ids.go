// internal/types/ids.go
package types

import (
	"strings"

	"github.com/google/uuid"
)

// ChatKey identifies one conversation across frontends, in the form
// "<source>:<rest>", e.g. "telegram:12345:67890".
type ChatKey string

type RunID string
type TaskID string

func NewRunID() RunID {
	return RunID(uuid.New().String())
}

func NewTaskID() TaskID {
	return TaskID(uuid.New().String())
}

func NewChatKey(parts ...string) ChatKey {
	return ChatKey(strings.Join(parts, ":"))
}

// Source returns the frontend prefix of the key, or the whole key when it
// has no separator.
func (k ChatKey) Source() string {
	if i := strings.IndexByte(string(k), ':'); i >= 0 {
		return string(k)[:i]
	}
	return string(k)
}

// internal/types/interfaces.go
package types

import "context"

type ChatStore interface {
	ResolveOrCreate(ctx context.Context, key ChatKey, agentID string) (*ChatIndex, error)
	Get(ctx context.Context, key ChatKey) (*ChatIndex, error)
	List(ctx context.Context) ([]*ChatIndex, error)
	Update(ctx context.Context, index *ChatIndex) error
}

type TranscriptStore interface {
	Append(ctx context.Context, entry *TranscriptEntry) error
	Tail(ctx context.Context, key ChatKey, limit int) ([]*TranscriptEntry, error)
	Count(ctx context.Context, key ChatKey) (int64, error)
}

type TaskStore interface {
	List() ([]*Task, error)
	Get(name string) (*Task, error)
	Add(task *Task) error
	Remove(name string) error
	SetEnabled(name string, enabled bool) error
}

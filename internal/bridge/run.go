package bridge

import (
	"context"
	"time"

	"github.com/user/hutch/internal/types"
)

// RunStatus represents the lifecycle state of a Run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run tracks a single execution of an inbound message against a chat.
type Run struct {
	ID         types.RunID
	ChatKey    types.ChatKey
	Inbound    *types.Inbound
	Status     RunStatus
	CreatedAt  time.Time
	StartedAt  *time.Time
	EndedAt    *time.Time
	Err        error
	Ctx        context.Context
	OnComplete func(reply string)
}

// NewRun creates a Run in the Queued state for the given chat and inbound
// message.
func NewRun(key types.ChatKey, inbound *types.Inbound) *Run {
	return &Run{
		ID:        types.NewRunID(),
		ChatKey:   key,
		Inbound:   inbound,
		Status:    RunStatusQueued,
		CreatedAt: time.Now(),
	}
}

// Package bridge connects frontends to the agent. It queues inbound
// messages per chat, submits each one to the model as a prompt, records the
// exchange in the transcript, and hands the rendered reply back to the
// caller.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/user/hutch/internal/types"
	"github.com/user/hutch/pkg/chat"
)

// Bridge orchestrates inbound messages into runs against the agent.
type Bridge struct {
	model       chat.Model
	agentID     string
	chats       types.ChatStore
	transcripts types.TranscriptStore
	Queue       *Queue
}

// New creates a Bridge wired to the given model and stores with the given
// concurrency limit for simultaneous run processing.
func New(model chat.Model, agentID string, chats types.ChatStore, transcripts types.TranscriptStore, maxConcurrent ...int64) *Bridge {
	var concurrency int64 = 2
	if len(maxConcurrent) > 0 && maxConcurrent[0] > 0 {
		concurrency = maxConcurrent[0]
	}
	b := &Bridge{
		model:       model,
		agentID:     agentID,
		chats:       chats,
		transcripts: transcripts,
		Queue:       NewQueue(concurrency),
	}
	b.Queue.SetProcessor(b.process)
	return b
}

// Start initialises the internal queue.
func (b *Bridge) Start(ctx context.Context) {
	b.Queue.Start(ctx)
}

// Stop stops the queue and waits for outstanding work to finish.
func (b *Bridge) Stop() {
	b.Queue.Stop()
}

// RunOption configures optional behavior on a Run.
type RunOption func(*Run)

// WithOnComplete sets a callback invoked when the run produces a final reply.
func WithOnComplete(fn func(string)) RunOption {
	return func(r *Run) { r.OnComplete = fn }
}

// HandleInbound resolves or creates the chat for the message, wraps it in a
// Run, and enqueues it for processing.
func (b *Bridge) HandleInbound(ctx context.Context, inbound *types.Inbound, opts ...RunOption) error {
	if _, err := b.chats.ResolveOrCreate(ctx, inbound.ChatKey, b.agentID); err != nil {
		return fmt.Errorf("resolve chat: %w", err)
	}
	run := NewRun(inbound.ChatKey, inbound)
	for _, opt := range opts {
		opt(run)
	}
	return b.Queue.Enqueue(run)
}

// process executes one run: the inbound text becomes a one-message user
// prompt, the model reply is recorded to the transcript, and the rendered
// text goes to the run's completion callback.
func (b *Bridge) process(run *Run) error {
	ctx := run.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now()
	run.Status = RunStatusRunning
	run.StartedAt = &now

	userMessage := chat.UIMessage{
		ID:   string(run.ID),
		Role: chat.RoleUser,
		Parts: []chat.UIPart{
			{Type: chat.PartText, Text: run.Inbound.Text},
		},
	}
	if err := b.transcripts.Append(ctx, &types.TranscriptEntry{
		ChatKey: run.ChatKey,
		RunID:   run.ID,
		At:      time.Now(),
		Message: userMessage,
	}); err != nil {
		return b.fail(run, fmt.Errorf("record inbound: %w", err))
	}

	prompt := []chat.PromptMessage{chat.UserText(run.Inbound.Text)}
	reply, err := b.model.Generate(ctx, prompt)
	if err != nil {
		return b.fail(run, fmt.Errorf("generate reply: %w", err))
	}

	var lastSeq int64
	for i := range reply.Messages {
		entry := &types.TranscriptEntry{
			ChatKey: run.ChatKey,
			RunID:   run.ID,
			At:      time.Now(),
			Message: reply.Messages[i],
		}
		if err := b.transcripts.Append(ctx, entry); err != nil {
			return b.fail(run, fmt.Errorf("record reply: %w", err))
		}
		lastSeq = entry.Seq
	}

	if index, err := b.chats.Get(ctx, run.ChatKey); err == nil {
		index.LastRunID = run.ID
		if lastSeq > 0 {
			index.LastSeq = lastSeq
		}
		if err := b.chats.Update(ctx, index); err != nil {
			return b.fail(run, fmt.Errorf("update chat index: %w", err))
		}
	}

	ended := time.Now()
	run.Status = RunStatusComplete
	run.EndedAt = &ended

	if run.OnComplete != nil {
		run.OnComplete(RenderText(reply.Messages))
	}
	return nil
}

func (b *Bridge) fail(run *Run, err error) error {
	ended := time.Now()
	run.Status = RunStatusFailed
	run.EndedAt = &ended
	run.Err = err
	return err
}

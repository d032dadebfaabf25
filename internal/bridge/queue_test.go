package bridge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/hutch/internal/types"
)

func TestQueueConcurrency(t *testing.T) {
	queue := NewQueue(2)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	var running int32
	var maxSeen int32

	queue.SetProcessor(func(run *Run) error {
		current := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&maxSeen)
			if current <= old || atomic.CompareAndSwapInt32(&maxSeen, old, current) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})

	for i := 0; i < 5; i++ {
		run := &Run{
			ID:      types.NewRunID(),
			ChatKey: types.ChatKey(fmt.Sprintf("test:chat-%d", i)),
			Status:  RunStatusQueued,
		}
		if err := queue.Enqueue(run); err != nil {
			t.Fatal(err)
		}
	}

	time.Sleep(500 * time.Millisecond)

	if m := atomic.LoadInt32(&maxSeen); m > 2 {
		t.Errorf("expected max 2 concurrent, saw %d", m)
	}
}

func TestQueueProcessorCalled(t *testing.T) {
	queue := NewQueue(1)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	var processed int32

	queue.SetProcessor(func(run *Run) error {
		atomic.AddInt32(&processed, 1)
		return nil
	})

	run := &Run{
		ID:      types.NewRunID(),
		ChatKey: types.ChatKey("test:chat"),
		Status:  RunStatusQueued,
	}
	if err := queue.Enqueue(run); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&processed) != 1 {
		t.Errorf("expected 1 processed run, got %d", processed)
	}
}

func TestQueueSameChatOrdering(t *testing.T) {
	queue := NewQueue(1)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	queue.SetProcessor(func(run *Run) error {
		mu.Lock()
		order = append(order, run.Inbound.Text)
		n := len(order)
		mu.Unlock()
		if n == 3 {
			close(done)
		}
		return nil
	})

	key := types.ChatKey("test:same-chat")
	for i := 0; i < 3; i++ {
		run := NewRun(key, &types.Inbound{
			Source:  "test",
			ChatKey: key,
			Text:    fmt.Sprintf("msg-%d", i),
		})
		if err := queue.Enqueue(run); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for runs to process")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if want := fmt.Sprintf("msg-%d", i); v != want {
			t.Errorf("expected order[%d] = %s, got %s", i, want, v)
		}
	}
}

func TestQueueFailedRunCompletes(t *testing.T) {
	queue := NewQueue(1)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	queue.SetProcessor(func(run *Run) error {
		return fmt.Errorf("boom")
	})

	replies := make(chan string, 1)
	run := NewRun("test:fail", &types.Inbound{ChatKey: "test:fail", Text: "hi"})
	run.OnComplete = func(reply string) { replies <- reply }

	if err := queue.Enqueue(run); err != nil {
		t.Fatal(err)
	}

	select {
	case reply := <-replies:
		if reply == "" {
			t.Error("expected a fallback reply for failed run")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnComplete not called for failed run")
	}
}

func TestQueueNoProcessor(t *testing.T) {
	queue := NewQueue(1)
	ctx := context.Background()
	queue.Start(ctx)
	defer queue.Stop()

	queue.SetProcessor(nil)

	// Enqueue without a processor -- should not panic
	run := &Run{
		ID:      types.NewRunID(),
		ChatKey: types.ChatKey("test:no-proc"),
		Status:  RunStatusQueued,
	}
	if err := queue.Enqueue(run); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)
}

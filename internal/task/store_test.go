package task

import (
	"path/filepath"
	"testing"

	"github.com/user/hutch/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "tasks.json"))
}

func TestStore_ListEmpty(t *testing.T) {
	store := newTestStore(t)

	tasks, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected empty list, got %d tasks", len(tasks))
	}
}

func TestStore_AddAndList(t *testing.T) {
	store := newTestStore(t)

	task := &types.Task{
		Name:     "daily-report",
		Prompt:   "Generate a daily report",
		Schedule: "0 9 * * *",
		ChatKey:  "telegram:123:456",
		Enabled:  true,
	}

	if err := store.Add(task); err != nil {
		t.Fatal(err)
	}

	tasks, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Name != "daily-report" {
		t.Errorf("expected name daily-report, got %s", tasks[0].Name)
	}
	if tasks[0].ChatKey != "telegram:123:456" {
		t.Errorf("expected chat_key telegram:123:456, got %s", tasks[0].ChatKey)
	}
	if tasks[0].ID == "" {
		t.Error("expected an assigned task id")
	}
	if !tasks[0].Enabled {
		t.Error("expected task to be enabled")
	}
}

func TestStore_AddDuplicate(t *testing.T) {
	store := newTestStore(t)

	task := &types.Task{
		Name:    "my-task",
		Prompt:  "do something",
		ChatKey: "telegram:123:456",
		Enabled: true,
	}

	if err := store.Add(task); err != nil {
		t.Fatal(err)
	}

	dup := &types.Task{Name: "my-task", Prompt: "again", ChatKey: "telegram:123:456"}
	if err := store.Add(dup); err == nil {
		t.Fatal("expected error for duplicate task name")
	}
}

func TestStore_Get(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add(&types.Task{Name: "a", Prompt: "p", ChatKey: "test:1", Enabled: true}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Prompt != "p" {
		t.Errorf("expected prompt p, got %q", got.Prompt)
	}

	if _, err := store.Get("missing"); err == nil {
		t.Fatal("expected error for missing task")
	}
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add(&types.Task{Name: "a", Prompt: "p", ChatKey: "test:1"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove("a"); err != nil {
		t.Fatal(err)
	}

	tasks, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected 0 tasks after remove, got %d", len(tasks))
	}

	if err := store.Remove("a"); err == nil {
		t.Fatal("expected error removing missing task")
	}
}

func TestStore_SetEnabled(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add(&types.Task{Name: "a", Prompt: "p", ChatKey: "test:1", Enabled: true}); err != nil {
		t.Fatal(err)
	}
	if err := store.SetEnabled("a", false); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Enabled {
		t.Error("expected task disabled")
	}
}

// internal/schedule/watch.go
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce window for bursts of file events around an atomic save.
const watchDebounce = 500 * time.Millisecond

// Watch reloads the scheduler whenever the tasks file at path changes. The
// parent directory is watched rather than the file itself so atomic
// temp-and-rename saves are seen. Blocks until ctx ends.
func (s *Scheduler) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	var timer *time.Timer
	reloads := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})

		case <-reloads:
			slog.Info("tasks file changed, reloading scheduler", "path", path)
			if err := s.Reload(); err != nil {
				slog.Error("scheduler reload failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("tasks watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

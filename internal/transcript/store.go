// internal/transcript/store.go
package transcript

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/user/hutch/internal/types"
)

// Store is a JSONL-backed append-only transcript log.
// Entries are stored per-chat in chats/<key>/transcript.jsonl.
type Store struct {
	root  string
	mu    sync.Mutex
	locks map[types.ChatKey]*sync.Mutex
}

// NewStore creates a file-backed transcript store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{
		root:  root,
		locks: make(map[types.ChatKey]*sync.Mutex),
	}
}

// getLock returns the per-chat mutex, creating one if it doesn't exist.
func (s *Store) getLock(key types.ChatKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lock, ok := s.locks[key]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.locks[key] = lock
	return lock
}

// keyDir maps a chat key to its directory name. Path separators are
// replaced so a hostile key cannot escape the root.
func keyDir(key types.ChatKey) string {
	name := string(key)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.ReplaceAll(name, "..", "_")
	return name
}

func (s *Store) transcriptPath(key types.ChatKey) string {
	return filepath.Join(s.root, "chats", keyDir(key), "transcript.jsonl")
}

// count reads the transcript file and counts lines. Caller must hold the chat lock.
func (s *Store) count(key types.ChatKey) (int64, error) {
	f, err := os.Open(s.transcriptPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open transcript file: %w", err)
	}
	defer f.Close()

	var count int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan transcript file: %w", err)
	}
	return count, nil
}

// Append adds an entry to the chat's transcript with an auto-incremented
// sequence number.
func (s *Store) Append(_ context.Context, entry *types.TranscriptEntry) error {
	lock := s.getLock(entry.ChatKey)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Dir(s.transcriptPath(entry.ChatKey))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chat dir: %w", err)
	}

	existing, err := s.count(entry.ChatKey)
	if err != nil {
		return err
	}
	entry.Seq = existing + 1

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	f, err := os.OpenFile(s.transcriptPath(entry.ChatKey), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript file: %w", err)
	}
	defer f.Close()

	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}

	return nil
}

// Tail returns the last N entries for the given chat.
func (s *Store) Tail(_ context.Context, key types.ChatKey, limit int) ([]*types.TranscriptEntry, error) {
	lock := s.getLock(key)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.Open(s.transcriptPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open transcript file: %w", err)
	}
	defer f.Close()

	var entries []*types.TranscriptEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var entry types.TranscriptEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("unmarshal entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript file: %w", err)
	}

	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	return entries, nil
}

// Count returns the number of entries for the given chat.
func (s *Store) Count(_ context.Context, key types.ChatKey) (int64, error) {
	lock := s.getLock(key)
	lock.Lock()
	defer lock.Unlock()

	return s.count(key)
}

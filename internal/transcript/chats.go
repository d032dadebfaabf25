// internal/transcript/chats.go
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/hutch/internal/types"
)

// ChatStore is a JSON-file-backed index of known chats.
// The index lives at chats/chats.json next to the per-chat transcripts.
type ChatStore struct {
	root string
	mu   sync.RWMutex
}

// NewChatStore creates a file-backed ChatStore rooted at the given directory.
func NewChatStore(root string) *ChatStore {
	return &ChatStore{root: root}
}

func (s *ChatStore) indexPath() string {
	return filepath.Join(s.root, "chats", "chats.json")
}

func (s *ChatStore) chatsDir() string {
	return filepath.Join(s.root, "chats")
}

// loadIndex reads chats.json and returns a map keyed by ChatKey.
func (s *ChatStore) loadIndex() (map[types.ChatKey]*types.ChatIndex, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[types.ChatKey]*types.ChatIndex), nil
		}
		return nil, fmt.Errorf("read chat index: %w", err)
	}

	var chats []*types.ChatIndex
	if err := json.Unmarshal(data, &chats); err != nil {
		return nil, fmt.Errorf("unmarshal chat index: %w", err)
	}

	index := make(map[types.ChatKey]*types.ChatIndex, len(chats))
	for _, c := range chats {
		index[c.ChatKey] = c
	}
	return index, nil
}

// saveIndex converts the map to a slice, marshals with indentation, and
// writes atomically.
func (s *ChatStore) saveIndex(index map[types.ChatKey]*types.ChatIndex) error {
	chats := make([]*types.ChatIndex, 0, len(index))
	for _, c := range index {
		chats = append(chats, c)
	}

	data, err := json.MarshalIndent(chats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chat index: %w", err)
	}

	if err := os.MkdirAll(s.chatsDir(), 0o755); err != nil {
		return fmt.Errorf("create chats dir: %w", err)
	}

	tmp := s.indexPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp index: %w", err)
	}
	if err := os.Rename(tmp, s.indexPath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp index: %w", err)
	}
	return nil
}

// ResolveOrCreate returns the index entry for the given key, creating it if
// needed.
func (s *ChatStore) ResolveOrCreate(_ context.Context, key types.ChatKey, agentID string) (*types.ChatIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	if existing, ok := index[key]; ok {
		return existing, nil
	}

	now := time.Now()
	entry := &types.ChatIndex{
		ChatKey:   key,
		AgentID:   agentID,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	index[key] = entry

	if err := s.saveIndex(index); err != nil {
		return nil, err
	}
	return entry, nil
}

// Get returns the chat with the given key.
func (s *ChatStore) Get(_ context.Context, key types.ChatKey) (*types.ChatIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	if c, ok := index[key]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("chat not found: %s", key)
}

// List returns all known chats.
func (s *ChatStore) List(_ context.Context) ([]*types.ChatIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	chats := make([]*types.ChatIndex, 0, len(index))
	for _, c := range index {
		chats = append(chats, c)
	}
	return chats, nil
}

// Delete removes the chat from the index along with its transcript
// directory. Deleting an unknown key is an error.
func (s *ChatStore) Delete(_ context.Context, key types.ChatKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return err
	}

	if _, ok := index[key]; !ok {
		return fmt.Errorf("chat not found: %s", key)
	}
	delete(index, key)

	if err := s.saveIndex(index); err != nil {
		return err
	}

	return os.RemoveAll(filepath.Join(s.chatsDir(), keyDir(key)))
}

// Update persists changes to the given chat, setting UpdatedAt to now.
func (s *ChatStore) Update(_ context.Context, entry *types.ChatIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return err
	}

	if _, ok := index[entry.ChatKey]; !ok {
		return fmt.Errorf("chat not found: %s", entry.ChatKey)
	}

	entry.UpdatedAt = time.Now()
	index[entry.ChatKey] = entry

	return s.saveIndex(index)
}

// internal/delivery/registry.go

// Package delivery routes rendered agent replies back to the frontend that
// owns the chat, selected by the chat key's source prefix.
package delivery

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/hutch/internal/types"
)

// Handler delivers a rendered reply to the chat identified by key.
type Handler func(key types.ChatKey, reply string) error

// Registry routes replies to the appropriate delivery handler based on chat
// key prefix (e.g. "telegram:", "http:").
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty delivery registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler for chat keys starting with prefix.
func (r *Registry) Register(prefix string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[prefix] = handler
}

// Deliver finds the handler matching the chat key prefix and calls it.
// Returns an error if no handler is registered for the prefix.
func (r *Registry) Deliver(key types.ChatKey, reply string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for prefix, handler := range r.handlers {
		if strings.HasPrefix(string(key), prefix) {
			return handler(key, reply)
		}
	}
	return fmt.Errorf("no delivery handler for chat key: %s", key)
}

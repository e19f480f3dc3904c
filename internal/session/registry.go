// Package session owns the chat sessions of individual users. A session is
// created on first use, kept while the user is active, and dropped after an
// idle period or when the registry is full.
package session

import (
	"sync"
	"time"

	"autism-diet-planner/internal/llm"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Registry maps session IDs to chat sessions.
type Registry struct {
	mu       sync.Mutex
	provider llm.ChatProvider
	chats    *expirable.LRU[string, llm.ChatSession]
}

// NewRegistry creates a registry holding at most size sessions, each expiring
// after ttl without use.
func NewRegistry(provider llm.ChatProvider, size int, ttl time.Duration) *Registry {
	return &Registry{
		provider: provider,
		chats:    expirable.NewLRU[string, llm.ChatSession](size, nil, ttl),
	}
}

// NewID returns a fresh random session ID.
func NewID() string {
	return uuid.NewString()
}

// Get returns the chat for id, starting one if needed. Every call restarts the
// idle timer.
func (r *Registry) Get(id string) llm.ChatSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats.Get(id)
	if !ok {
		chat = r.provider.NewSession()
	}
	r.chats.Add(id, chat)
	return chat
}

// Reset clears the history of the chat for id. It reports whether a chat existed.
// The chat is reset outside the registry lock, since it waits for any message
// the session is still handling.
func (r *Registry) Reset(id string) bool {
	r.mu.Lock()
	chat, ok := r.chats.Peek(id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	chat.Reset()
	return true
}

// Remove forgets the chat for id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats.Remove(id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.chats.Len()
}

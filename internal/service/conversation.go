package service

import (
	"sync"

	"github.com/liliang-cn/qualia/internal/domain"
)

// Conversation is the in-memory conversation store: an append-only message
// list plus the ephemeral thinking steps and citations of the current query.
type Conversation struct {
	mu       sync.RWMutex
	messages []domain.Message
	thinking []domain.ThinkingStep
	results  []domain.SearchResult
	loading  bool
}

// NewConversation creates an empty conversation
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds messages at the end
func (c *Conversation) Append(messages ...domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, messages...)
}

// Seed installs history loaded from storage. It only applies to a
// conversation that has no messages yet and reports whether it did.
func (c *Conversation) Seed(messages []domain.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) > 0 || len(messages) == 0 {
		return false
	}
	c.messages = append([]domain.Message(nil), messages...)
	return true
}

// Begin sets the loading flag and clears ephemeral state. It returns false,
// changing nothing, when a query is already in flight.
func (c *Conversation) Begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return false
	}
	c.loading = true
	c.thinking = nil
	c.results = nil
	return true
}

// End clears the loading flag
func (c *Conversation) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
}

// Loading reports whether a query is in flight
func (c *Conversation) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// AddThinking appends one thinking step
func (c *Conversation) AddThinking(step domain.ThinkingStep) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thinking = append(c.thinking, step)
}

// SetResults replaces the citation list
func (c *Conversation) SetResults(results []domain.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append([]domain.SearchResult(nil), results...)
}

// Messages returns a copy of the message list
func (c *Conversation) Messages() []domain.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Message{}, c.messages...)
}

// Snapshot returns a copy of the whole state
func (c *Conversation) Snapshot() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.Snapshot{
		Messages:      append([]domain.Message{}, c.messages...),
		Thinking:      append([]domain.ThinkingStep{}, c.thinking...),
		SearchResults: append([]domain.SearchResult{}, c.results...),
		Loading:       c.loading,
	}
}

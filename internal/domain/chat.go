package domain

import "time"

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message represents a chat message. Messages are immutable once created.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// StepType classifies a thinking step
type StepType string

const (
	StepThinking StepType = "thinking"
	StepSearch   StepType = "search"
	StepResult   StepType = "result"
)

// ThinkingStep is one entry of the simulated reasoning sequence shown while a
// query is pending. Never persisted.
type ThinkingStep struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Type      StepType  `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// SearchResult represents a citation card
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchResponse is what the search adapter hands back for every query
type SearchResponse struct {
	Answer        string         `json:"answer"`
	Thinking      []ThinkingStep `json:"thinking"`
	SearchResults []SearchResult `json:"search_results"`
	Outcome       Outcome        `json:"outcome"`
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse is the response from a chat message
type ChatResponse struct {
	UserMessage      Message        `json:"user_message"`
	AssistantMessage Message        `json:"assistant_message"`
	Thinking         []ThinkingStep `json:"thinking"`
	SearchResults    []SearchResult `json:"search_results"`
	Outcome          *Outcome       `json:"outcome,omitempty"`
}

// SearchRequest is the request for a raw adapter call
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// Snapshot is a point-in-time copy of the conversation state
type Snapshot struct {
	Messages      []Message      `json:"messages"`
	Thinking      []ThinkingStep `json:"thinking"`
	SearchResults []SearchResult `json:"search_results"`
	Loading       bool           `json:"loading"`
}

// Stream chunk types
const (
	ChunkMessage  = "message"
	ChunkThinking = "thinking"
	ChunkSources  = "sources"
	ChunkError    = "error"
	ChunkDone     = "done"
)

// StreamChunk represents a chunk in SSE stream
type StreamChunk struct {
	Type    string         `json:"type"`
	Content string         `json:"content,omitempty"`
	Message *Message       `json:"message,omitempty"`
	Step    *ThinkingStep  `json:"step,omitempty"`
	Sources []SearchResult `json:"sources,omitempty"`
}

// Stats represents conversation statistics
type Stats struct {
	Messages          int  `json:"messages"`
	UserMessages      int  `json:"user_messages"`
	AssistantMessages int  `json:"assistant_messages"`
	PersistedMessages int  `json:"persisted_messages"`
	PersistenceActive bool `json:"persistence_active"`
	Loading           bool `json:"loading"`
}

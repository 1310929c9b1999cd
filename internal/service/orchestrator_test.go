package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/liliang-cn/qualia/internal/domain"
	"github.com/liliang-cn/qualia/internal/thinking"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	started chan struct{}
	release chan struct{}
	resp    func(query string) *domain.SearchResponse
}

func (f *fakeSearcher) Search(_ context.Context, query string) *domain.SearchResponse {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.resp != nil {
		return f.resp(query)
	}
	return &domain.SearchResponse{
		Answer: "answer for " + query,
		SearchResults: []domain.SearchResult{
			{Title: "Qualia", URL: "https://qualia.solutions", Snippet: "about " + query},
		},
		Outcome: domain.Outcome{Source: domain.SourceLive},
	}
}

type fakeStore struct {
	mu       sync.Mutex
	saved    []domain.Message
	loaded   []domain.Message
	loadErr  error
	saveErr  error
	countErr error
}

func (f *fakeStore) Load(context.Context) ([]domain.Message, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.loaded, nil
}

func (f *fakeStore) Save(_ context.Context, msg domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, msg)
	return nil
}

func (f *fakeStore) Count(context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved), nil
}

func (f *fakeStore) savedMessages() []domain.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Message(nil), f.saved...)
}

func newTestOrchestrator(t *testing.T, searcher Searcher, store HistoryStore, thinkingEnabled bool) *Orchestrator {
	t.Helper()
	logger := zaptest.NewLogger(t)
	var history *HistoryService
	if store != nil {
		history = NewHistoryService(store, logger)
	}
	o, err := NewOrchestrator(
		OrchestratorConfig{ThinkingEnabled: thinkingEnabled, Locale: thinking.LocaleGreek},
		NewConversation(),
		searcher,
		thinking.NewSequencer(thinking.WithSpeed(0)),
		history,
		logger,
	)
	require.NoError(t, err)

	base := time.Date(2025, 1, 19, 10, 0, 0, 0, time.UTC)
	var n int
	o.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	o.newID = func() string { return fmt.Sprintf("msg-%d", n) }
	return o
}

func TestNewOrchestrator_Validates(t *testing.T) {
	_, err := NewOrchestrator(OrchestratorConfig{}, nil, &fakeSearcher{}, nil, nil, nil)
	require.Error(t, err)

	_, err = NewOrchestrator(OrchestratorConfig{}, NewConversation(), nil, nil, nil, nil)
	require.Error(t, err)

	_, err = NewOrchestrator(OrchestratorConfig{ThinkingEnabled: true}, NewConversation(), &fakeSearcher{}, nil, nil, nil)
	require.Error(t, err)

	o, err := NewOrchestrator(OrchestratorConfig{}, NewConversation(), &fakeSearcher{}, nil, nil, nil)
	require.NoError(t, err)
	require.False(t, o.History().Enabled())
}

func TestSubmit_AppendsUserThenAssistant(t *testing.T) {
	searcher := &fakeSearcher{}
	store := &fakeStore{}
	o := newTestOrchestrator(t, searcher, store, true)

	turn, err := o.Submit(context.Background(), "what is qualia", nil)
	require.NoError(t, err)

	messages := o.Conversation().Messages()
	require.Len(t, messages, 2)
	require.Equal(t, domain.RoleUser, messages[0].Role)
	require.Equal(t, "what is qualia", messages[0].Content)
	require.Equal(t, domain.RoleAssistant, messages[1].Role)
	require.Equal(t, "answer for what is qualia", messages[1].Content)
	require.True(t, messages[0].Timestamp.Before(messages[1].Timestamp))
	require.NotEqual(t, messages[0].ID, messages[1].ID)

	require.Equal(t, []string{"what is qualia"}, searcher.queries)
	require.Len(t, turn.Thinking, 6)
	require.Equal(t, domain.SourceLive, turn.Outcome.Source)

	snap := o.Conversation().Snapshot()
	require.False(t, snap.Loading)
	require.Len(t, snap.Thinking, 6)
	require.Len(t, snap.SearchResults, 1)

	require.Equal(t, messages, store.savedMessages())
}

func TestSubmit_BlankInputChangesNothing(t *testing.T) {
	searcher := &fakeSearcher{}
	store := &fakeStore{}
	o := newTestOrchestrator(t, searcher, store, true)

	for _, input := range []string{"", "   ", "\t\n"} {
		var events []domain.StreamChunk
		turn, err := o.Submit(context.Background(), input, func(c domain.StreamChunk) {
			events = append(events, c)
		})
		require.ErrorIs(t, err, domain.ErrBlankInput)
		require.Nil(t, turn)
		require.Empty(t, events)
	}

	require.Empty(t, o.Conversation().Messages())
	require.False(t, o.Conversation().Loading())
	require.Empty(t, searcher.queries)
	require.Empty(t, store.savedMessages())
}

func TestSubmit_KeepsInputVerbatim(t *testing.T) {
	o := newTestOrchestrator(t, &fakeSearcher{}, nil, false)

	_, err := o.Submit(context.Background(), "  spaced out  ", nil)
	require.NoError(t, err)
	require.Equal(t, "  spaced out  ", o.Conversation().Messages()[0].Content)
}

func TestSubmit_RejectsWhileInFlight(t *testing.T) {
	searcher := &fakeSearcher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	o := newTestOrchestrator(t, searcher, nil, false)

	done := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background(), "hello", nil)
		done <- err
	}()
	<-searcher.started

	_, err := o.Submit(context.Background(), "hello", nil)
	require.ErrorIs(t, err, domain.ErrBusy)

	snap := o.Conversation().Snapshot()
	require.True(t, snap.Loading)
	require.Len(t, snap.Messages, 1)
	require.Equal(t, domain.RoleUser, snap.Messages[0].Role)

	close(searcher.release)
	require.NoError(t, <-done)

	messages := o.Conversation().Messages()
	require.Len(t, messages, 2)
	require.Equal(t, domain.RoleAssistant, messages[1].Role)
	require.False(t, o.Conversation().Loading())
	require.Len(t, searcher.queries, 1)
}

func TestSubmit_SaveFailureDoesNotBlockTurn(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("relation chat_history does not exist")}
	o := newTestOrchestrator(t, &fakeSearcher{}, store, false)

	turn, err := o.Submit(context.Background(), "hello", nil)
	require.NoError(t, err)
	require.Equal(t, "answer for hello", turn.AssistantMessage.Content)
	require.Len(t, o.Conversation().Messages(), 2)
	require.False(t, o.Conversation().Loading())
}

func TestSubmit_SearchPanicBecomesErrorReply(t *testing.T) {
	searcher := &fakeSearcher{resp: func(string) *domain.SearchResponse { panic("boom") }}
	store := &fakeStore{}
	o := newTestOrchestrator(t, searcher, store, false)

	var events []domain.StreamChunk
	turn, err := o.Submit(context.Background(), "hello", func(c domain.StreamChunk) {
		events = append(events, c)
	})
	require.NoError(t, err)
	require.Nil(t, turn.Outcome)
	require.Equal(t, thinking.ErrorReply(thinking.LocaleGreek), turn.AssistantMessage.Content)

	messages := o.Conversation().Messages()
	require.Len(t, messages, 2)
	require.Equal(t, thinking.ErrorReply(thinking.LocaleGreek), messages[1].Content)
	require.Len(t, store.savedMessages(), 2)
	require.False(t, o.Conversation().Loading())

	var types []string
	for _, e := range events {
		types = append(types, e.Type)
	}
	require.Equal(t, []string{domain.ChunkMessage, domain.ChunkError, domain.ChunkMessage, domain.ChunkDone}, types)
}

func TestSubmit_NilResponseBecomesErrorReply(t *testing.T) {
	searcher := &fakeSearcher{resp: func(string) *domain.SearchResponse { return nil }}
	o := newTestOrchestrator(t, searcher, nil, false)

	turn, err := o.Submit(context.Background(), "hello", nil)
	require.NoError(t, err)
	require.Equal(t, thinking.ErrorReply(thinking.LocaleGreek), turn.AssistantMessage.Content)
	require.Empty(t, o.Conversation().Snapshot().SearchResults)
}

func TestSubmit_EventOrder(t *testing.T) {
	o := newTestOrchestrator(t, &fakeSearcher{}, nil, true)

	var events []domain.StreamChunk
	_, err := o.Submit(context.Background(), "hello", func(c domain.StreamChunk) {
		events = append(events, c)
	})
	require.NoError(t, err)
	require.Len(t, events, 10)

	require.Equal(t, domain.ChunkMessage, events[0].Type)
	require.Equal(t, domain.RoleUser, events[0].Message.Role)
	for i := 1; i <= 6; i++ {
		require.Equal(t, domain.ChunkThinking, events[i].Type)
		require.NotNil(t, events[i].Step)
	}
	require.Equal(t, domain.ChunkMessage, events[7].Type)
	require.Equal(t, domain.RoleAssistant, events[7].Message.Role)
	require.Equal(t, domain.ChunkSources, events[8].Type)
	require.Len(t, events[8].Sources, 1)
	require.Equal(t, domain.ChunkDone, events[9].Type)
}

func TestSubmit_NotCancelledByContext(t *testing.T) {
	o := newTestOrchestrator(t, &fakeSearcher{}, nil, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	turn, err := o.Submit(ctx, "hello", nil)
	require.NoError(t, err)
	require.Len(t, turn.Thinking, 6)
	require.Equal(t, "answer for hello", turn.AssistantMessage.Content)
}

func TestSubmit_ClearsEphemeralStateOnNextTurn(t *testing.T) {
	calls := 0
	searcher := &fakeSearcher{resp: func(q string) *domain.SearchResponse {
		calls++
		if calls == 2 {
			return nil
		}
		return &domain.SearchResponse{
			Answer:        "ok",
			SearchResults: []domain.SearchResult{{Title: "a", URL: "https://a.example", Snippet: "a"}},
		}
	}}
	o := newTestOrchestrator(t, searcher, nil, false)

	_, err := o.Submit(context.Background(), "first", nil)
	require.NoError(t, err)
	require.Len(t, o.Conversation().Snapshot().SearchResults, 1)

	_, err = o.Submit(context.Background(), "second", nil)
	require.NoError(t, err)
	require.Empty(t, o.Conversation().Snapshot().SearchResults)
	require.Len(t, o.Conversation().Messages(), 4)
}

func TestRehydrate(t *testing.T) {
	ts := time.Date(2025, 1, 19, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{loaded: []domain.Message{
		{ID: "a", Role: domain.RoleUser, Content: "hi", Timestamp: ts},
		{ID: "b", Role: domain.RoleAssistant, Content: "hello", Timestamp: ts.Add(time.Second)},
	}}
	o := newTestOrchestrator(t, &fakeSearcher{}, store, false)

	require.Equal(t, 2, o.Rehydrate(context.Background()))
	require.Equal(t, store.loaded, o.Conversation().Messages())

	// A second rehydrate never overwrites a live conversation.
	require.Equal(t, 0, o.Rehydrate(context.Background()))
	require.Len(t, o.Conversation().Messages(), 2)
}

func TestRehydrate_LoadFailureStartsEmpty(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("connection refused")}
	o := newTestOrchestrator(t, &fakeSearcher{}, store, false)

	require.Equal(t, 0, o.Rehydrate(context.Background()))
	require.Empty(t, o.Conversation().Messages())
}

package service

import (
	"context"
	"strings"

	"github.com/liliang-cn/qualia/internal/domain"
)

// WidgetService backs the public chat API used by the browser UI
type WidgetService struct {
	widget       domain.WidgetConfig
	orchestrator *Orchestrator
	searcher     Searcher
}

// NewWidgetService creates a new widget service
func NewWidgetService(widget domain.WidgetConfig, orchestrator *Orchestrator, searcher Searcher) *WidgetService {
	return &WidgetService{
		widget:       widget,
		orchestrator: orchestrator,
		searcher:     searcher,
	}
}

// GetWidgetConfig returns the widget configuration
func (s *WidgetService) GetWidgetConfig() domain.WidgetConfig {
	cfg := s.widget
	cfg.Suggestions = append([]string(nil), s.widget.Suggestions...)
	return cfg
}

// Snapshot returns the current conversation state
func (s *WidgetService) Snapshot() domain.Snapshot {
	return s.orchestrator.Conversation().Snapshot()
}

// Chat runs one turn and returns its result
func (s *WidgetService) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	turn, err := s.orchestrator.Submit(ctx, req.Message, nil)
	if err != nil {
		return nil, err
	}
	return &domain.ChatResponse{
		UserMessage:      turn.UserMessage,
		AssistantMessage: turn.AssistantMessage,
		Thinking:         turn.Thinking,
		SearchResults:    turn.SearchResults,
		Outcome:          turn.Outcome,
	}, nil
}

// ChatStream runs one turn in the background and streams its events. Admission
// errors (blank input, busy) are returned before any chunk is produced.
func (s *WidgetService) ChatStream(ctx context.Context, req *domain.ChatRequest) (<-chan domain.StreamChunk, error) {
	ch := make(chan domain.StreamChunk, 100)
	started := make(chan error, 1)
	go func() {
		defer close(ch)
		accepted := false
		_, err := s.orchestrator.Submit(ctx, req.Message, func(chunk domain.StreamChunk) {
			if !accepted {
				accepted = true
				started <- nil
			}
			select {
			case ch <- chunk:
			case <-ctx.Done():
			}
		})
		if err != nil && !accepted {
			started <- err
		}
	}()

	if err := <-started; err != nil {
		return nil, err
	}
	return ch, nil
}

// Search calls the search adapter directly, bypassing the conversation
func (s *WidgetService) Search(ctx context.Context, query string) (*domain.SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrBlankInput
	}
	return s.searcher.Search(ctx, query), nil
}

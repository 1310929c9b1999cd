package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/liliang-cn/qualia/internal/domain"
	"github.com/liliang-cn/qualia/internal/metrics"
	"github.com/liliang-cn/qualia/internal/thinking"
)

// Searcher answers a query. Implementations must not fail; every problem is
// reported through the response outcome.
type Searcher interface {
	Search(ctx context.Context, query string) *domain.SearchResponse
}

// StepPlayer plays a thinking script
type StepPlayer interface {
	Play(ctx context.Context, steps []thinking.Step, emit func(domain.ThinkingStep)) ([]domain.ThinkingStep, error)
}

// Turn is the result of one submitted query
type Turn struct {
	UserMessage      domain.Message
	AssistantMessage domain.Message
	Thinking         []domain.ThinkingStep
	SearchResults    []domain.SearchResult
	Outcome          *domain.Outcome
}

// OrchestratorConfig holds the orchestrator settings
type OrchestratorConfig struct {
	ThinkingEnabled bool
	Locale          string
}

// Orchestrator runs user turns against the conversation: append the user
// message, play the thinking script, call the search adapter, append the
// reply. Persistence happens alongside but never gates the flow.
type Orchestrator struct {
	cfg      OrchestratorConfig
	conv     *Conversation
	searcher Searcher
	player   StepPlayer
	history  *HistoryService
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	cfg OrchestratorConfig,
	conv *Conversation,
	searcher Searcher,
	player StepPlayer,
	history *HistoryService,
	logger *zap.Logger,
) (*Orchestrator, error) {
	if conv == nil {
		return nil, fmt.Errorf("service: conversation must not be nil")
	}
	if searcher == nil {
		return nil, fmt.Errorf("service: searcher must not be nil")
	}
	if player == nil && cfg.ThinkingEnabled {
		return nil, fmt.Errorf("service: step player must not be nil when thinking is enabled")
	}
	if history == nil {
		history = NewHistoryService(nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:      cfg,
		conv:     conv,
		searcher: searcher,
		player:   player,
		history:  history,
		logger:   logger.Named("orchestrator"),
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}

// Conversation returns the conversation this orchestrator mutates
func (o *Orchestrator) Conversation() *Conversation {
	return o.conv
}

// History returns the persistence adapter
func (o *Orchestrator) History() *HistoryService {
	return o.history
}

// Rehydrate loads persisted history into an empty conversation and returns
// the number of messages restored.
func (o *Orchestrator) Rehydrate(ctx context.Context) int {
	messages := o.history.Load(ctx)
	if !o.conv.Seed(messages) {
		return 0
	}
	o.logger.Info("Restored chat history", zap.Int("messages", len(messages)))
	return len(messages)
}

// Submit runs one turn for input. Blank input returns domain.ErrBlankInput and
// a submission while another is in flight returns domain.ErrBusy; neither
// changes the conversation. onEvent, if set, receives every state change in
// order and a final done chunk.
//
// The turn is not cancelled with ctx: once accepted it always ends with an
// assistant message.
func (o *Orchestrator) Submit(ctx context.Context, input string, onEvent func(domain.StreamChunk)) (*Turn, error) {
	if strings.TrimSpace(input) == "" {
		metrics.ObserveTurn("blank")
		return nil, domain.ErrBlankInput
	}
	if !o.conv.Begin() {
		metrics.ObserveTurn("busy")
		return nil, domain.ErrBusy
	}

	emit := func(chunk domain.StreamChunk) {
		if onEvent != nil {
			onEvent(chunk)
		}
	}
	defer func() {
		o.conv.End()
		emit(domain.StreamChunk{Type: domain.ChunkDone})
	}()

	ctx = context.WithoutCancel(ctx)
	turn := &Turn{}

	turn.UserMessage = o.newMessage(domain.RoleUser, input)
	o.conv.Append(turn.UserMessage)
	emit(domain.StreamChunk{Type: domain.ChunkMessage, Message: &turn.UserMessage})
	o.history.Save(ctx, turn.UserMessage)

	if o.cfg.ThinkingEnabled {
		record := func(step domain.ThinkingStep) {
			o.conv.AddThinking(step)
			emit(domain.StreamChunk{Type: domain.ChunkThinking, Step: &step})
		}
		steps, err := o.player.Play(ctx, thinking.Script(o.cfg.Locale, input), record)
		if err != nil {
			o.logger.Warn("Thinking sequence interrupted", zap.Error(err))
		}
		turn.Thinking = steps
	}

	resp, err := o.search(ctx, input)
	if err != nil {
		o.logger.Error("Error processing query", zap.Error(err))
		metrics.ObserveTurn("failed")

		turn.AssistantMessage = o.newMessage(domain.RoleAssistant, thinking.ErrorReply(o.cfg.Locale))
		o.conv.Append(turn.AssistantMessage)
		emit(domain.StreamChunk{Type: domain.ChunkError, Content: err.Error()})
		emit(domain.StreamChunk{Type: domain.ChunkMessage, Message: &turn.AssistantMessage})
		o.history.Save(ctx, turn.AssistantMessage)
		return turn, nil
	}

	turn.AssistantMessage = o.newMessage(domain.RoleAssistant, resp.Answer)
	turn.SearchResults = resp.SearchResults
	outcome := resp.Outcome
	turn.Outcome = &outcome

	o.conv.Append(turn.AssistantMessage)
	o.conv.SetResults(resp.SearchResults)
	emit(domain.StreamChunk{Type: domain.ChunkMessage, Message: &turn.AssistantMessage})
	emit(domain.StreamChunk{Type: domain.ChunkSources, Sources: resp.SearchResults})
	o.history.Save(ctx, turn.AssistantMessage)

	metrics.ObserveTurn("completed")
	return turn, nil
}

// search calls the adapter, turning a panic or a nil response into an error.
func (o *Orchestrator) search(ctx context.Context, query string) (resp *domain.SearchResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("search adapter panicked: %v", r)
		}
	}()
	resp = o.searcher.Search(ctx, query)
	if resp == nil {
		return nil, fmt.Errorf("search adapter returned no response")
	}
	return resp, nil
}

func (o *Orchestrator) newMessage(role domain.Role, content string) domain.Message {
	return domain.Message{
		ID:        o.newID(),
		Role:      role,
		Content:   content,
		Timestamp: o.now().UTC().Truncate(time.Millisecond),
	}
}

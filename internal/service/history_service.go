package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/liliang-cn/qualia/internal/domain"
	"github.com/liliang-cn/qualia/internal/metrics"
)

// HistoryStore is a chat history backend
type HistoryStore interface {
	Load(ctx context.Context) ([]domain.Message, error)
	Save(ctx context.Context, message domain.Message) error
}

// historyCounter is implemented by stores that can count rows cheaply
type historyCounter interface {
	Count(ctx context.Context) (int, error)
}

// HistoryService is the best-effort persistence adapter: failures are logged
// and counted, never returned. A nil store disables persistence.
type HistoryService struct {
	store  HistoryStore
	logger *zap.Logger
}

// NewHistoryService creates a history service over store, which may be nil
func NewHistoryService(store HistoryStore, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{store: store, logger: logger.Named("history")}
}

// Enabled reports whether a backend is configured
func (s *HistoryService) Enabled() bool {
	return s.store != nil
}

// Load returns persisted messages ordered by timestamp, or nothing on failure
func (s *HistoryService) Load(ctx context.Context) []domain.Message {
	if s.store == nil {
		return nil
	}
	messages, err := s.store.Load(ctx)
	if err != nil {
		metrics.ObserveHistoryFailure("load")
		s.logger.Error("Failed to load chat history", zap.Error(err))
		return nil
	}
	return messages
}

// Save persists one message; a failure is logged and swallowed
func (s *HistoryService) Save(ctx context.Context, message domain.Message) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, message); err != nil {
		metrics.ObserveHistoryFailure("save")
		s.logger.Error("Failed to save message",
			zap.String("id", message.ID),
			zap.String("role", string(message.Role)),
			zap.Error(err),
		)
	}
}

// Count returns the number of persisted messages when the backend supports it
func (s *HistoryService) Count(ctx context.Context) (int, bool) {
	counter, ok := s.store.(historyCounter)
	if !ok {
		return 0, false
	}
	n, err := counter.Count(ctx)
	if err != nil {
		s.logger.Warn("Failed to count chat history", zap.Error(err))
		return 0, false
	}
	return n, true
}

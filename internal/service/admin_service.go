package service

import (
	"context"

	"github.com/liliang-cn/qualia/internal/domain"
)

// AdminService exposes conversation statistics and the persisted history
type AdminService struct {
	orchestrator *Orchestrator
}

// NewAdminService creates a new admin service
func NewAdminService(orchestrator *Orchestrator) *AdminService {
	return &AdminService{orchestrator: orchestrator}
}

// GetStats counts in-memory and persisted messages
func (s *AdminService) GetStats(ctx context.Context) *domain.Stats {
	snap := s.orchestrator.Conversation().Snapshot()
	stats := &domain.Stats{
		Messages:          len(snap.Messages),
		Loading:           snap.Loading,
		PersistenceActive: s.orchestrator.History().Enabled(),
	}
	for _, m := range snap.Messages {
		switch m.Role {
		case domain.RoleUser:
			stats.UserMessages++
		case domain.RoleAssistant:
			stats.AssistantMessages++
		}
	}
	if n, ok := s.orchestrator.History().Count(ctx); ok {
		stats.PersistedMessages = n
	}
	return stats
}

// PersistedHistory reads the history straight from the backend
func (s *AdminService) PersistedHistory(ctx context.Context) []domain.Message {
	messages := s.orchestrator.History().Load(ctx)
	if messages == nil {
		return []domain.Message{}
	}
	return messages
}

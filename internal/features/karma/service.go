// Package karma — service.go содержит бизнес-логику кармы.
package karma

import (
	"context"

	"github.com/google/uuid"
)

const (
	DefaultLeadersLimit = 20
	MaxLeadersLimit     = 100
)

// Store — то, что сервису нужно от репозитория.
type Store interface {
	GetKarma(ctx context.Context, userID uuid.UUID) (int, error)
	Leaders(ctx context.Context, limit int) ([]Leader, error)
}

// Service отдаёт карму и таблицу лидеров.
type Service struct {
	repo Store
}

// NewService создаёт сервис кармы.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Leaders возвращает топ по карме. limit приводится к [1, MaxLeadersLimit].
func (s *Service) Leaders(ctx context.Context, limit int) ([]Leader, error) {
	if limit < 1 {
		limit = DefaultLeadersLimit
	}
	if limit > MaxLeadersLimit {
		limit = MaxLeadersLimit
	}
	leaders, err := s.repo.Leaders(ctx, limit)
	if err != nil {
		return nil, err
	}
	if leaders == nil {
		leaders = []Leader{}
	}
	return leaders, nil
}

// GetKarma возвращает карму пользователя.
func (s *Service) GetKarma(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.GetKarma(ctx, userID)
}

// Package comments — service.go содержит бизнес-логику комментариев.
package comments

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/metrics"
)

// Store — то, что сервису нужно от репозитория.
type Store interface {
	Create(ctx context.Context, c *Comment) error
	StoryExists(ctx context.Context, storyID uuid.UUID) (bool, error)
	ParentStory(ctx context.Context, parentID uuid.UUID) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByStory(ctx context.Context, storyID uuid.UUID) ([]Comment, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]Comment, error)
}

type Service struct {
	repo Store
}

func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Create публикует комментарий от authorID.
//
// Проверки:
//  1. storyId и content обязательны
//  2. История существует
//  3. Родитель (если указан) — комментарий этой же истории
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, in CreateInput) (*Comment, error) {
	content := strings.TrimSpace(in.Content)
	rawStory := strings.TrimSpace(in.StoryID)
	if rawStory == "" || content == "" {
		return nil, common.ErrContentRequired
	}

	storyID, err := uuid.Parse(rawStory)
	if err != nil {
		return nil, common.ErrInvalidStoryID
	}

	exists, err := s.repo.StoryExists(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.ErrStoryNotFound
	}

	c := &Comment{
		Content:  content,
		AuthorID: authorID,
		StoryID:  storyID,
	}

	if raw := strings.TrimSpace(in.ParentID); raw != "" {
		parentID, err := uuid.Parse(raw)
		if err != nil {
			return nil, common.ErrParentNotFound
		}
		parentStory, err := s.repo.ParentStory(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parentStory != storyID {
			return nil, common.ErrParentNotFound
		}
		c.ParentID = &parentID
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	metrics.CommentsCreated.Inc()
	log.WithFields(log.Fields{
		"comment_id": c.ID,
		"story_id":   storyID,
		"author_id":  authorID,
	}).Info("Новый комментарий")
	return c, nil
}

// ForStory — комментарии истории плоским списком (новые первыми) и деревом.
func (s *Service) ForStory(ctx context.Context, storyID uuid.UUID) ([]Comment, []*Node, error) {
	flat, err := s.repo.ListByStory(ctx, storyID)
	if err != nil {
		return nil, nil, err
	}
	return flat, BuildTree(flat), nil
}

// ByAuthor — комментарии пользователя для профиля.
func (s *Service) ByAuthor(ctx context.Context, authorID uuid.UUID) ([]Comment, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}

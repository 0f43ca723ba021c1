// Package stories — service.go содержит бизнес-логику историй.
package stories

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/config"
	"serotonyl.ru/newsboard/internal/features/comments"
	"serotonyl.ru/newsboard/internal/metrics"
	"serotonyl.ru/newsboard/internal/notify"
)

// announceTimeout — сколько ждём Telegram на один анонс.
const announceTimeout = 10 * time.Second

// Store — то, что сервису нужно от репозитория.
type Store interface {
	Create(ctx context.Context, s *Story) error
	GetByID(ctx context.Context, id uuid.UUID) (*Story, error)
	List(ctx context.Context, p ListParams) ([]Story, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]Story, error)
	TopSince(ctx context.Context, since time.Time, limit int) ([]Story, error)
}

// Discussion отдаёт комментарии истории.
type Discussion interface {
	ForStory(ctx context.Context, storyID uuid.UUID) ([]comments.Comment, []*comments.Node, error)
}

type Service struct {
	repo       Store
	discussion Discussion
	notifier   notify.Notifier
	cfg        *config.Config

	// анонсы уходят в фоне, на shutdown их дожидаемся
	announcing sync.WaitGroup
}

func NewService(repo Store, discussion Discussion, notifier notify.Notifier, cfg *config.Config) *Service {
	return &Service{repo: repo, discussion: discussion, notifier: notifier, cfg: cfg}
}

// Create публикует историю authorID со стартовым счётом STORY_STARTING_SCORE.
// author — username для анонса.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, author string, in CreateInput) (*Story, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, common.ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleRunes {
		return nil, common.ErrTitleTooLong
	}

	story := &Story{
		Title:    title,
		Score:    s.cfg.StoryStartingScore,
		AuthorID: authorID,
		Author:   author,
	}

	if raw := strings.TrimSpace(in.URL); raw != "" {
		if !validURL(raw) {
			return nil, common.ErrInvalidURL
		}
		story.URL = &raw
	}
	if text := strings.TrimSpace(in.Text); text != "" {
		story.Text = &text
	}

	if err := s.repo.Create(ctx, story); err != nil {
		return nil, err
	}

	metrics.StoriesCreated.Inc()
	log.WithFields(log.Fields{
		"story_id":  story.ID,
		"author_id": authorID,
	}).Info("Новая история")

	if s.cfg.FeatureAnnounceStories {
		s.announce(*story)
	}
	return story, nil
}

func (s *Service) announce(story Story) {
	s.announcing.Add(1)
	go func() {
		defer s.announcing.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("ПАНИКА при анонсе истории — восстановлено")
			}
		}()

		// Контекст запроса к этому моменту уже отменён
		ctx, cancel := context.WithTimeout(context.Background(), announceTimeout)
		defer cancel()

		if err := s.notifier.AnnounceStory(ctx, ToNotification(story)); err != nil {
			log.WithError(err).WithField("story_id", story.ID).Warn("Не удалось анонсировать историю")
		}
	}()
}

// Wait дожидается фоновых анонсов.
func (s *Service) Wait() {
	s.announcing.Wait()
}

// List — лента. Некорректные limit/offset уже приведены в обработчике.
func (s *Service) List(ctx context.Context, p ListParams) ([]Story, error) {
	if p.Limit < 1 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return s.repo.List(ctx, p)
}

// Get — история с комментариями плоским списком и деревом.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	story, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	flat, thread, err := s.discussion.ForStory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Story: *story, Comments: flat, Thread: thread}, nil
}

// ByAuthor — истории пользователя для профиля.
func (s *Service) ByAuthor(ctx context.Context, authorID uuid.UUID) ([]Story, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}

// TopSince — лучшие истории после since, для дайджеста.
func (s *Service) TopSince(ctx context.Context, since time.Time, limit int) ([]Story, error) {
	return s.repo.TopSince(ctx, since, limit)
}

// ToNotification переводит историю в формат уведомлений.
func ToNotification(s Story) notify.Story {
	n := notify.Story{
		ID:        s.ID,
		Title:     s.Title,
		Author:    s.Author,
		Score:     s.Score,
		Comments:  s.CommentCount,
		CreatedAt: s.CreatedAt,
	}
	if s.URL != nil {
		n.URL = *s.URL
	}
	return n
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

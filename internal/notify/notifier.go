// Package notify отправляет анонсы новых историй и ежедневный дайджест в Telegram-канал.
// Без токена и канала используется Noop: сервис работает, просто никуда не пишет.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Story — то, что нужно знать об истории для сообщения.
type Story struct {
	ID        uuid.UUID
	Title     string
	URL       string // пусто у текстовых историй
	Author    string
	Score     int
	Comments  int
	CreatedAt time.Time
}

// Notifier — канал уведомлений.
type Notifier interface {
	AnnounceStory(ctx context.Context, s Story) error
	SendDigest(ctx context.Context, stories []Story) error
}

// Noop ничего не отправляет.
type Noop struct{}

func (Noop) AnnounceStory(context.Context, Story) error { return nil }

func (Noop) SendDigest(context.Context, []Story) error { return nil }

// Package notify — telegram.go: отправка через Bot API (telego).
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/newsboard/internal/config"
	"serotonyl.ru/newsboard/internal/metrics"
)

// sender — часть *telego.Bot, которой мы пользуемся.
type sender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramNotifier пишет в канал TELEGRAM_CHANNEL_ID.
type TelegramNotifier struct {
	bot     sender
	chatID  int64
	baseURL string
	now     func() time.Time
}

// New возвращает Telegram-уведомления, если они настроены, иначе Noop.
func New(cfg *config.Config) (Notifier, error) {
	if !cfg.TelegramEnabled() {
		log.Info("Telegram не настроен, уведомления выключены")
		return Noop{}, nil
	}

	bot, err := telego.NewBot(cfg.TelegramBotToken, telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	log.WithField("channel_id", cfg.TelegramChannelID).Info("Уведомления в Telegram включены")
	return newTelegram(bot, cfg.TelegramChannelID, cfg.PublicBaseURL), nil
}

func newTelegram(bot sender, chatID int64, baseURL string) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, baseURL: baseURL, now: time.Now}
}

func (t *TelegramNotifier) AnnounceStory(ctx context.Context, s Story) error {
	return t.send(ctx, "announce", FormatAnnouncement(s, t.baseURL, t.now()))
}

func (t *TelegramNotifier) SendDigest(ctx context.Context, stories []Story) error {
	if len(stories) == 0 {
		return nil
	}
	return t.send(ctx, "digest", FormatDigest(stories, t.baseURL, t.now()))
}

func (t *TelegramNotifier) send(ctx context.Context, kind, text string) error {
	msg := tu.Message(tu.ID(t.chatID), text).WithParseMode(telego.ModeHTML)
	if _, err := t.bot.SendMessage(ctx, msg); err != nil {
		metrics.NotificationsSent.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("ошибка отправки сообщения (%s): %w", kind, err)
	}
	metrics.NotificationsSent.WithLabelValues(kind, "ok").Inc()
	return nil
}

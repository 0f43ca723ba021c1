// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: сверку счётов с голосами
// и ежедневный дайджест лучших историй в Telegram.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/newsboard/internal/config"
	"serotonyl.ru/newsboard/internal/features/stories"
	"serotonyl.ru/newsboard/internal/features/votes"
	"serotonyl.ru/newsboard/internal/notify"
)

// Reconciler пересчитывает счёты по журналу голосов.
type Reconciler interface {
	Reconcile(ctx context.Context) (votes.ReconcileReport, error)
}

// TopStories отдаёт лучшие истории за период.
type TopStories interface {
	TopSince(ctx context.Context, since time.Time, limit int) ([]stories.Story, error)
}

// digestWindow — за какой период собирается дайджест.
const digestWindow = 24 * time.Hour

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron       *cron.Cron
	cfg        *config.Config
	reconciler Reconciler
	top        TopStories
	notifier   notify.Notifier
	now        func() time.Time
}

// NewScheduler создаёт планировщик задач в часовом поясе APP_TIMEZONE.
func NewScheduler(cfg *config.Config, reconciler Reconciler, top TopStories, notifier notify.Notifier) *Scheduler {
	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		log.WithError(err).WithField("tz", cfg.AppTimezone).Warn("Не удалось загрузить часовой пояс, используем UTC")
		loc = time.UTC
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		cfg:        cfg,
		reconciler: reconciler,
		top:        top,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Start регистрирует включённые задачи и запускает cron.
// Ошибка — только если расписание не парсится.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.FeatureReconcile {
		if _, err := s.cron.AddFunc(s.cfg.ReconcileSchedule, func() { s.RunReconcile(ctx) }); err != nil {
			return fmt.Errorf("некорректный RECONCILE_SCHEDULE %q: %w", s.cfg.ReconcileSchedule, err)
		}
	}

	if s.cfg.FeatureDigestEnabled {
		if _, err := s.cron.AddFunc(s.cfg.DigestSchedule, func() { s.RunDigest(ctx) }); err != nil {
			return fmt.Errorf("некорректный DIGEST_SCHEDULE %q: %w", s.cfg.DigestSchedule, err)
		}
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"jobs": len(s.cron.Entries()),
		"tz":   s.cron.Location().String(),
	}).Info("Планировщик задач запущен")
	return nil
}

// RunReconcile — одна сверка. Ошибки только логируются: следующий запуск попробует снова.
func (s *Scheduler) RunReconcile(ctx context.Context) {
	log.Debug("[CRON] Сверка счётов")
	report, err := s.reconciler.Reconcile(ctx)
	if err != nil {
		log.WithError(err).Error("[CRON] Ошибка сверки счётов")
		return
	}
	if report.Total() == 0 {
		return
	}

	fields := log.Fields{}
	for kind, n := range report {
		fields[kind.String()] = n
	}
	log.WithFields(fields).Warn("[CRON] Сверка исправила расхождения счётов")
}

// RunDigest отправляет лучшие истории за сутки. Пустой дайджест не шлём.
func (s *Scheduler) RunDigest(ctx context.Context) {
	log.Info("[CRON] Ежедневный дайджест")
	top, err := s.top.TopSince(ctx, s.now().Add(-digestWindow), s.cfg.DigestSize)
	if err != nil {
		log.WithError(err).Error("[CRON] Ошибка выборки дайджеста")
		return
	}
	if len(top) == 0 {
		log.Debug("[CRON] Дайджест пуст, пропускаем")
		return
	}

	items := lo.Map(top, func(st stories.Story, _ int) notify.Story { return stories.ToNotification(st) })
	if err := s.notifier.SendDigest(ctx, items); err != nil {
		log.WithError(err).Error("[CRON] Ошибка отправки дайджеста")
	}
}

// Stop останавливает планировщик и ждёт запущенные задачи.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

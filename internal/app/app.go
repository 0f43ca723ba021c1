// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// уведомления и собирает всё в HTTP-сервер и планировщик.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/newsboard/internal/config"
	"serotonyl.ru/newsboard/internal/db/postgres"
	"serotonyl.ru/newsboard/internal/features/auth"
	"serotonyl.ru/newsboard/internal/features/comments"
	"serotonyl.ru/newsboard/internal/features/karma"
	"serotonyl.ru/newsboard/internal/features/stories"
	"serotonyl.ru/newsboard/internal/features/users"
	"serotonyl.ru/newsboard/internal/features/votes"
	"serotonyl.ru/newsboard/internal/jobs"
	"serotonyl.ru/newsboard/internal/notify"
	"serotonyl.ru/newsboard/internal/server"
)

// Services — сервисы фич. Нужны не только HTTP, но и cmd/seed.
type Services struct {
	Users    *users.Service
	Stories  *stories.Service
	Comments *comments.Service
	Votes    *votes.Service
	Karma    *karma.Service
}

// App содержит все компоненты приложения.
type App struct {
	Server    *server.Server
	Scheduler *jobs.Scheduler
	Services  Services
	DB        *pgxpool.Pool
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Уведомления ===
	notifier, err := notify.New(cfg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка создания Telegram-уведомлений: %w", err)
	}

	// === 3. Сервисы ===
	tokens := auth.NewTokenIssuer(cfg)
	svc := NewServices(pool, cfg, notifier, tokens)

	// === 4. HTTP ===
	srv := server.New(cfg, server.Handlers{
		Users:    users.NewHandler(svc.Users),
		Stories:  stories.NewHandler(svc.Stories),
		Comments: comments.NewHandler(svc.Comments),
		Votes:    votes.NewHandler(svc.Votes),
		Karma:    karma.NewHandler(svc.Karma),
	}, tokens)

	// === 5. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg, svc.Votes, svc.Stories, notifier)

	log.WithFields(log.Fields{
		"env":      cfg.AppEnv,
		"telegram": cfg.TelegramEnabled(),
	}).Info("Приложение собрано")

	return &App{
		Server:    srv,
		Scheduler: scheduler,
		Services:  svc,
		DB:        pool,
	}, nil
}

// NewServices собирает репозитории и сервисы поверх пула.
func NewServices(pool *pgxpool.Pool, cfg *config.Config, notifier notify.Notifier, tokens *auth.TokenIssuer) Services {
	commentService := comments.NewService(comments.NewRepository(pool))
	storyService := stories.NewService(stories.NewRepository(pool), commentService, notifier, cfg)

	return Services{
		Users:    users.NewService(users.NewRepository(pool), storyService, commentService, tokens, cfg),
		Stories:  storyService,
		Comments: commentService,
		Votes:    votes.NewService(votes.NewRepository(pool), cfg),
		Karma:    karma.NewService(karma.NewRepository(pool)),
	}
}

// Close освобождает ресурсы после остановки сервера и планировщика:
// дожидается фоновых анонсов и закрывает пул.
func (a *App) Close() {
	a.Services.Stories.Wait()
	a.DB.Close()
}

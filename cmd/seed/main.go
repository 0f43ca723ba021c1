// Package main — утилита наполнения БД демо-данными.
// Запуск: go run ./cmd/seed [--reset]   или   go run ./cmd/seed reset
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"serotonyl.ru/newsboard/internal/app"
	"serotonyl.ru/newsboard/internal/config"
	"serotonyl.ru/newsboard/internal/db/postgres"
	"serotonyl.ru/newsboard/internal/features/auth"
	"serotonyl.ru/newsboard/internal/features/comments"
	"serotonyl.ru/newsboard/internal/features/karma"
	"serotonyl.ru/newsboard/internal/features/stories"
	"serotonyl.ru/newsboard/internal/features/users"
	"serotonyl.ru/newsboard/internal/features/votes"
	"serotonyl.ru/newsboard/internal/notify"
)

// demoPassword — общий пароль демо-пользователей.
const demoPassword = "password123"

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)

	var reset bool

	rootCmd := &cobra.Command{
		Use:   "seed",
		Short: "Наполняет БД демо-данными",
		Long: `Создаёт демо-пользователей, истории, ветку комментариев
и несколько голосов через обычные сервисы приложения.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config) error {
				if reset {
					if err := resetData(ctx, pool); err != nil {
						return err
					}
				}
				return seed(ctx, pool, cfg)
			})
		},
	}
	rootCmd.Flags().BoolVar(&reset, "reset", false, "удалить все данные перед наполнением")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Удаляет все данные (голоса, комментарии, истории, пользователей)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, _ *config.Config) error {
				return resetData(ctx, pool)
			})
		},
	}
	rootCmd.AddCommand(resetCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Error("Наполнение не удалось")
		os.Exit(1)
	}
}

// withPool загружает конфиг, подключается к БД и применяет миграции.
func withPool(ctx context.Context, fn func(context.Context, *pgxpool.Pool, *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}
	return fn(ctx, pool, cfg)
}

// resetData удаляет данные в порядке, обратном зависимостям.
func resetData(ctx context.Context, pool *pgxpool.Pool) error {
	err := postgres.WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, table := range []string{"votes", "comments", "stories", "users"} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("очистка %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info("БД очищена")
	return nil
}

func seed(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config) error {
	// Анонсы в Telegram демо-данным не нужны
	svc := app.NewServices(pool, cfg, notify.Noop{}, auth.NewTokenIssuer(cfg))
	karmaRepo := karma.NewRepository(pool)

	type demoUser struct {
		in    users.RegisterInput
		karma int
	}
	demo := []demoUser{
		{users.RegisterInput{Name: "pg", Email: "paul@ycombinator.com", Password: demoPassword}, 1000},
		{users.RegisterInput{Name: "dang", Email: "dang@ycombinator.com", Password: demoPassword}, 500},
	}

	created := make([]*users.User, 0, len(demo))
	for _, d := range demo {
		u, _, err := svc.Users.Register(ctx, d.in)
		if err != nil {
			return fmt.Errorf("пользователь %s: %w", d.in.Name, err)
		}
		if err := karmaRepo.AddKarma(ctx, u.ID, d.karma-u.Karma); err != nil {
			return err
		}
		created = append(created, u)
	}
	pg, dang := created[0], created[1]
	log.WithField("users", len(created)).Info("Пользователи созданы")

	clone, err := svc.Stories.Create(ctx, pg.ID, pg.Username, stories.CreateInput{
		Title: "How to build a Hacker News clone",
		URL:   "https://github.com/drizzle-team/drizzle-orm",
	})
	if err != nil {
		return err
	}
	show, err := svc.Stories.Create(ctx, dang.ID, dang.Username, stories.CreateInput{
		Title: "Show HN: My new coding assistant",
		Text:  "I built this using LLMs and Drizzle ORM. What do you think?",
	})
	if err != nil {
		return err
	}

	root, err := svc.Comments.Create(ctx, dang.ID, comments.CreateInput{
		StoryID: clone.ID.String(),
		Content: "This is a great start! Drizzle is awesome.",
	})
	if err != nil {
		return err
	}
	if _, err := svc.Comments.Create(ctx, pg.ID, comments.CreateInput{
		StoryID:  clone.ID.String(),
		Content:  "Thanks! I really like the type safety.",
		ParentID: root.ID.String(),
	}); err != nil {
		return err
	}

	seedVotes := []struct {
		user *users.User
		item stories.Story
	}{
		{dang, *clone},
		{pg, *show},
	}
	for _, v := range seedVotes {
		if _, err := svc.Votes.ApplyVote(ctx, v.user.ID, v.item.ID, votes.KindStory, votes.Up); err != nil {
			return err
		}
	}
	if _, err := svc.Votes.ApplyVote(ctx, pg.ID, root.ID, votes.KindComment, votes.Up); err != nil {
		return err
	}

	svc.Stories.Wait()
	log.Info("Наполнение завершено")
	return nil
}

// Package postgrestest поднимает PostgreSQL в контейнере для интеграционных тестов.
// Пакеты зовут Run из своего TestMain и получают пул с применёнными миграциями.
package postgrestest

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"serotonyl.ru/newsboard/internal/db/postgres"
)

// Tables — все таблицы схемы, чистятся между тестами.
const Tables = "votes, comments, stories, users"

// Pool — общий пул пакета, nil в -short режиме или без docker.
var Pool *pgxpool.Pool

// Run стартует контейнер, применяет миграции, запускает тесты и завершает процесс.
// Без docker интеграционные тесты пропускаются, а юнит-тесты всё равно идут.
func Run(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("newsboard_test"),
		tcpostgres.WithUsername("newsboard"),
		tcpostgres.WithPassword("newsboard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres container unavailable, integration tests skipped: %v\n", err)
		os.Exit(m.Run())
	}

	code := func() int {
		defer func() {
			if err := container.Terminate(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "failed to terminate postgres container: %v\n", err)
			}
		}()

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to get connection string: %v\n", err)
			return 1
		}

		Pool, err = postgres.Connect(ctx, dsn, 5, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect to test database: %v\n", err)
			return 1
		}
		defer Pool.Close()

		if err := postgres.Migrate(ctx, Pool); err != nil {
			fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
			return 1
		}

		return m.Run()
	}()

	os.Exit(code)
}

// Setup возвращает пул и чистит таблицы после теста.
// Тест пропускается, если базы нет.
func Setup(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() || Pool == nil {
		t.Skip("Skipping integration test: no database")
	}

	t.Cleanup(func() {
		if _, err := Pool.Exec(context.Background(), "TRUNCATE "+Tables+" CASCADE"); err != nil {
			t.Logf("Failed to truncate tables: %v", err)
		}
	})
	return Pool
}

// CreateUser вставляет пользователя напрямую, в обход сервисов.
func CreateUser(t *testing.T, pool *pgxpool.Pool, username string, karma int) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (username, email, password, about, karma)
		VALUES ($1, $2, 'x', 'New member', $3)
		RETURNING id
	`, username, username+"@example.com", karma).Scan(&id)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

// CreateStory вставляет историю с заданным счётом.
func CreateStory(t *testing.T, pool *pgxpool.Pool, authorID uuid.UUID, title string, score int) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := pool.QueryRow(context.Background(), `
		INSERT INTO stories (title, url, score, author_id)
		VALUES ($1, 'https://example.com', $2, $3)
		RETURNING id
	`, title, score, authorID).Scan(&id)
	if err != nil {
		t.Fatalf("create story: %v", err)
	}
	return id
}

// CreateComment вставляет комментарий; parentID может быть nil.
func CreateComment(t *testing.T, pool *pgxpool.Pool, authorID, storyID uuid.UUID, parentID *uuid.UUID, content string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := pool.QueryRow(context.Background(), `
		INSERT INTO comments (content, author_id, story_id, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, content, authorID, storyID, parentID).Scan(&id)
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return id
}

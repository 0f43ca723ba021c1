// Package users — repository.go отвечает за все операции с таблицей users в БД.
// Каждая функция выполняет один SQL-запрос и возвращает результат или ошибку.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/db/postgres"
)

// Имена уникальных ограничений, которые Postgres даёт колонкам UNIQUE по умолчанию.
const (
	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectUser = `
	SELECT id, username, email, password, about, karma, created_at, updated_at
	FROM users
`

// Create добавляет пользователя. Занятые email/username — ErrEmailTaken/ErrUsernameTaken.
func (r *Repository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (username, email, password, about, karma)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, u.Username, u.Email, u.Password, u.About, u.Karma).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err, emailConstraint):
			return common.ErrEmailTaken
		case postgres.IsUniqueViolation(err, usernameConstraint):
			return common.ErrUsernameTaken
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

// GetByID: нет пользователя — ErrUserNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

// GetByUsername — точное совпадение, как в URL профиля.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, selectUser+` WHERE username = $1`, username)
}

// GetByLogin ищет по email или username.
func (r *Repository) GetByLogin(ctx context.Context, login string) (*User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1 OR username = $1 LIMIT 1`, login)
}

// FindConflict ищет того, кто уже занял email или username. Если никого нет, ErrUserNotFound.
func (r *Repository) FindConflict(ctx context.Context, email, username string) (*User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1 OR username = $2 LIMIT 1`, email, username)
}

func (r *Repository) getOne(ctx context.Context, query string, args ...interface{}) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.Password, &u.About, &u.Karma,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка чтения пользователя: %w", err)
	}
	return &u, nil
}

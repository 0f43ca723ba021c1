// Package karma — repository.go выполняет операции с колонкой users.karma.
package karma

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/db/postgres"
)

// Repository работает с кармой пользователей.
// db — пул или транзакция: голосование начисляет карму внутри своей транзакции.
type Repository struct {
	db postgres.Querier
}

// NewRepository создаёт репозиторий кармы.
func NewRepository(db postgres.Querier) *Repository {
	return &Repository{db: db}
}

// AddKarma меняет карму пользователя на delta одним запросом.
// Пользователя нет — ErrUserNotFound.
func (r *Repository) AddKarma(ctx context.Context, userID uuid.UUID, delta int) error {
	query := `UPDATE users SET karma = karma + $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, userID, delta)
	if err != nil {
		return fmt.Errorf("ошибка изменения кармы (user_id=%s): %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

// GetKarma возвращает карму пользователя.
func (r *Repository) GetKarma(ctx context.Context, userID uuid.UUID) (int, error) {
	var karma int
	err := r.db.QueryRow(ctx, `SELECT karma FROM users WHERE id = $1`, userID).Scan(&karma)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, common.ErrUserNotFound
		}
		return 0, fmt.Errorf("ошибка чтения кармы: %w", err)
	}
	return karma, nil
}

// Leaders — пользователи по убыванию кармы; при равенстве раньше тот, кто старше.
func (r *Repository) Leaders(ctx context.Context, limit int) ([]Leader, error) {
	query := `
		SELECT id, username, karma, created_at
		FROM users
		ORDER BY karma DESC, created_at ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса лидеров: %w", err)
	}
	defer rows.Close()

	var out []Leader
	for rows.Next() {
		var l Leader
		if err := rows.Scan(&l.ID, &l.Username, &l.Karma, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		l.Rank = len(out) + 1
		out = append(out, l)
	}
	return out, rows.Err()
}

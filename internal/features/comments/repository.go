// Package comments — repository.go отвечает за операции с таблицей comments.
package comments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/newsboard/internal/common"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectComment = `
	SELECT c.id, c.content, c.author_id, COALESCE(u.username, ''), c.story_id, c.parent_id,
	       c.score, c.created_at, c.updated_at
	FROM comments c
	LEFT JOIN users u ON u.id = c.author_id
`

// Create вставляет комментарий и заполняет id, даты и счёт.
func (r *Repository) Create(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (content, author_id, story_id, parent_id, score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, c.Content, c.AuthorID, c.StoryID, c.ParentID, c.Score).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания комментария: %w", err)
	}
	return nil
}

// StoryExists проверяет, что история есть.
func (r *Repository) StoryExists(ctx context.Context, storyID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM stories WHERE id = $1)`, storyID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки истории: %w", err)
	}
	return exists, nil
}

// ParentStory возвращает историю родительского комментария. Нет родителя — ErrParentNotFound.
func (r *Repository) ParentStory(ctx context.Context, parentID uuid.UUID) (uuid.UUID, error) {
	var storyID uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT story_id FROM comments WHERE id = $1`, parentID).Scan(&storyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, common.ErrParentNotFound
		}
		return uuid.Nil, fmt.Errorf("ошибка чтения родителя: %w", err)
	}
	return storyID, nil
}

// GetByID: нет комментария — pgx.ErrNoRows в цепочке.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, selectComment+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения комментария (id=%s): %w", id, err)
	}
	return c, nil
}

// ListByStory — комментарии истории, новые первыми.
func (r *Repository) ListByStory(ctx context.Context, storyID uuid.UUID) ([]Comment, error) {
	return r.query(ctx, selectComment+` WHERE c.story_id = $1 ORDER BY c.created_at DESC`, storyID)
}

// ListByAuthor — комментарии пользователя, новые первыми.
func (r *Repository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]Comment, error) {
	return r.query(ctx, selectComment+` WHERE c.author_id = $1 ORDER BY c.created_at DESC`, authorID)
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]Comment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса комментариев: %w", err)
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanComment(row pgx.Row) (*Comment, error) {
	var c Comment
	if err := row.Scan(
		&c.ID, &c.Content, &c.AuthorID, &c.Author, &c.StoryID, &c.ParentID,
		&c.Score, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// Package stories — repository.go отвечает за операции с таблицей stories.
package stories

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const selectStory = `
	SELECT s.id, s.title, s.url, s.text, s.score, s.author_id, COALESCE(u.username, ''),
	       (SELECT COUNT(*) FROM comments c WHERE c.story_id = s.id),
	       s.created_at, s.updated_at
	FROM stories s
	LEFT JOIN users u ON u.id = s.author_id
`

// Гравитация HN: (points-1) / (age_hours+2)^1.8
const hotRank = `(s.score - 1) / POWER(EXTRACT(EPOCH FROM (NOW() - s.created_at)) / 3600.0 + 2, 1.8)`

var orderBy = map[Sort]string{
	SortNew: `s.created_at DESC`,
	SortTop: `s.score DESC, s.created_at DESC`,
	SortHot: hotRank + ` DESC, s.created_at DESC`,
}

// Create вставляет историю и заполняет id и даты.
func (r *Repository) Create(ctx context.Context, s *Story) error {
	query := `
		INSERT INTO stories (title, url, text, score, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, s.Title, s.URL, s.Text, s.Score, s.AuthorID).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания истории: %w", err)
	}
	return nil
}

// GetByID: нет истории — ErrStoryNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Story, error) {
	s, err := scanStory(r.db.QueryRow(ctx, selectStory+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrStoryNotFound
		}
		return nil, fmt.Errorf("ошибка чтения истории (id=%s): %w", id, err)
	}
	return s, nil
}

// List — лента в заданном порядке.
func (r *Repository) List(ctx context.Context, p ListParams) ([]Story, error) {
	order, ok := orderBy[p.Sort]
	if !ok {
		order = orderBy[SortNew]
	}
	return r.query(ctx, selectStory+` ORDER BY `+order+` LIMIT $1 OFFSET $2`, p.Limit, p.Offset)
}

// ListByAuthor — истории пользователя, новые первыми.
func (r *Repository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]Story, error) {
	return r.query(ctx, selectStory+` WHERE s.author_id = $1 ORDER BY s.created_at DESC`, authorID)
}

// TopSince — лучшие по счёту истории, опубликованные после since.
func (r *Repository) TopSince(ctx context.Context, since time.Time, limit int) ([]Story, error) {
	return r.query(ctx,
		selectStory+` WHERE s.created_at >= $1 ORDER BY s.score DESC, s.created_at DESC LIMIT $2`,
		since, limit,
	)
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]Story, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса историй: %w", err)
	}
	defer rows.Close()

	out := []Story{}
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanStory(row pgx.Row) (*Story, error) {
	var s Story
	if err := row.Scan(
		&s.ID, &s.Title, &s.URL, &s.Text, &s.Score, &s.AuthorID, &s.Author,
		&s.CommentCount, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Package votes — repository.go: голоса в PostgreSQL.
// Repository открывает транзакции, txStore выполняет шаги голосования внутри одной из них.
package votes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/db/postgres"
	"serotonyl.ru/newsboard/internal/features/karma"
)

// uniqueVoteConstraint — имя ограничения из миграции votes.
const uniqueVoteConstraint = "votes_user_item_unique"

// Store — шаги голосования. Каждый шаг это один атомарный запрос.
type Store interface {
	// FindVote блокирует строку голоса до конца транзакции. Нет голоса — ErrVoteNotFound.
	FindVote(ctx context.Context, userID, itemID uuid.UUID, kind ItemKind) (*Vote, error)
	// InsertVote: параллельная вставка того же голоса — ErrVoteConflict.
	InsertVote(ctx context.Context, v *Vote) error
	UpdateVoteDirection(ctx context.Context, voteID uuid.UUID, dir Direction) error
	DeleteVote(ctx context.Context, voteID uuid.UUID) error
	// AdjustItemScore не считает отсутствие элемента ошибкой.
	AdjustItemScore(ctx context.Context, kind ItemKind, itemID uuid.UUID, delta int) error
	// FindItemAuthor: нет элемента — ErrItemNotFound.
	FindItemAuthor(ctx context.Context, kind ItemKind, itemID uuid.UUID) (uuid.UUID, error)
	// AdjustUserKarma: нет пользователя — ErrUserNotFound.
	AdjustUserKarma(ctx context.Context, userID uuid.UUID, delta int) error
}

// Repository — голоса поверх пула соединений.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// WithTx выполняет fn в одной транзакции. Ошибка из fn откатывает все шаги.
func (r *Repository) WithTx(ctx context.Context, fn func(Store) error) error {
	return postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&txStore{tx: tx, karma: karma.NewRepository(tx)})
	})
}

// ListByUser — живые голоса пользователя, новые первыми. При kind == 0 все типы.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, kind ItemKind) ([]Vote, error) {
	query := `
		SELECT id, user_id, item_id, item_type, value, created_at, updated_at
		FROM votes
		WHERE user_id = $1 AND ($2 = '' OR item_type = $2)
		ORDER BY created_at DESC
	`
	filter := ""
	if kind.Valid() {
		filter = kind.String()
	}

	rows, err := r.db.Query(ctx, query, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса голосов: %w", err)
	}
	defer rows.Close()

	var out []Vote
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// RecomputeScores выставляет score = starting + сумма живых голосов
// всем элементам типа kind, у которых счёт разошёлся. Возвращает число поправленных строк.
func (r *Repository) RecomputeScores(ctx context.Context, kind ItemKind, starting int) (int64, error) {
	if !kind.Valid() {
		return 0, common.ErrInvalidItemType
	}
	// Имя таблицы из kindInfo, не из запроса
	query := fmt.Sprintf(`
		WITH expected AS (
			SELECT t.id, $1::int + COALESCE(SUM(v.value), 0)::int AS score
			FROM %[1]s t
			LEFT JOIN votes v ON v.item_id = t.id AND v.item_type = $2
			GROUP BY t.id
		)
		UPDATE %[1]s t
		SET score = expected.score
		FROM expected
		WHERE t.id = expected.id AND t.score <> expected.score
	`, kind.table())

	tag, err := r.db.Exec(ctx, query, starting, kind.String())
	if err != nil {
		return 0, fmt.Errorf("ошибка пересчёта счёта (%s): %w", kind, err)
	}
	return tag.RowsAffected(), nil
}

// txStore — шаги голосования внутри транзакции.
type txStore struct {
	tx    pgx.Tx
	karma *karma.Repository
}

func (s *txStore) FindVote(ctx context.Context, userID, itemID uuid.UUID, kind ItemKind) (*Vote, error) {
	query := `
		SELECT id, user_id, item_id, item_type, value, created_at, updated_at
		FROM votes
		WHERE user_id = $1 AND item_id = $2 AND item_type = $3
		FOR UPDATE
	`
	v, err := scanVote(s.tx.QueryRow(ctx, query, userID, itemID, kind.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrVoteNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *txStore) InsertVote(ctx context.Context, v *Vote) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	query := `
		INSERT INTO votes (id, user_id, item_id, item_type, value)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := s.tx.QueryRow(ctx, query, v.ID, v.UserID, v.ItemID, v.Kind.String(), int(v.Direction)).
		Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, uniqueVoteConstraint) {
			return common.ErrVoteConflict
		}
		return fmt.Errorf("ошибка вставки голоса: %w", err)
	}
	return nil
}

func (s *txStore) UpdateVoteDirection(ctx context.Context, voteID uuid.UUID, dir Direction) error {
	query := `UPDATE votes SET value = $2, updated_at = NOW() WHERE id = $1`
	tag, err := s.tx.Exec(ctx, query, voteID, int(dir))
	if err != nil {
		return fmt.Errorf("ошибка обновления голоса: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrVoteNotFound
	}
	return nil
}

func (s *txStore) DeleteVote(ctx context.Context, voteID uuid.UUID) error {
	tag, err := s.tx.Exec(ctx, `DELETE FROM votes WHERE id = $1`, voteID)
	if err != nil {
		return fmt.Errorf("ошибка удаления голоса: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrVoteNotFound
	}
	return nil
}

func (s *txStore) AdjustItemScore(ctx context.Context, kind ItemKind, itemID uuid.UUID, delta int) error {
	query := fmt.Sprintf(`UPDATE %s SET score = score + $2 WHERE id = $1`, kind.table())
	if _, err := s.tx.Exec(ctx, query, itemID, delta); err != nil {
		return fmt.Errorf("ошибка изменения счёта (%s): %w", kind, err)
	}
	return nil
}

func (s *txStore) FindItemAuthor(ctx context.Context, kind ItemKind, itemID uuid.UUID) (uuid.UUID, error) {
	query := fmt.Sprintf(`SELECT author_id FROM %s WHERE id = $1`, kind.table())
	var authorID uuid.UUID
	if err := s.tx.QueryRow(ctx, query, itemID).Scan(&authorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, common.ErrItemNotFound
		}
		return uuid.Nil, fmt.Errorf("ошибка чтения автора (%s): %w", kind, err)
	}
	return authorID, nil
}

func (s *txStore) AdjustUserKarma(ctx context.Context, userID uuid.UUID, delta int) error {
	return s.karma.AddKarma(ctx, userID, delta)
}

func scanVote(row pgx.Row) (*Vote, error) {
	var (
		v        Vote
		itemType string
		value    int
	)
	if err := row.Scan(&v.ID, &v.UserID, &v.ItemID, &itemType, &value, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("ошибка сканирования голоса: %w", err)
	}
	kind, err := ParseItemKind(itemType)
	if err != nil {
		return nil, fmt.Errorf("голос %s: неизвестный item_type %q", v.ID, itemType)
	}
	v.Kind = kind
	v.Direction = Direction(value)
	return &v, nil
}

// Package votes — service.go содержит бизнес-логику голосования.
//
// Применение голоса (всё в одной транзакции):
//  1. Ищем живой голос пользователя за элемент
//  2. Голоса нет → вставляем, счёт += direction, автору +1 карма
//  3. Голос в ту же сторону → удаляем, счёт -= direction (карму не трогаем)
//  4. Голос в другую сторону → меняем направление, счёт += 2*direction
package votes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/config"
	"serotonyl.ru/newsboard/internal/metrics"
)

// Ledger — хранилище голосов с транзакциями.
type Ledger interface {
	WithTx(ctx context.Context, fn func(Store) error) error
	ListByUser(ctx context.Context, userID uuid.UUID, kind ItemKind) ([]Vote, error)
	RecomputeScores(ctx context.Context, kind ItemKind, starting int) (int64, error)
}

// Service применяет голоса и сверяет счёт.
type Service struct {
	ledger   Ledger
	starting map[ItemKind]int
}

// NewService создаёт сервис голосования.
// Начальный счёт истории берётся из конфига, комментарий стартует с нуля.
func NewService(ledger Ledger, cfg *config.Config) *Service {
	return &Service{
		ledger: ledger,
		starting: map[ItemKind]int{
			KindStory:   cfg.StoryStartingScore,
			KindComment: 0,
		},
	}
}

// Apply разбирает сырой запрос и применяет голос.
// Некорректный ввод отклоняется до любого обращения к хранилищу.
func (s *Service) Apply(ctx context.Context, userID uuid.UUID, req VoteRequest) (Result, error) {
	kind, err := ParseItemKind(req.ItemType)
	if err != nil {
		return Result{}, err
	}
	dir, err := ParseDirection(req.Value)
	if err != nil {
		return Result{}, err
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return Result{}, common.ErrInvalidItemID
	}
	return s.ApplyVote(ctx, userID, itemID, kind, dir)
}

// ApplyVote применяет голос userID за элемент itemID.
// Если параллельный запрос того же пользователя успел вставить голос,
// транзакция повторяется один раз: тогда голос уже виден и запрос становится снятием или сменой.
func (s *Service) ApplyVote(ctx context.Context, userID, itemID uuid.UUID, kind ItemKind, dir Direction) (Result, error) {
	if !kind.Valid() {
		return Result{}, common.ErrInvalidItemType
	}
	if !dir.Valid() {
		return Result{}, common.ErrInvalidVoteValue
	}

	res, err := s.applyOnce(ctx, userID, itemID, kind, dir)
	if errors.Is(err, common.ErrVoteConflict) {
		metrics.VoteRetries.Inc()
		log.WithFields(log.Fields{
			"user_id": userID,
			"item_id": itemID,
			"kind":    kind,
		}).Debug("Конфликт вставки голоса, повторяем")
		res, err = s.applyOnce(ctx, userID, itemID, kind, dir)
	}
	if err != nil {
		return Result{}, err
	}

	metrics.VotesTotal.WithLabelValues(kind.String(), string(res.Action)).Inc()
	log.WithFields(log.Fields{
		"user_id": userID,
		"item_id": itemID,
		"kind":    kind,
		"action":  res.Action,
		"delta":   res.ScoreDelta,
	}).Debug("Голос применён")
	return res, nil
}

func (s *Service) applyOnce(ctx context.Context, userID, itemID uuid.UUID, kind ItemKind, dir Direction) (Result, error) {
	var res Result
	err := s.ledger.WithTx(ctx, func(st Store) error {
		existing, err := st.FindVote(ctx, userID, itemID, kind)
		switch {
		case errors.Is(err, common.ErrVoteNotFound):
			res, err = castVote(ctx, st, userID, itemID, kind, dir)
			return err
		case err != nil:
			return fmt.Errorf("ошибка поиска голоса: %w", err)
		case existing.Direction == dir:
			res, err = removeVote(ctx, st, existing)
			return err
		default:
			res, err = changeVote(ctx, st, existing, dir)
			return err
		}
	})
	return res, err
}

func castVote(ctx context.Context, st Store, userID, itemID uuid.UUID, kind ItemKind, dir Direction) (Result, error) {
	v := &Vote{UserID: userID, ItemID: itemID, Kind: kind, Direction: dir}
	if err := st.InsertVote(ctx, v); err != nil {
		return Result{}, err
	}
	if err := st.AdjustItemScore(ctx, kind, itemID, int(dir)); err != nil {
		return Result{}, err
	}

	// Нет элемента или автора — карму пропускаем, сам голос засчитан
	authorID, err := st.FindItemAuthor(ctx, kind, itemID)
	switch {
	case errors.Is(err, common.ErrItemNotFound):
		log.WithFields(log.Fields{"item_id": itemID, "kind": kind}).Warn("Голос за несуществующий элемент, карма не начислена")
	case err != nil:
		return Result{}, err
	default:
		if err := st.AdjustUserKarma(ctx, authorID, 1); err != nil {
			if !errors.Is(err, common.ErrUserNotFound) {
				return Result{}, err
			}
			log.WithField("author_id", authorID).Warn("Автор не найден, карма не начислена")
		}
	}

	return Result{Action: ActionCast, ScoreDelta: int(dir)}, nil
}

// removeVote — повторный голос в ту же сторону снимает его. Карма остаётся.
func removeVote(ctx context.Context, st Store, v *Vote) (Result, error) {
	if err := st.DeleteVote(ctx, v.ID); err != nil {
		return Result{}, err
	}
	delta := -int(v.Direction)
	if err := st.AdjustItemScore(ctx, v.Kind, v.ItemID, delta); err != nil {
		return Result{}, err
	}
	return Result{Action: ActionRemoved, ScoreDelta: delta}, nil
}

func changeVote(ctx context.Context, st Store, v *Vote, dir Direction) (Result, error) {
	if err := st.UpdateVoteDirection(ctx, v.ID, dir); err != nil {
		return Result{}, err
	}
	delta := 2 * int(dir)
	if err := st.AdjustItemScore(ctx, v.Kind, v.ItemID, delta); err != nil {
		return Result{}, err
	}
	return Result{Action: ActionUpdated, ScoreDelta: delta}, nil
}

// ListForUser — живые голоса пользователя. При kind == 0 отдаём все типы.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, kind ItemKind) ([]Vote, error) {
	votes, err := s.ledger.ListByUser(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	if votes == nil {
		votes = []Vote{}
	}
	return votes, nil
}

// Reconcile пересчитывает счёт всех элементов как начальный счёт + сумма живых голосов.
// Возвращает, сколько строк пришлось поправить по каждому типу.
func (s *Service) Reconcile(ctx context.Context) (ReconcileReport, error) {
	report := ReconcileReport{}
	for _, kind := range AllKinds {
		n, err := s.ledger.RecomputeScores(ctx, kind, s.starting[kind])
		if err != nil {
			return report, err
		}
		report[kind] = n
		if n > 0 {
			metrics.ReconcileCorrected.WithLabelValues(kind.String()).Add(float64(n))
			log.WithFields(log.Fields{"kind": kind, "corrected": n}).Warn("Счёт разошёлся с голосами и был исправлен")
		}
	}
	return report, nil
}

// Package votes реализует голосование за истории и комментарии:
// учёт голосов, пересчёт счёта элемента и начисление кармы автору.
// models.go описывает структуры голосов и результат применения голоса.
package votes

import (
	"time"

	"github.com/google/uuid"
)

// Vote — живой голос пользователя за элемент.
// На пару (UserID, ItemID, Kind) в базе может быть не больше одной строки.
type Vote struct {
	ID        uuid.UUID `json:"-"`
	UserID    uuid.UUID `json:"-"`
	ItemID    uuid.UUID `json:"itemId"`
	Kind      ItemKind  `json:"itemType"`
	Direction Direction `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// Action — что случилось с голосом.
type Action string

const (
	ActionCast    Action = "cast"
	ActionRemoved Action = "removed"
	ActionUpdated Action = "updated"
)

// Result — итог ApplyVote.
type Result struct {
	Action     Action
	ScoreDelta int
}

// Message — текст для ответа API.
func (r Result) Message() string {
	switch r.Action {
	case ActionCast:
		return "Vote cast"
	case ActionRemoved:
		return "Vote removed"
	case ActionUpdated:
		return "Vote updated"
	}
	return ""
}

// VoteRequest — тело POST /api/votes в сыром виде.
type VoteRequest struct {
	ItemID   string `json:"itemId"`
	ItemType string `json:"itemType"`
	Value    int    `json:"value"`
}

// ReconcileReport — сколько счётов поправила сверка, по типам.
type ReconcileReport map[ItemKind]int64

func (r ReconcileReport) Total() int64 {
	var n int64
	for _, v := range r {
		n += v
	}
	return n
}

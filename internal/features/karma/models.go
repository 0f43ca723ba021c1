// Package karma реализует репутацию пользователей (карму).
// Карму начисляет только голосование, здесь — запись и таблица лидеров.
// models.go описывает строку таблицы лидеров.
package karma

import (
	"time"

	"github.com/google/uuid"
)

// Leader — пользователь в таблице лидеров.
type Leader struct {
	Rank      int       `json:"rank"`
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Karma     int       `json:"karma"`
	CreatedAt time.Time `json:"createdAt"`
}

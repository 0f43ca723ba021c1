// Package users управляет пользователями: регистрация, вход, профиль.
// models.go описывает структуры для работы с таблицей users.
package users

import (
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/newsboard/internal/features/comments"
	"serotonyl.ru/newsboard/internal/features/stories"
)

// User — пользователь в базе данных.
// Пароль (Argon2id PHC-строка) никогда не уходит в JSON.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	About     *string   `json:"about"`
	Karma     int       `json:"karma"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterInput — тело POST /api/auth/register. name становится username.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput — тело POST /api/auth/login. В email можно передать и username.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile — публичная страница пользователя. Email в профиль не попадает.
type Profile struct {
	ID        uuid.UUID          `json:"id"`
	Username  string             `json:"username"`
	About     *string            `json:"about"`
	Karma     int                `json:"karma"`
	CreatedAt time.Time          `json:"createdAt"`
	Stories   []stories.Story    `json:"stories"`
	Comments  []comments.Comment `json:"comments"`
}

// defaultAbout — подпись нового пользователя.
const defaultAbout = "New member"

// Package common — errors.go определяет ошибки предметной области,
// которые используются во всех модулях сервиса.
// HTTP-обработчики сверяют их через errors.Is и выбирают код ответа.
package common

import "errors"

// Ошибки голосования
var (
	// ErrInvalidItemType — тип элемента не story и не comment
	ErrInvalidItemType = errors.New("invalid item type")
	// ErrInvalidVoteValue — направление голоса не +1 и не -1
	ErrInvalidVoteValue = errors.New("invalid vote value")
	// ErrInvalidItemID — id элемента не является UUID
	ErrInvalidItemID = errors.New("invalid item id")
	// ErrItemNotFound — элемент (или его автор) не найден
	ErrItemNotFound = errors.New("item not found")
	// ErrVoteNotFound — голоса пользователя за элемент нет
	ErrVoteNotFound = errors.New("vote not found")
	// ErrVoteConflict — параллельная вставка того же голоса (unique violation)
	ErrVoteConflict = errors.New("vote conflict")
)

// Ошибки пользователей и авторизации
var (
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken — email уже зарегистрирован
	ErrEmailTaken = errors.New("email already exists")
	// ErrUsernameTaken — имя пользователя занято
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials — неверная пара логин/пароль
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidEmail — email не проходит проверку формата
	ErrInvalidEmail = errors.New("invalid email")
	// ErrPasswordTooShort — пароль короче PASSWORD_MIN_LENGTH
	ErrPasswordTooShort = errors.New("password too short")
	// ErrMissingFields — не заполнены обязательные поля
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidToken — JWT не прошёл проверку или истёк
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Ошибки историй и комментариев
var (
	ErrStoryNotFound   = errors.New("story not found")
	ErrInvalidStoryID  = errors.New("invalid story id")
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title is too long")
	ErrInvalidURL      = errors.New("url must be an absolute http(s) url")
	ErrContentRequired = errors.New("content is required")
	// ErrParentNotFound — родительский комментарий не найден в этой истории
	ErrParentNotFound = errors.New("parent comment not found")
)

// Package votes — kind.go описывает, за что можно голосовать и в какую сторону.
package votes

import (
	"strings"

	"serotonyl.ru/newsboard/internal/common"
)

// ItemKind — тип элемента, за который голосуют.
// Нулевое значение невалидно: так случайно не проголосуешь «ни за что».
type ItemKind uint8

const (
	KindStory ItemKind = iota + 1
	KindComment
)

// kindInfo — то, что хранилищу нужно знать о типе элемента.
// Имена таблиц берутся только отсюда, пользовательский ввод в SQL не попадает.
type kindInfo struct {
	name  string // значение item_type в таблице votes и в API
	table string // таблица со счётом и author_id
}

var kinds = map[ItemKind]kindInfo{
	KindStory:   {name: "story", table: "stories"},
	KindComment: {name: "comment", table: "comments"},
}

// AllKinds — все типы в стабильном порядке (для сверки счётов).
var AllKinds = []ItemKind{KindStory, KindComment}

// ParseItemKind разбирает itemType из запроса. Регистр важен, как и в API.
func ParseItemKind(s string) (ItemKind, error) {
	for k, info := range kinds {
		if info.name == s {
			return k, nil
		}
	}
	return 0, common.ErrInvalidItemType
}

func (k ItemKind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

func (k ItemKind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "unknown"
}

func (k ItemKind) table() string {
	return kinds[k].table
}

// MarshalText нужен, чтобы в JSON тип шёл строкой "story"/"comment".
func (k ItemKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, common.ErrInvalidItemType
	}
	return []byte(k.String()), nil
}

func (k *ItemKind) UnmarshalText(b []byte) error {
	parsed, err := ParseItemKind(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Direction — направление голоса: +1 или -1.
type Direction int

const (
	Up   Direction = 1
	Down Direction = -1
)

// ParseDirection принимает только +1 и -1.
func ParseDirection(v int) (Direction, error) {
	switch Direction(v) {
	case Up, Down:
		return Direction(v), nil
	default:
		return 0, common.ErrInvalidVoteValue
	}
}

func (d Direction) Valid() bool {
	return d == Up || d == Down
}

// Package stories управляет историями: ссылками и текстовыми постами.
// models.go описывает историю и параметры выборки.
package stories

import (
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/newsboard/internal/features/comments"
)

// Story — история с именем автора и числом комментариев.
type Story struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	URL          *string   `json:"url"`
	Text         *string   `json:"text"`
	Score        int       `json:"score"`
	AuthorID     uuid.UUID `json:"authorId"`
	Author       string    `json:"author"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Detail — история вместе с обсуждением.
type Detail struct {
	Story
	Comments []comments.Comment `json:"comments"`
	Thread   []*comments.Node   `json:"thread"`
}

// CreateInput — тело POST /api/stories.
type CreateInput struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

// Sort — порядок ленты.
type Sort string

const (
	SortNew Sort = "new"
	SortTop Sort = "top"
	SortHot Sort = "hot"
)

// ParseSort: пусто или неизвестно — "new", как в исходной ленте.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortTop, SortHot:
		return Sort(s)
	default:
		return SortNew
	}
}

// ListParams — параметры GET /api/stories.
type ListParams struct {
	Sort   Sort
	Limit  int
	Offset int
}

const (
	DefaultLimit  = 30
	MaxLimit      = 100
	MaxTitleRunes = 300
)

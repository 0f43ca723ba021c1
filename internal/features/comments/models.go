// Package comments управляет комментариями к историям: создание, выборка, дерево ответов.
// models.go описывает комментарий и узел дерева.
package comments

import (
	"time"

	"github.com/google/uuid"
)

// Comment — комментарий к истории. У комментария верхнего уровня ParentID == nil.
type Comment struct {
	ID        uuid.UUID  `json:"id"`
	Content   string     `json:"content"`
	AuthorID  uuid.UUID  `json:"authorId"`
	Author    string     `json:"author"` // username автора
	StoryID   uuid.UUID  `json:"storyId"`
	ParentID  *uuid.UUID `json:"parentId"`
	Score     int        `json:"score"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Node — комментарий с ответами.
type Node struct {
	Comment
	Children []*Node `json:"children"`
}

// CreateInput — тело POST /api/comments.
type CreateInput struct {
	StoryID  string `json:"storyId"`
	Content  string `json:"content"`
	ParentID string `json:"parentId"`
}

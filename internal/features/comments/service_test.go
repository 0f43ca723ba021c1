package comments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/features/auth"
)

type memStore struct {
	stories  map[uuid.UUID]bool
	comments []Comment
}

func newMemStore(stories ...uuid.UUID) *memStore {
	m := &memStore{stories: map[uuid.UUID]bool{}}
	for _, id := range stories {
		m.stories[id] = true
	}
	return m
}

func (m *memStore) Create(ctx context.Context, c *Comment) error {
	c.ID = uuid.New()
	m.comments = append(m.comments, *c)
	return nil
}

func (m *memStore) StoryExists(ctx context.Context, storyID uuid.UUID) (bool, error) {
	return m.stories[storyID], nil
}

func (m *memStore) ParentStory(ctx context.Context, parentID uuid.UUID) (uuid.UUID, error) {
	for _, c := range m.comments {
		if c.ID == parentID {
			return c.StoryID, nil
		}
	}
	return uuid.Nil, common.ErrParentNotFound
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	for _, c := range m.comments {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) ListByStory(ctx context.Context, storyID uuid.UUID) ([]Comment, error) {
	var out []Comment
	for _, c := range m.comments {
		if c.StoryID == storyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]Comment, error) {
	var out []Comment
	for _, c := range m.comments {
		if c.AuthorID == authorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	story, otherStory := uuid.New(), uuid.New()
	store := newMemStore(story, otherStory)
	svc := NewService(store)
	author := uuid.New()

	root, err := svc.Create(ctx, author, CreateInput{StoryID: story.String(), Content: "  hello  "})
	require.NoError(t, err)
	assert.Equal(t, "hello", root.Content)
	assert.Nil(t, root.ParentID)
	assert.Equal(t, 0, root.Score)

	reply, err := svc.Create(ctx, author, CreateInput{StoryID: story.String(), Content: "reply", ParentID: root.ID.String()})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	flat, tree, err := svc.ForStory(ctx, story)
	require.NoError(t, err)
	assert.Len(t, flat, 2)
	require.Len(t, tree, 1)
	assert.Len(t, tree[0].Children, 1)

	_, err = svc.Create(ctx, author, CreateInput{StoryID: otherStory.String(), Content: "x", ParentID: root.ID.String()})
	assert.ErrorIs(t, err, common.ErrParentNotFound)
}

func TestService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	story := uuid.New()
	svc := NewService(newMemStore(story))
	author := uuid.New()

	tests := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"missing story", CreateInput{Content: "x"}, common.ErrContentRequired},
		{"blank content", CreateInput{StoryID: story.String(), Content: "   "}, common.ErrContentRequired},
		{"malformed story", CreateInput{StoryID: "abc", Content: "x"}, common.ErrInvalidStoryID},
		{"unknown story", CreateInput{StoryID: uuid.NewString(), Content: "x"}, common.ErrStoryNotFound},
		{"malformed parent", CreateInput{StoryID: story.String(), Content: "x", ParentID: "nope"}, common.ErrParentNotFound},
		{"unknown parent", CreateInput{StoryID: story.String(), Content: "x", ParentID: uuid.NewString()}, common.ErrParentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, author, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	story := uuid.New()
	h := NewHandler(NewService(newMemStore(story)))
	user := uuid.New()

	r := gin.New()
	r.POST("/api/comments", func(c *gin.Context) { auth.SetUserID(c, user) }, h.Create)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/comments", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"storyId":"` + story.String() + `","content":"nice"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"content":"nice"`)
	assert.Contains(t, w.Body.String(), `"parentId":null`)

	w = post(`{"storyId":"` + uuid.NewString() + `","content":"nice"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Story not found"}`, w.Body.String())

	w = post(`{"storyId":"` + story.String() + `","content":"x","parentId":"` + uuid.NewString() + `"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Parent comment not found"}`, w.Body.String())

	w = post(`{"content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

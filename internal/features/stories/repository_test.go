package stories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/db/postgres/postgrestest"
)

func TestMain(m *testing.M) {
	postgrestest.Run(m)
}

func TestRepository_CreateAndGet(t *testing.T) {
	pool := postgrestest.Setup(t)
	ctx := context.Background()
	repo := NewRepository(pool)

	author := postgrestest.CreateUser(t, pool, "pg", 1)
	link := "https://example.com"
	s := &Story{Title: "Launch", URL: &link, Score: 1, AuthorID: author}
	require.NoError(t, repo.Create(ctx, s))
	assert.NotEqual(t, uuid.Nil, s.ID)

	postgrestest.CreateComment(t, pool, author, s.ID, nil, "first")
	postgrestest.CreateComment(t, pool, author, s.ID, nil, "second")

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Launch", got.Title)
	assert.Equal(t, "pg", got.Author)
	assert.Equal(t, 2, got.CommentCount)
	require.NotNil(t, got.URL)
	assert.Nil(t, got.Text)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrStoryNotFound)
}

func TestRepository_ListOrders(t *testing.T) {
	pool := postgrestest.Setup(t)
	ctx := context.Background()
	repo := NewRepository(pool)
	author := postgrestest.CreateUser(t, pool, "pg", 1)

	old := postgrestest.CreateStory(t, pool, author, "old but popular", 50)
	_, err := pool.Exec(ctx, `UPDATE stories SET created_at = NOW() - INTERVAL '3 days' WHERE id = $1`, old)
	require.NoError(t, err)
	fresh := postgrestest.CreateStory(t, pool, author, "fresh", 5)

	newest, err := repo.List(ctx, ListParams{Sort: SortNew, Limit: 10})
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, fresh, newest[0].ID)

	top, err := repo.List(ctx, ListParams{Sort: SortTop, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, old, top[0].ID)

	// (50-1)/(72+2)^1.8 ≈ 0.22 против (5-1)/2^1.8 ≈ 1.15
	hot, err := repo.List(ctx, ListParams{Sort: SortHot, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, fresh, hot[0].ID)

	page, err := repo.List(ctx, ListParams{Sort: SortNew, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, old, page[0].ID)

	recent, err := repo.TopSince(ctx, time.Now().Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, fresh, recent[0].ID)

	mine, err := repo.ListByAuthor(ctx, author)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

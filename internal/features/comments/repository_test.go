package comments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/db/postgres/postgrestest"
)

func TestMain(m *testing.M) {
	postgrestest.Run(m)
}

func TestRepository_Thread(t *testing.T) {
	pool := postgrestest.Setup(t)
	ctx := context.Background()
	svc := NewService(NewRepository(pool))

	pg := postgrestest.CreateUser(t, pool, "pg", 1)
	dang := postgrestest.CreateUser(t, pool, "dang", 1)
	story := postgrestest.CreateStory(t, pool, pg, "Launch", 1)
	other := postgrestest.CreateStory(t, pool, pg, "Other", 1)

	root, err := svc.Create(ctx, dang, CreateInput{StoryID: story.String(), Content: "first"})
	require.NoError(t, err)
	assert.Equal(t, 0, root.Score)

	reply, err := svc.Create(ctx, pg, CreateInput{StoryID: story.String(), Content: "reply", ParentID: root.ID.String()})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	_, err = svc.Create(ctx, pg, CreateInput{StoryID: other.String(), Content: "x", ParentID: root.ID.String()})
	assert.ErrorIs(t, err, common.ErrParentNotFound)

	_, err = svc.Create(ctx, pg, CreateInput{StoryID: uuid.NewString(), Content: "x"})
	assert.ErrorIs(t, err, common.ErrStoryNotFound)

	flat, tree, err := svc.ForStory(ctx, story)
	require.NoError(t, err)
	require.Len(t, flat, 2)
	assert.Equal(t, "pg", flat[0].Author, "новые первыми")
	require.Len(t, tree, 1)
	assert.Equal(t, root.ID, tree[0].ID)
	require.Len(t, tree[0].Children, 1)

	mine, err := svc.ByAuthor(ctx, dang)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "first", mine[0].Content)
}

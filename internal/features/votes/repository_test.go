package votes

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/config"
	"serotonyl.ru/newsboard/internal/db/postgres/postgrestest"
)

func TestMain(m *testing.M) {
	postgrestest.Run(m)
}

func storyScore(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) int {
	t.Helper()
	var score int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT score FROM stories WHERE id = $1`, id).Scan(&score))
	return score
}

func userKarma(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) int {
	t.Helper()
	var karma int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT karma FROM users WHERE id = $1`, id).Scan(&karma))
	return karma
}

func voteRows(t *testing.T, pool *pgxpool.Pool, itemID uuid.UUID) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM votes WHERE item_id = $1`, itemID).Scan(&n))
	return n
}

func TestRepository_EndToEnd(t *testing.T) {
	pool := postgrestest.Setup(t)
	ctx := context.Background()
	svc := NewService(NewRepository(pool), &config.Config{StoryStartingScore: 1})

	author := postgrestest.CreateUser(t, pool, "author", 1)
	voter := postgrestest.CreateUser(t, pool, "voter", 1)
	story := postgrestest.CreateStory(t, pool, author, "Show HN", 0)

	res, err := svc.ApplyVote(ctx, voter, story, KindStory, Up)
	require.NoError(t, err)
	assert.Equal(t, Result{Action: ActionCast, ScoreDelta: 1}, res)
	assert.Equal(t, 1, storyScore(t, pool, story))
	assert.Equal(t, 2, userKarma(t, pool, author))

	res, err = svc.ApplyVote(ctx, voter, story, KindStory, Down)
	require.NoError(t, err)
	assert.Equal(t, Result{Action: ActionUpdated, ScoreDelta: -2}, res)
	assert.Equal(t, -1, storyScore(t, pool, story))

	list, err := svc.ListForUser(ctx, voter, KindStory)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, Down, list[0].Direction)

	res, err = svc.ApplyVote(ctx, voter, story, KindStory, Down)
	require.NoError(t, err)
	assert.Equal(t, ActionRemoved, res.Action)
	assert.Equal(t, 0, storyScore(t, pool, story))
	assert.Equal(t, 0, voteRows(t, pool, story))
	assert.Equal(t, 2, userKarma(t, pool, author))
}

func TestRepository_CommentVoteAndMissingItem(t *testing.T) {
	pool := postgrestest.Setup(t)
	ctx := context.Background()
	svc := NewService(NewRepository(pool), &config.Config{StoryStartingScore: 1})

	author := postgrestest.CreateUser(t, pool, "author", 1)
	voter := postgrestest.CreateUser(t, pool, "voter", 1)
	story := postgrestest.CreateStory(t, pool, author, "Ask HN", 1)
	comment := postgrestest.CreateComment(t, pool, author, story, nil, "first")

	_, err := svc.ApplyVote(ctx, voter, comment, KindComment, Up)
	require.NoError(t, err)
	assert.Equal(t, 2, userKarma(t, pool, author))

	ghost := uuid.New()
	res, err := svc.ApplyVote(ctx, voter, ghost, KindStory, Up)
	require.NoError(t, err)
	assert.Equal(t, ActionCast, res.Action)
	assert.Equal(t, 1, voteRows(t, pool, ghost))
	assert.Equal(t, 2, userKarma(t, pool, author))
}

func TestRepository_UniqueConstraint(t *testing.T) {
	pool := postgrestest.Setup(t)
	ctx := context.Background()
	repo := NewRepository(pool)

	author := postgrestest.CreateUser(t, pool, "author", 1)
	story := postgrestest.CreateStory(t, pool, author, "dup", 1)

	insert := func() error {
		return repo.WithTx(ctx, func(st Store) error {
			return st.InsertVote(ctx, &Vote{UserID: author, ItemID: story, Kind: KindStory, Direction: Up})
		})
	}
	require.NoError(t, insert())
	assert.ErrorIs(t, insert(), common.ErrVoteConflict)
}

func TestRepository_ConcurrentSameUser(t *testing.T) {
	pool := postgrestest.Setup(t)
	ctx := context.Background()
	svc := NewService(NewRepository(pool), &config.Config{StoryStartingScore: 1})

	author := postgrestest.CreateUser(t, pool, "author", 1)
	voter := postgrestest.CreateUser(t, pool, "voter", 1)
	story := postgrestest.CreateStory(t, pool, author, "race", 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.ApplyVote(ctx, voter, story, KindStory, Up)
		}()
	}
	wg.Wait()

	// Сколько бы запросов ни прошло, строк не больше одной и счёт с ними согласован
	rows := voteRows(t, pool, story)
	assert.LessOrEqual(t, rows, 1)
	assert.Equal(t, rows, storyScore(t, pool, story))
}

func TestRepository_RecomputeScores(t *testing.T) {
	pool := postgrestest.Setup(t)
	ctx := context.Background()
	repo := NewRepository(pool)
	svc := NewService(repo, &config.Config{StoryStartingScore: 1})

	author := postgrestest.CreateUser(t, pool, "author", 1)
	voter := postgrestest.CreateUser(t, pool, "voter", 1)
	story := postgrestest.CreateStory(t, pool, author, "drift", 1)

	_, err := svc.ApplyVote(ctx, voter, story, KindStory, Up)
	require.NoError(t, err)
	assert.Equal(t, 2, storyScore(t, pool, story))

	_, err = pool.Exec(ctx, `UPDATE stories SET score = 42 WHERE id = $1`, story)
	require.NoError(t, err)

	report, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report[KindStory])
	assert.Equal(t, 2, storyScore(t, pool, story))

	// Повторная сверка ничего не меняет
	report, err = svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Total())
}

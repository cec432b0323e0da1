package repositories_test

import (
	"context"
	"testing"

	"github.com/bionicotaku/lingo-services-media/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestWatchHistoryRepositoryHeadAndTouch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	repo := repositories.NewWatchHistoryRepository(pool, discardLogger())

	userID := uuid.New()
	firstMedia := uuid.New()
	secondMedia := uuid.New()

	// 空历史返回 uuid.Nil 而非错误。
	head, err := repo.Head(ctx, nil, userID)
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, head)

	require.NoError(t, repo.Touch(ctx, nil, userID, firstMedia))
	head, err = repo.Head(ctx, nil, userID)
	require.NoError(t, err)
	require.Equal(t, firstMedia, head)

	require.NoError(t, repo.Touch(ctx, nil, userID, secondMedia))
	head, err = repo.Head(ctx, nil, userID)
	require.NoError(t, err)
	require.Equal(t, secondMedia, head)

	// 重看旧媒体：已有行刷新 watched_at，移动到头部而非新增。
	require.NoError(t, repo.Touch(ctx, nil, userID, firstMedia))
	head, err = repo.Head(ctx, nil, userID)
	require.NoError(t, err)
	require.Equal(t, firstMedia, head)

	var rows int64
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM media.watch_history WHERE user_id = $1`, userID).Scan(&rows))
	require.EqualValues(t, 2, rows)

	// 不同用户的历史互不影响。
	otherHead, err := repo.Head(ctx, nil, uuid.New())
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, otherHead)
}

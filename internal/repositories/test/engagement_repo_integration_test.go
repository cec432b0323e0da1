package repositories_test

import (
	"context"
	"testing"

	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/bionicotaku/lingo-services-media/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEngagementRepositoryMediaLikeToggle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	mediaRepo := repositories.NewMediaRepository(pool, discardLogger())
	repo := repositories.NewEngagementRepository(pool, discardLogger())

	asset := seedMedia(ctx, t, mediaRepo, uuid.New(), "liked clip", true)
	userID := uuid.New()

	liked, err := repo.ToggleMediaLike(ctx, nil, userID, asset.MediaID)
	require.NoError(t, err)
	require.True(t, liked)

	count, err := repo.MediaLikeCount(ctx, nil, asset.MediaID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	has, err := repo.LikedByUser(ctx, nil, userID, asset.MediaID)
	require.NoError(t, err)
	require.True(t, has)

	// 再次翻转回到未点赞态，计数归零。
	liked, err = repo.ToggleMediaLike(ctx, nil, userID, asset.MediaID)
	require.NoError(t, err)
	require.False(t, liked)

	count, err = repo.MediaLikeCount(ctx, nil, asset.MediaID)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	has, err = repo.LikedByUser(ctx, nil, userID, asset.MediaID)
	require.NoError(t, err)
	require.False(t, has)
}

func TestEngagementRepositorySubscriptionToggle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	repo := repositories.NewEngagementRepository(pool, discardLogger())

	subscriber := uuid.New()
	channel := uuid.New()

	subscribed, err := repo.ToggleSubscription(ctx, nil, subscriber, channel)
	require.NoError(t, err)
	require.True(t, subscribed)

	count, err := repo.SubscriberCount(ctx, nil, channel)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	is, err := repo.IsSubscribed(ctx, nil, subscriber, channel)
	require.NoError(t, err)
	require.True(t, is)

	subscribed, err = repo.ToggleSubscription(ctx, nil, subscriber, channel)
	require.NoError(t, err)
	require.False(t, subscribed)

	count, err = repo.SubscriberCount(ctx, nil, channel)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestEngagementRepositoryCommentLikeCounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	mediaRepo := repositories.NewMediaRepository(pool, discardLogger())
	commentRepo := repositories.NewCommentRepository(pool, discardLogger())
	repo := repositories.NewEngagementRepository(pool, discardLogger())

	asset := seedMedia(ctx, t, mediaRepo, uuid.New(), "commented clip", true)

	first, err := commentRepo.Create(ctx, nil, &po.Comment{
		CommentID: uuid.New(), MediaID: asset.MediaID, OwnerID: uuid.New(), Content: "first",
	})
	require.NoError(t, err)
	second, err := commentRepo.Create(ctx, nil, &po.Comment{
		CommentID: uuid.New(), MediaID: asset.MediaID, OwnerID: uuid.New(), Content: "second",
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := repo.ToggleCommentLike(ctx, nil, uuid.New(), first.CommentID)
		require.NoError(t, err)
	}
	_, err = repo.ToggleCommentLike(ctx, nil, uuid.New(), second.CommentID)
	require.NoError(t, err)

	counts, err := repo.CommentLikeCounts(ctx, nil, []uuid.UUID{first.CommentID, second.CommentID, uuid.New()})
	require.NoError(t, err)
	require.EqualValues(t, 3, counts[first.CommentID])
	require.EqualValues(t, 1, counts[second.CommentID])
	require.Len(t, counts, 2)

	// 空输入不触发查询，返回空表。
	counts, err = repo.CommentLikeCounts(ctx, nil, nil)
	require.NoError(t, err)
	require.Empty(t, counts)
}

func TestEngagementRepositoryListLikedMedia(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	mediaRepo := repositories.NewMediaRepository(pool, discardLogger())
	repo := repositories.NewEngagementRepository(pool, discardLogger())

	userID := uuid.New()
	first := seedMedia(ctx, t, mediaRepo, uuid.New(), "liked first", true)
	second := seedMedia(ctx, t, mediaRepo, uuid.New(), "liked second", true)
	seedMedia(ctx, t, mediaRepo, uuid.New(), "not liked", true)

	_, err := repo.ToggleMediaLike(ctx, nil, userID, first.MediaID)
	require.NoError(t, err)
	_, err = repo.ToggleMediaLike(ctx, nil, userID, second.MediaID)
	require.NoError(t, err)

	assets, total, err := repo.ListLikedMedia(ctx, nil, userID, 20, 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, assets, 2)

	// 按点赞时间倒序：最后点赞的排最前。
	require.Equal(t, second.MediaID, assets[0].MediaID)
	require.Equal(t, first.MediaID, assets[1].MediaID)

	// 删除媒体后 JOIN 不再返回该行（FK 级联清理点赞）。
	_, _, err = mediaRepo.DeleteOwned(ctx, nil, second.MediaID, second.OwnerID)
	require.NoError(t, err)

	assets, total, err = repo.ListLikedMedia(ctx, nil, userID, 20, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, assets, 1)
	require.Equal(t, first.MediaID, assets[0].MediaID)
}

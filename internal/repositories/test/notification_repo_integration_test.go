package repositories_test

import (
	"context"
	"testing"

	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/bionicotaku/lingo-services-media/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func insertNotification(ctx context.Context, t *testing.T, repo *repositories.NotificationRepository, recipientID, senderID uuid.UUID, kind po.NotificationKind) *po.Notification {
	t.Helper()

	n, err := repo.Insert(ctx, nil, &po.Notification{
		NotificationID: uuid.New(),
		RecipientID:    recipientID,
		SenderID:       senderID,
		Kind:           kind,
	})
	require.NoError(t, err)
	return n
}

func TestNotificationRepositoryInbox(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	repo := repositories.NewNotificationRepository(pool, discardLogger())

	recipientID := uuid.New()
	senderID := uuid.New()

	first := insertNotification(ctx, t, repo, recipientID, senderID, po.NotificationLike)
	second := insertNotification(ctx, t, repo, recipientID, senderID, po.NotificationComment)
	insertNotification(ctx, t, repo, uuid.New(), senderID, po.NotificationLike) // 别人的收件箱

	require.False(t, first.IsRead)
	require.NotZero(t, first.CreatedAt)

	items, total, err := repo.ListByRecipient(ctx, nil, recipientID, 20, 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	require.Equal(t, second.NotificationID, items[0].NotificationID)

	unread, err := repo.UnreadCount(ctx, nil, recipientID)
	require.NoError(t, err)
	require.EqualValues(t, 2, unread)

	// 非收件人标记已读与不存在统一返回 ErrNotificationNotFound。
	err = repo.MarkRead(ctx, nil, first.NotificationID, uuid.New())
	require.ErrorIs(t, err, repositories.ErrNotificationNotFound)

	require.NoError(t, repo.MarkRead(ctx, nil, first.NotificationID, recipientID))
	unread, err = repo.UnreadCount(ctx, nil, recipientID)
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)

	affected, err := repo.MarkAllRead(ctx, nil, recipientID)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	unread, err = repo.UnreadCount(ctx, nil, recipientID)
	require.NoError(t, err)
	require.EqualValues(t, 0, unread)

	deleted, err := repo.DeleteAll(ctx, nil, recipientID)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	_, total, err = repo.ListByRecipient(ctx, nil, recipientID, 20, 0)
	require.NoError(t, err)
	require.EqualValues(t, 0, total)
}

func TestNotificationRepositoryDeleteSubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	repo := repositories.NewNotificationRepository(pool, discardLogger())

	channelID := uuid.New()
	subscriberID := uuid.New()

	insertNotification(ctx, t, repo, channelID, subscriberID, po.NotificationSubscribe)
	kept := insertNotification(ctx, t, repo, channelID, subscriberID, po.NotificationLike)

	// 撤回订阅通知只删 SUBSCRIBE 类别，其余保留。
	require.NoError(t, repo.DeleteSubscribe(ctx, nil, channelID, subscriberID))

	items, total, err := repo.ListByRecipient(ctx, nil, channelID, 20, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, kept.NotificationID, items[0].NotificationID)

	// 删不到行不视为错误。
	require.NoError(t, repo.DeleteSubscribe(ctx, nil, channelID, uuid.New()))
}

package services

import (
	"context"
	"time"

	"github.com/bionicotaku/lingo-services-media/internal/infrastructure/objectstore"
	"github.com/bionicotaku/lingo-services-media/internal/models/events"
	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/bionicotaku/lingo-services-media/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
)

// MediaRepo 定义媒体资产的持久化行为。
type MediaRepo interface {
	Create(ctx context.Context, sess txmanager.Session, input repositories.CreateMediaInput) (*po.MediaAsset, error)
	FindByID(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID) (*po.MediaAsset, error)
	UpdateMetadata(ctx context.Context, sess txmanager.Session, input repositories.UpdateMetadataInput) (*po.MediaAsset, error)
	SwapPreview(ctx context.Context, sess txmanager.Session, mediaID, ownerID uuid.UUID, newURL string) (*string, error)
	DeleteOwned(ctx context.Context, sess txmanager.Session, mediaID, ownerID uuid.UUID) (string, *string, error)
	TogglePublish(ctx context.Context, sess txmanager.Session, mediaID, ownerID uuid.UUID) (*po.MediaAsset, error)
	IncrementViews(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID) (int64, error)
	ListPublished(ctx context.Context, sess txmanager.Session, search string, limit, offset int) ([]*po.MediaAsset, int64, error)
	ListByOwner(ctx context.Context, sess txmanager.Session, ownerID uuid.UUID, publishedOnly bool, limit, offset int) ([]*po.MediaAsset, int64, error)
}

// WatchHistoryRepo 定义观看历史的持久化行为。
type WatchHistoryRepo interface {
	Head(ctx context.Context, sess txmanager.Session, userID uuid.UUID) (uuid.UUID, error)
	Touch(ctx context.Context, sess txmanager.Session, userID, mediaID uuid.UUID) error
}

// EngagementRepo 定义点赞与订阅的持久化行为。
type EngagementRepo interface {
	ToggleMediaLike(ctx context.Context, sess txmanager.Session, userID, mediaID uuid.UUID) (bool, error)
	ToggleCommentLike(ctx context.Context, sess txmanager.Session, userID, commentID uuid.UUID) (bool, error)
	ToggleSubscription(ctx context.Context, sess txmanager.Session, subscriberID, channelID uuid.UUID) (bool, error)
	MediaLikeCount(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID) (int64, error)
	LikedByUser(ctx context.Context, sess txmanager.Session, userID, mediaID uuid.UUID) (bool, error)
	SubscriberCount(ctx context.Context, sess txmanager.Session, channelID uuid.UUID) (int64, error)
	IsSubscribed(ctx context.Context, sess txmanager.Session, subscriberID, channelID uuid.UUID) (bool, error)
	CommentLikeCounts(ctx context.Context, sess txmanager.Session, commentIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	ListLikedMedia(ctx context.Context, sess txmanager.Session, userID uuid.UUID, limit, offset int) ([]*po.MediaAsset, int64, error)
}

// CommentRepo 定义评论的持久化行为。
type CommentRepo interface {
	Create(ctx context.Context, sess txmanager.Session, comment *po.Comment) (*po.Comment, error)
	FindByID(ctx context.Context, sess txmanager.Session, commentID uuid.UUID) (*po.Comment, error)
	UpdateOwned(ctx context.Context, sess txmanager.Session, commentID, ownerID uuid.UUID, content string) (*po.Comment, error)
	DeleteOwned(ctx context.Context, sess txmanager.Session, commentID, ownerID uuid.UUID) error
	ListByMedia(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID, limit, offset int) ([]*po.Comment, int64, error)
}

// NotificationRepo 定义通知的持久化行为。
type NotificationRepo interface {
	Insert(ctx context.Context, sess txmanager.Session, n *po.Notification) (*po.Notification, error)
	ListByRecipient(ctx context.Context, sess txmanager.Session, recipientID uuid.UUID, limit, offset int) ([]*po.Notification, int64, error)
	UnreadCount(ctx context.Context, sess txmanager.Session, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, sess txmanager.Session, notificationID, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, sess txmanager.Session, recipientID uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context, sess txmanager.Session, recipientID uuid.UUID) (int64, error)
	DeleteSubscribe(ctx context.Context, sess txmanager.Session, recipientID, senderID uuid.UUID) error
}

// BlobGateway 定义对象存储网关行为。
type BlobGateway interface {
	Upload(ctx context.Context, staged objectstore.StagedBlob) (objectstore.BlobRef, error)
	Delete(ctx context.Context, rawURL string) error
}

// PlaybackSigner 定义限时播放 URL 的签名能力。
type PlaybackSigner interface {
	SignedPlaybackURL(ctx context.Context, blobURL string, ttl time.Duration) (string, time.Time, error)
}

// LifecyclePublisher 定义生命周期事件的发布能力。
// 发布为 best-effort：失败由实现记录，不回滚已提交的业务状态。
type LifecyclePublisher interface {
	Publish(ctx context.Context, env events.Envelope) error
}

package services

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/bionicotaku/lingo-services-media/internal/models/vo"
	"github.com/bionicotaku/lingo-services-media/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// EngagementService 封装互动开关与通知扇出。
// 开关翻转与激活通知的写入在同一事务内完成：
// 一次激活恰好产生一条通知，actor 即 recipient 时静默。
type EngagementService struct {
	media         MediaRepo
	comments      CommentRepo
	engagement    EngagementRepo
	notifications NotificationRepo
	txManager     txmanager.Manager
	log           *log.Helper
	newID         func() uuid.UUID
}

// NewEngagementService 构造互动服务。
func NewEngagementService(
	media MediaRepo,
	comments CommentRepo,
	engagement EngagementRepo,
	notifications NotificationRepo,
	tx txmanager.Manager,
	logger log.Logger,
) *EngagementService {
	return &EngagementService{
		media:         media,
		comments:      comments,
		engagement:    engagement,
		notifications: notifications,
		txManager:     tx,
		log:           log.NewHelper(logger),
		newID:         uuid.New,
	}
}

// ToggleMediaLike 翻转用户对媒体的点赞。
func (s *EngagementService) ToggleMediaLike(ctx context.Context, userID, mediaID uuid.UUID) (*vo.ToggleState, error) {
	if userID == uuid.Nil {
		return nil, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}

	var active bool
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		asset, repoErr := s.media.FindByID(txCtx, sess, mediaID)
		if repoErr != nil {
			return repoErr
		}
		if !asset.IsPublished && asset.OwnerID != userID {
			return repositories.ErrMediaNotFound
		}

		toggled, repoErr := s.engagement.ToggleMediaLike(txCtx, sess, userID, mediaID)
		if repoErr != nil {
			return repoErr
		}
		active = toggled

		if active && asset.OwnerID != userID {
			return s.insertNotification(txCtx, sess, &po.Notification{
				NotificationID: s.newID(),
				RecipientID:    asset.OwnerID,
				SenderID:       userID,
				Kind:           po.NotificationLike,
				MediaID:        &mediaID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, "toggle media like", err)
	}

	s.log.WithContext(ctx).Infof("ToggleMediaLike: user_id=%s media_id=%s active=%t", userID, mediaID, active)
	return &vo.ToggleState{Active: active}, nil
}

// ToggleCommentLike 翻转用户对评论的点赞。
func (s *EngagementService) ToggleCommentLike(ctx context.Context, userID, commentID uuid.UUID) (*vo.ToggleState, error) {
	if userID == uuid.Nil {
		return nil, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}

	var active bool
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		comment, repoErr := s.comments.FindByID(txCtx, sess, commentID)
		if repoErr != nil {
			return repoErr
		}

		toggled, repoErr := s.engagement.ToggleCommentLike(txCtx, sess, userID, commentID)
		if repoErr != nil {
			return repoErr
		}
		active = toggled

		if active && comment.OwnerID != userID {
			return s.insertNotification(txCtx, sess, &po.Notification{
				NotificationID: s.newID(),
				RecipientID:    comment.OwnerID,
				SenderID:       userID,
				Kind:           po.NotificationLike,
				MediaID:        &comment.MediaID,
				CommentID:      &commentID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, "toggle comment like", err)
	}

	s.log.WithContext(ctx).Infof("ToggleCommentLike: user_id=%s comment_id=%s active=%t", userID, commentID, active)
	return &vo.ToggleState{Active: active}, nil
}

// ToggleSubscription 翻转订阅关系。自订阅直接拒绝。
// 取消订阅时 best-effort 撤回此前的 SUBSCRIBE 通知（事务提交后执行）。
func (s *EngagementService) ToggleSubscription(ctx context.Context, userID, channelID uuid.UUID) (*vo.ToggleState, error) {
	if userID == uuid.Nil {
		return nil, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}
	if userID == channelID {
		return nil, errors.BadRequest(ReasonEngagementInvalid, "cannot subscribe to yourself")
	}

	var active bool
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		toggled, repoErr := s.engagement.ToggleSubscription(txCtx, sess, userID, channelID)
		if repoErr != nil {
			return repoErr
		}
		active = toggled

		if active {
			return s.insertNotification(txCtx, sess, &po.Notification{
				NotificationID: s.newID(),
				RecipientID:    channelID,
				SenderID:       userID,
				Kind:           po.NotificationSubscribe,
			})
		}
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, "toggle subscription", err)
	}

	if !active {
		if delErr := s.notifications.DeleteSubscribe(ctx, nil, channelID, userID); delErr != nil {
			s.log.WithContext(ctx).Warnf("retract subscribe notification failed: channel_id=%s subscriber_id=%s err=%v", channelID, userID, delErr)
		}
	}

	s.log.WithContext(ctx).Infof("ToggleSubscription: user_id=%s channel_id=%s active=%t", userID, channelID, active)
	return &vo.ToggleState{Active: active}, nil
}

func (s *EngagementService) insertNotification(ctx context.Context, sess txmanager.Session, n *po.Notification) error {
	if _, err := s.notifications.Insert(ctx, sess, n); err != nil {
		return fmt.Errorf("insert %s notification: %w", n.Kind, err)
	}
	return nil
}

func (s *EngagementService) mapError(ctx context.Context, op string, err error) error {
	if errors.Is(err, repositories.ErrMediaNotFound) {
		return ErrMediaNotFound
	}
	if errors.Is(err, repositories.ErrCommentNotFound) {
		return ErrCommentNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithContext(ctx).Warnf("%s timeout", op)
		return errors.GatewayTimeout(ReasonQueryTimeout, op+" timeout")
	}
	s.log.WithContext(ctx).Errorf("%s failed: %v", op, err)
	return errors.InternalServer(ReasonMutationFailed, "failed to toggle engagement").WithCause(fmt.Errorf("%s: %w", op, err))
}

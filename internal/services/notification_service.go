package services

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-services-media/internal/models/vo"
	"github.com/bionicotaku/lingo-services-media/internal/repositories"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// NotificationService 封装通知消费面：列表、已读标记与清空。
// 全部操作 recipient-scoped，越权访问统一 404。
type NotificationService struct {
	repo NotificationRepo
	log  *log.Helper
}

// NewNotificationService 构造通知服务。
func NewNotificationService(repo NotificationRepo, logger log.Logger) *NotificationService {
	return &NotificationService{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// List 分页返回用户收到的通知（新→旧）。
func (s *NotificationService) List(ctx context.Context, recipientID uuid.UUID, page, size int) (*vo.NotificationPage, error) {
	if recipientID == uuid.Nil {
		return nil, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}
	page, size = normalizePage(page, size)

	notifications, total, err := s.repo.ListByRecipient(ctx, nil, recipientID, size, (page-1)*size)
	if err != nil {
		return nil, s.mapError(ctx, "list notifications", err)
	}

	items := make([]*vo.NotificationView, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, vo.NewNotificationView(n))
	}
	return &vo.NotificationPage{Items: items, Page: page, Size: size, Total: total}, nil
}

// UnreadCount 返回未读通知数。
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}

	count, err := s.repo.UnreadCount(ctx, nil, recipientID)
	if err != nil {
		return 0, s.mapError(ctx, "count unread notifications", err)
	}
	return count, nil
}

// MarkRead 将单条通知标记为已读（仅收件人）。
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	if recipientID == uuid.Nil {
		return errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}

	if err := s.repo.MarkRead(ctx, nil, notificationID, recipientID); err != nil {
		return s.mapError(ctx, "mark notification read", err)
	}
	return nil
}

// MarkAllRead 将全部未读通知标记为已读，返回受影响条数。
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}

	affected, err := s.repo.MarkAllRead(ctx, nil, recipientID)
	if err != nil {
		return 0, s.mapError(ctx, "mark all notifications read", err)
	}
	s.log.WithContext(ctx).Infof("MarkAllRead: recipient_id=%s affected=%d", recipientID, affected)
	return affected, nil
}

// DeleteAll 清空用户的全部通知，返回删除条数。
func (s *NotificationService) DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}

	deleted, err := s.repo.DeleteAll(ctx, nil, recipientID)
	if err != nil {
		return 0, s.mapError(ctx, "delete notifications", err)
	}
	s.log.WithContext(ctx).Infof("DeleteAll notifications: recipient_id=%s deleted=%d", recipientID, deleted)
	return deleted, nil
}

func (s *NotificationService) mapError(ctx context.Context, op string, err error) error {
	if errors.Is(err, repositories.ErrNotificationNotFound) {
		return ErrNotificationNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithContext(ctx).Warnf("%s timeout", op)
		return errors.GatewayTimeout(ReasonQueryTimeout, op+" timeout")
	}
	s.log.WithContext(ctx).Errorf("%s failed: %v", op, err)
	return errors.InternalServer(ReasonQueryFailed, "notification operation failed").WithCause(fmt.Errorf("%s: %w", op, err))
}

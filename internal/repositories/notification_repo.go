package repositories

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-services-media/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository 维护 media.notifications 表。
type NotificationRepository struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

// NewNotificationRepository 构造通知仓储。
func NewNotificationRepository(pool *pgxpool.Pool, logger log.Logger) *NotificationRepository {
	return &NotificationRepository{
		pool: pool,
		log:  log.NewHelper(logger),
	}
}

// Insert 写入一条通知记录。
func (r *NotificationRepository) Insert(ctx context.Context, sess txmanager.Session, n *po.Notification) (*po.Notification, error) {
	query := `
		INSERT INTO media.notifications (notification_id, recipient_id, sender_id, kind, media_id, comment_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING is_read, created_at
	`

	err := pick(r.pool, sess).QueryRow(ctx, query,
		n.NotificationID,
		n.RecipientID,
		n.SenderID,
		n.Kind,
		n.MediaID,
		n.CommentID,
	).Scan(&n.IsRead, &n.CreatedAt)

	if err != nil {
		r.log.WithContext(ctx).Errorf("Insert notification failed: %v", err)
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// ListByRecipient 查询用户收到的通知，按创建时间倒序分页。
func (r *NotificationRepository) ListByRecipient(ctx context.Context, sess txmanager.Session, recipientID uuid.UUID, limit, offset int) ([]*po.Notification, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	var total int64
	err := pick(r.pool, sess).QueryRow(ctx,
		`SELECT count(*) FROM media.notifications WHERE recipient_id = $1`, recipientID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := `
		SELECT notification_id, recipient_id, sender_id, kind, media_id, comment_id, is_read, created_at
		FROM media.notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := pick(r.pool, sess).Query(ctx, query, recipientID, limit, offset)
	if err != nil {
		r.log.WithContext(ctx).Errorf("ListByRecipient failed: %v", err)
		return nil, 0, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var items []*po.Notification
	for rows.Next() {
		var n po.Notification
		err := rows.Scan(
			&n.NotificationID, &n.RecipientID, &n.SenderID, &n.Kind,
			&n.MediaID, &n.CommentID, &n.IsRead, &n.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan notification row: %w", err)
		}
		items = append(items, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate notification rows: %w", err)
	}
	return items, total, nil
}

// UnreadCount 返回用户的未读通知数。
func (r *NotificationRepository) UnreadCount(ctx context.Context, sess txmanager.Session, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := pick(r.pool, sess).QueryRow(ctx,
		`SELECT count(*) FROM media.notifications WHERE recipient_id = $1 AND is_read = FALSE`,
		recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead 将单条通知标记为已读（recipient-scoped）。
// 通知不存在与非收件人访问统一返回 ErrNotificationNotFound。
func (r *NotificationRepository) MarkRead(ctx context.Context, sess txmanager.Session, notificationID, recipientID uuid.UUID) error {
	query := `
		UPDATE media.notifications
		SET is_read = TRUE
		WHERE notification_id = $1 AND recipient_id = $2
	`

	tag, err := pick(r.pool, sess).Exec(ctx, query, notificationID, recipientID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("MarkRead failed: %v", err)
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead 将用户的全部通知标记为已读，返回受影响的行数。
func (r *NotificationRepository) MarkAllRead(ctx context.Context, sess txmanager.Session, recipientID uuid.UUID) (int64, error) {
	tag, err := pick(r.pool, sess).Exec(ctx,
		`UPDATE media.notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`,
		recipientID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("MarkAllRead failed: %v", err)
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteAll 清空用户的全部通知，返回删除的行数。
func (r *NotificationRepository) DeleteAll(ctx context.Context, sess txmanager.Session, recipientID uuid.UUID) (int64, error) {
	tag, err := pick(r.pool, sess).Exec(ctx,
		`DELETE FROM media.notifications WHERE recipient_id = $1`, recipientID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("DeleteAll failed: %v", err)
		return 0, fmt.Errorf("delete notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteSubscribe 删除 sender 发给 recipient 的订阅通知。
// 用于取消订阅时撤回对应通知；删不到行不视为错误。
func (r *NotificationRepository) DeleteSubscribe(ctx context.Context, sess txmanager.Session, recipientID, senderID uuid.UUID) error {
	_, err := pick(r.pool, sess).Exec(ctx,
		`DELETE FROM media.notifications WHERE recipient_id = $1 AND sender_id = $2 AND kind = $3`,
		recipientID, senderID, po.NotificationSubscribe)
	if err != nil {
		r.log.WithContext(ctx).Errorf("DeleteSubscribe failed: %v", err)
		return fmt.Errorf("delete subscribe notification: %w", err)
	}
	return nil
}

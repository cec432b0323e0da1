package po

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind 表示通知事件的类别。
type NotificationKind string

// 通知类别常量定义
const (
	NotificationLike      NotificationKind = "LIKE"      // 点赞媒体或评论
	NotificationComment   NotificationKind = "COMMENT"   // 评论媒体
	NotificationSubscribe NotificationKind = "SUBSCRIBE" // 订阅频道
)

// Valid 判断通知类别是否合法。
func (k NotificationKind) Valid() bool {
	switch k {
	case NotificationLike, NotificationComment, NotificationSubscribe:
		return true
	default:
		return false
	}
}

// Notification 表示 media.notifications 表的数据库实体。
// 激活型互动（点赞、评论、订阅）产生一条通知；取消互动不回收历史通知，
// 订阅取消是唯一例外（best-effort 删除此前的 SUBSCRIBE 行）。
type Notification struct {
	NotificationID uuid.UUID        `db:"notification_id"`
	RecipientID    uuid.UUID        `db:"recipient_id"`
	SenderID       uuid.UUID        `db:"sender_id"`
	Kind           NotificationKind `db:"kind"`
	MediaID        *uuid.UUID       `db:"media_id"`   // 点赞/评论关联的媒体
	CommentID      *uuid.UUID       `db:"comment_id"` // 评论点赞/新评论关联的评论
	IsRead         bool             `db:"is_read"`
	CreatedAt      time.Time        `db:"created_at"`
}

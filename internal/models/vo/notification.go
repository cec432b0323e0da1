package vo

import (
	"time"

	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/google/uuid"
)

// NotificationView 封装通知列表项视图。
type NotificationView struct {
	NotificationID uuid.UUID  `json:"notification_id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	Kind           string     `json:"kind"`
	MediaID        *uuid.UUID `json:"media_id,omitempty"`
	CommentID      *uuid.UUID `json:"comment_id,omitempty"`
	IsRead         bool       `json:"is_read"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewNotificationView 从持久化实体构造通知视图。
func NewNotificationView(n *po.Notification) *NotificationView {
	if n == nil {
		return nil
	}
	return &NotificationView{
		NotificationID: n.NotificationID,
		SenderID:       n.SenderID,
		Kind:           string(n.Kind),
		MediaID:        n.MediaID,
		CommentID:      n.CommentID,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt,
	}
}

// NotificationPage 封装分页通知结果。
type NotificationPage struct {
	Items []*NotificationView `json:"items"`
	Page  int                 `json:"page"`
	Size  int                 `json:"size"`
	Total int64               `json:"total"`
}

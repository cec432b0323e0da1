package po

import (
	"time"

	"github.com/google/uuid"
)

// Comment 表示 media.comments 表的数据库实体。
type Comment struct {
	CommentID uuid.UUID `db:"comment_id"`
	MediaID   uuid.UUID `db:"media_id"`
	OwnerID   uuid.UUID `db:"owner_id"` // 评论作者
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

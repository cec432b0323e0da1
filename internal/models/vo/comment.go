package vo

import (
	"time"

	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/google/uuid"
)

// CommentView 封装评论列表项视图，含应用层关联出的点赞数。
type CommentView struct {
	CommentID uuid.UUID `json:"comment_id"`
	MediaID   uuid.UUID `json:"media_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	LikeCount int64     `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCommentView 从持久化实体构造评论视图。
func NewCommentView(c *po.Comment, likeCount int64) *CommentView {
	if c == nil {
		return nil
	}
	return &CommentView{
		CommentID: c.CommentID,
		MediaID:   c.MediaID,
		AuthorID:  c.OwnerID,
		Content:   c.Content,
		LikeCount: likeCount,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CommentPage 封装分页评论结果。
type CommentPage struct {
	Items []*CommentView `json:"items"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Total int64          `json:"total"`
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/lingo-services-media/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentRepository 维护 media.comments 表。
type CommentRepository struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

// NewCommentRepository 构造评论仓储。
func NewCommentRepository(pool *pgxpool.Pool, logger log.Logger) *CommentRepository {
	return &CommentRepository{
		pool: pool,
		log:  log.NewHelper(logger),
	}
}

// Create 创建评论记录。
func (r *CommentRepository) Create(ctx context.Context, sess txmanager.Session, comment *po.Comment) (*po.Comment, error) {
	query := `
		INSERT INTO media.comments (comment_id, media_id, owner_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := pick(r.pool, sess).QueryRow(ctx, query,
		comment.CommentID,
		comment.MediaID,
		comment.OwnerID,
		comment.Content,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)

	if err != nil {
		r.log.WithContext(ctx).Errorf("Create comment failed: %v", err)
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return comment, nil
}

// FindByID 根据 comment_id 查询评论（用于点赞 fan-out 定位评论作者与媒体）。
func (r *CommentRepository) FindByID(ctx context.Context, sess txmanager.Session, commentID uuid.UUID) (*po.Comment, error) {
	query := `
		SELECT comment_id, media_id, owner_id, content, created_at, updated_at
		FROM media.comments
		WHERE comment_id = $1
	`

	var c po.Comment
	err := pick(r.pool, sess).QueryRow(ctx, query, commentID).Scan(
		&c.CommentID, &c.MediaID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		r.log.WithContext(ctx).Errorf("FindByID comment failed: %v", err)
		return nil, fmt.Errorf("query comment by id: %w", err)
	}
	return &c, nil
}

// UpdateOwned 更新评论内容（owner-scoped）。
// 评论不存在与非作者访问统一返回 ErrCommentNotFound。
func (r *CommentRepository) UpdateOwned(ctx context.Context, sess txmanager.Session, commentID, ownerID uuid.UUID, content string) (*po.Comment, error) {
	query := `
		UPDATE media.comments
		SET content = $3, updated_at = now()
		WHERE comment_id = $1 AND owner_id = $2
		RETURNING comment_id, media_id, owner_id, content, created_at, updated_at
	`

	var c po.Comment
	err := pick(r.pool, sess).QueryRow(ctx, query, commentID, ownerID, content).Scan(
		&c.CommentID, &c.MediaID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		r.log.WithContext(ctx).Errorf("UpdateOwned comment failed: %v", err)
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &c, nil
}

// DeleteOwned 删除评论（owner-scoped）。
func (r *CommentRepository) DeleteOwned(ctx context.Context, sess txmanager.Session, commentID, ownerID uuid.UUID) error {
	query := `
		DELETE FROM media.comments
		WHERE comment_id = $1 AND owner_id = $2
	`

	tag, err := pick(r.pool, sess).Exec(ctx, query, commentID, ownerID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("DeleteOwned comment failed: %v", err)
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// ListByMedia 查询媒体下的评论，按创建时间倒序分页。
func (r *CommentRepository) ListByMedia(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID, limit, offset int) ([]*po.Comment, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	var total int64
	err := pick(r.pool, sess).QueryRow(ctx,
		`SELECT count(*) FROM media.comments WHERE media_id = $1`, mediaID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query := `
		SELECT comment_id, media_id, owner_id, content, created_at, updated_at
		FROM media.comments
		WHERE media_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := pick(r.pool, sess).Query(ctx, query, mediaID, limit, offset)
	if err != nil {
		r.log.WithContext(ctx).Errorf("ListByMedia failed: %v", err)
		return nil, 0, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []*po.Comment
	for rows.Next() {
		var c po.Comment
		if err := rows.Scan(&c.CommentID, &c.MediaID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate comment rows: %w", err)
	}
	return comments, total, nil
}

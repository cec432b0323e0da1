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

// EngagementRepository 维护点赞与订阅的唯一对表：
// media.media_likes、media.comment_likes、media.subscriptions。
// 开关语义：先尝试 DELETE，未删到任何行则 INSERT ... ON CONFLICT DO NOTHING；
// 两条语句在同一事务内执行时，任意并发交错收敛为单次状态翻转。
type EngagementRepository struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

// NewEngagementRepository 构造互动仓储。
func NewEngagementRepository(pool *pgxpool.Pool, logger log.Logger) *EngagementRepository {
	return &EngagementRepository{
		pool: pool,
		log:  log.NewHelper(logger),
	}
}

// ToggleMediaLike 翻转用户对媒体的点赞，返回翻转后是否处于点赞态。
func (r *EngagementRepository) ToggleMediaLike(ctx context.Context, sess txmanager.Session, userID, mediaID uuid.UUID) (bool, error) {
	return r.togglePair(ctx, sess, "media_likes", "media_id", userID, mediaID)
}

// ToggleCommentLike 翻转用户对评论的点赞。
func (r *EngagementRepository) ToggleCommentLike(ctx context.Context, sess txmanager.Session, userID, commentID uuid.UUID) (bool, error) {
	return r.togglePair(ctx, sess, "comment_likes", "comment_id", userID, commentID)
}

// togglePair 对 (user_id, <target>) 唯一对执行一次开关。
// 表名与列名来自固定的内部白名单，不拼接外部输入。
func (r *EngagementRepository) togglePair(ctx context.Context, sess txmanager.Session, table, targetCol string, userID, targetID uuid.UUID) (bool, error) {
	q := pick(r.pool, sess)

	deleteQuery := fmt.Sprintf(`DELETE FROM media.%s WHERE user_id = $1 AND %s = $2`, table, targetCol)
	tag, err := q.Exec(ctx, deleteQuery, userID, targetID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("toggle %s delete failed: %v", table, err)
		return false, fmt.Errorf("toggle %s: %w", table, err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO media.%s (user_id, %s, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT DO NOTHING`, table, targetCol)
	if _, err := q.Exec(ctx, insertQuery, userID, targetID); err != nil {
		r.log.WithContext(ctx).Errorf("toggle %s insert failed: %v", table, err)
		return false, fmt.Errorf("toggle %s: %w", table, err)
	}
	return true, nil
}

// ToggleSubscription 翻转订阅关系，返回翻转后是否处于订阅态。
func (r *EngagementRepository) ToggleSubscription(ctx context.Context, sess txmanager.Session, subscriberID, channelID uuid.UUID) (bool, error) {
	q := pick(r.pool, sess)

	tag, err := q.Exec(ctx,
		`DELETE FROM media.subscriptions WHERE subscriber_id = $1 AND channel_id = $2`,
		subscriberID, channelID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("toggle subscription delete failed: %v", err)
		return false, fmt.Errorf("toggle subscription: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	if _, err := q.Exec(ctx, `
		INSERT INTO media.subscriptions (subscriber_id, channel_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT DO NOTHING`,
		subscriberID, channelID); err != nil {
		r.log.WithContext(ctx).Errorf("toggle subscription insert failed: %v", err)
		return false, fmt.Errorf("toggle subscription: %w", err)
	}
	return true, nil
}

// MediaLikeCount 返回媒体的点赞数。
func (r *EngagementRepository) MediaLikeCount(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID) (int64, error) {
	var count int64
	err := pick(r.pool, sess).QueryRow(ctx,
		`SELECT count(*) FROM media.media_likes WHERE media_id = $1`, mediaID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count media likes: %w", err)
	}
	return count, nil
}

// LikedByUser 判断用户是否点赞了指定媒体。
func (r *EngagementRepository) LikedByUser(ctx context.Context, sess txmanager.Session, userID, mediaID uuid.UUID) (bool, error) {
	var liked bool
	err := pick(r.pool, sess).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM media.media_likes WHERE user_id = $1 AND media_id = $2)`,
		userID, mediaID).Scan(&liked)
	if err != nil {
		return false, fmt.Errorf("check media like: %w", err)
	}
	return liked, nil
}

// SubscriberCount 返回频道的订阅者数。
func (r *EngagementRepository) SubscriberCount(ctx context.Context, sess txmanager.Session, channelID uuid.UUID) (int64, error) {
	var count int64
	err := pick(r.pool, sess).QueryRow(ctx,
		`SELECT count(*) FROM media.subscriptions WHERE channel_id = $1`, channelID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return count, nil
}

// IsSubscribed 判断用户是否订阅了指定频道。
func (r *EngagementRepository) IsSubscribed(ctx context.Context, sess txmanager.Session, subscriberID, channelID uuid.UUID) (bool, error) {
	var subscribed bool
	err := pick(r.pool, sess).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM media.subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`,
		subscriberID, channelID).Scan(&subscribed)
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return subscribed, nil
}

// CommentLikeCounts 批量查询评论点赞数，返回 comment_id -> count。
// 用于评论列表的应用层关联，避免 N+1 查询。
func (r *EngagementRepository) CommentLikeCounts(ctx context.Context, sess txmanager.Session, commentIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(commentIDs))
	if len(commentIDs) == 0 {
		return counts, nil
	}

	rows, err := pick(r.pool, sess).Query(ctx, `
		SELECT comment_id, count(*)
		FROM media.comment_likes
		WHERE comment_id = ANY($1)
		GROUP BY comment_id`, commentIDs)
	if err != nil {
		return nil, fmt.Errorf("count comment likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan comment like count: %w", err)
		}
		counts[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment like counts: %w", err)
	}
	return counts, nil
}

// ListLikedMedia 查询用户点赞过的媒体，按点赞时间倒序。
func (r *EngagementRepository) ListLikedMedia(ctx context.Context, sess txmanager.Session, userID uuid.UUID, limit, offset int) ([]*po.MediaAsset, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	var total int64
	err := pick(r.pool, sess).QueryRow(ctx,
		`SELECT count(*) FROM media.media_likes WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count liked media: %w", err)
	}

	query := `
		SELECT
			m.media_id, m.owner_id, m.title, m.description, m.primary_url, m.preview_url,
			m.duration_seconds, m.view_count, m.is_published, m.created_at, m.updated_at
		FROM media.media_likes l
		JOIN media.media_assets m ON m.media_id = l.media_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := pick(r.pool, sess).Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.WithContext(ctx).Errorf("ListLikedMedia failed: %v", err)
		return nil, 0, fmt.Errorf("query liked media: %w", err)
	}
	defer rows.Close()

	var assets []*po.MediaAsset
	for rows.Next() {
		var asset po.MediaAsset
		err := rows.Scan(
			&asset.MediaID, &asset.OwnerID, &asset.Title, &asset.Description,
			&asset.PrimaryURL, &asset.PreviewURL,
			&asset.DurationSeconds, &asset.ViewCount, &asset.IsPublished,
			&asset.CreatedAt, &asset.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan liked media row: %w", err)
		}
		assets = append(assets, &asset)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate liked media rows: %w", err)
	}
	return assets, total, nil
}

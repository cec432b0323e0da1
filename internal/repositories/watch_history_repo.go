package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WatchHistoryRepository 维护 media.watch_history 表。
// (user_id, media_id) 唯一，历史头部即 watched_at 最大的一行；
// 「移动到头部」通过 upsert watched_at=now() 实现，单次往返。
type WatchHistoryRepository struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

// NewWatchHistoryRepository 构造观看历史仓储。
func NewWatchHistoryRepository(pool *pgxpool.Pool, logger log.Logger) *WatchHistoryRepository {
	return &WatchHistoryRepository{
		pool: pool,
		log:  log.NewHelper(logger),
	}
}

// Head 返回用户观看历史头部的 media_id；历史为空时返回 uuid.Nil。
func (r *WatchHistoryRepository) Head(ctx context.Context, sess txmanager.Session, userID uuid.UUID) (uuid.UUID, error) {
	query := `
		SELECT media_id
		FROM media.watch_history
		WHERE user_id = $1
		ORDER BY watched_at DESC
		LIMIT 1
	`

	var mediaID uuid.UUID
	err := pick(r.pool, sess).QueryRow(ctx, query, userID).Scan(&mediaID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil
		}
		r.log.WithContext(ctx).Errorf("Head failed: %v", err)
		return uuid.Nil, fmt.Errorf("query watch history head: %w", err)
	}
	return mediaID, nil
}

// Touch 将 (user, media) 移动到历史头部：不存在则插入，存在则刷新 watched_at。
func (r *WatchHistoryRepository) Touch(ctx context.Context, sess txmanager.Session, userID, mediaID uuid.UUID) error {
	query := `
		INSERT INTO media.watch_history (user_id, media_id, watched_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, media_id) DO UPDATE SET watched_at = now()
	`

	if _, err := pick(r.pool, sess).Exec(ctx, query, userID, mediaID); err != nil {
		r.log.WithContext(ctx).Errorf("Touch failed: %v", err)
		return fmt.Errorf("touch watch history: %w", err)
	}
	return nil
}

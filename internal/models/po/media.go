// Package po 定义面向持久化的数据对象（Persistent Objects），由 Repository 层使用。
// PO 对象映射数据库表结构，不直接暴露给上层业务逻辑。
package po

import (
	"time"

	"github.com/google/uuid"
)

// MediaAsset 表示 media.media_assets 表的数据库实体。
// 发布 saga 成功后整行一次写入；blob URL 与记录行共同构成资产的全部持久状态。
type MediaAsset struct {
	MediaID         uuid.UUID `db:"media_id"`         // 主键（UUID v4）
	OwnerID         uuid.UUID `db:"owner_id"`         // 发布者用户 ID
	Title           string    `db:"title"`            // 标题（必填）
	Description     string    `db:"description"`      // 描述（必填，可为空串）
	PrimaryURL      string    `db:"primary_url"`      // 主媒体 blob URL
	PreviewURL      *string   `db:"preview_url"`      // 预览图 blob URL（可选）
	DurationSeconds float64   `db:"duration_seconds"` // 时长（秒，探测失败时为 0）
	ViewCount       int64     `db:"view_count"`       // 观看计数（>=0）
	IsPublished     bool      `db:"is_published"`     // 对外可见性
	CreatedAt       time.Time `db:"created_at"`       // 记录创建时间
	UpdatedAt       time.Time `db:"updated_at"`       // 最近更新时间
}

// WatchEntry 表示 media.watch_history 表的一行。
// (user_id, media_id) 唯一；观看历史头部 = watched_at 最大的一行。
type WatchEntry struct {
	UserID    uuid.UUID `db:"user_id"`
	MediaID   uuid.UUID `db:"media_id"`
	WatchedAt time.Time `db:"watched_at"`
}

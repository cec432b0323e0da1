// Package vo 定义视图对象（View Objects），用于向上层传递业务数据。
// VO 对象由 Service 层返回，经控制器序列化为 API 响应，隔离内部数据结构。
package vo

import (
	"time"

	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/google/uuid"
)

// MediaSummary 封装媒体列表项视图。
type MediaSummary struct {
	MediaID         uuid.UUID `json:"media_id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	PreviewURL      *string   `json:"preview_url"`
	DurationSeconds float64   `json:"duration_seconds"`
	ViewCount       int64     `json:"view_count"`
	IsPublished     bool      `json:"is_published"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewMediaSummary 从持久化实体构造列表项视图。
func NewMediaSummary(asset *po.MediaAsset) *MediaSummary {
	if asset == nil {
		return nil
	}
	return &MediaSummary{
		MediaID:         asset.MediaID,
		OwnerID:         asset.OwnerID,
		Title:           asset.Title,
		Description:     asset.Description,
		PreviewURL:      asset.PreviewURL,
		DurationSeconds: asset.DurationSeconds,
		ViewCount:       asset.ViewCount,
		IsPublished:     asset.IsPublished,
		CreatedAt:       asset.CreatedAt,
	}
}

// MediaPage 封装分页列表结果。
type MediaPage struct {
	Items []*MediaSummary `json:"items"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
	Total int64           `json:"total"`
}

// MediaDetail 封装详情视图：资产元数据 + 互动聚合 + 限时播放 URL。
type MediaDetail struct {
	MediaID         uuid.UUID `json:"media_id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationSeconds float64   `json:"duration_seconds"`
	ViewCount       int64     `json:"view_count"`
	IsPublished     bool      `json:"is_published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// 播放相关（V4 签名 URL，限时有效）
	PlaybackURL        string    `json:"playback_url"`
	PreviewPlaybackURL *string   `json:"preview_playback_url"`
	PlaybackExpiresAt  time.Time `json:"playback_expires_at"`

	// 互动聚合
	LikeCount          int64 `json:"like_count"`
	LikedByViewer      bool  `json:"liked_by_viewer"`
	SubscriberCount    int64 `json:"subscriber_count"`
	SubscribedByViewer bool  `json:"subscribed_by_viewer"`
}

// MediaCreated 封装发布操作的结果视图。
type MediaCreated struct {
	MediaID     uuid.UUID `json:"media_id"`
	Title       string    `json:"title"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMediaCreated 从持久化实体构造发布结果视图。
func NewMediaCreated(asset *po.MediaAsset) *MediaCreated {
	if asset == nil {
		return nil
	}
	return &MediaCreated{
		MediaID:     asset.MediaID,
		Title:       asset.Title,
		IsPublished: asset.IsPublished,
		CreatedAt:   asset.CreatedAt,
	}
}

// PublishState 封装发布开关翻转后的最新状态。
type PublishState struct {
	MediaID     uuid.UUID `json:"media_id"`
	IsPublished bool      `json:"is_published"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Package events 定义发布到 Pub/Sub 的媒体生命周期事件。
// 事件为 JSON 负载 + 字符串属性，供下游 feed/搜索服务消费。
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/google/uuid"
)

// 事件类型常量。
const (
	KindMediaPublished = "media.published"
	KindMediaDeleted   = "media.deleted"

	// SchemaVersion 标识事件负载的结构版本。
	SchemaVersion = "v1"
)

// Envelope 是生命周期事件的统一负载。
type Envelope struct {
	EventID    uuid.UUID `json:"event_id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	MediaID    uuid.UUID `json:"media_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Title      string    `json:"title,omitempty"`
	Published  bool      `json:"published,omitempty"`
}

// NewMediaPublished 从资产实体构造 media.published 事件。
func NewMediaPublished(asset *po.MediaAsset, eventID uuid.UUID, occurredAt time.Time) (Envelope, error) {
	if asset == nil {
		return Envelope{}, errors.New("media asset is required")
	}
	return Envelope{
		EventID:    eventID,
		Kind:       KindMediaPublished,
		OccurredAt: occurredAt.UTC(),
		MediaID:    asset.MediaID,
		OwnerID:    asset.OwnerID,
		Title:      asset.Title,
		Published:  asset.IsPublished,
	}, nil
}

// NewMediaDeleted 构造 media.deleted 事件。
func NewMediaDeleted(mediaID, ownerID, eventID uuid.UUID, occurredAt time.Time) Envelope {
	return Envelope{
		EventID:    eventID,
		Kind:       KindMediaDeleted,
		OccurredAt: occurredAt.UTC(),
		MediaID:    mediaID,
		OwnerID:    ownerID,
	}
}

// Marshal 序列化事件负载并返回消息属性。
// 属性用于订阅端在解码前做过滤与幂等判定。
func (e Envelope) Marshal() ([]byte, map[string]string, error) {
	if e.EventID == uuid.Nil {
		return nil, nil, errors.New("event id is required")
	}
	if e.Kind == "" {
		return nil, nil, errors.New("event kind is required")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal %s event: %w", e.Kind, err)
	}
	attrs := map[string]string{
		"event_id":       e.EventID.String(),
		"event_type":     e.Kind,
		"media_id":       e.MediaID.String(),
		"schema_version": SchemaVersion,
	}
	return data, attrs, nil
}

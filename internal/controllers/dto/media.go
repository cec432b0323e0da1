// Package dto 负责 HTTP 请求的解析与校验，隔离传输层与业务输入。
package dto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ParseID 解析路径中的 UUID 参数。
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return id, nil
}

// PageParams 表示分页查询参数。
type PageParams struct {
	Page int
	Size int
}

// ParsePageParams 从查询串解析分页参数，非法值回退为 0 交由服务层规范化。
func ParsePageParams(rawPage, rawSize string) PageParams {
	return PageParams{
		Page: parseIntOrZero(rawPage),
		Size: parseIntOrZero(rawSize),
	}
}

func parseIntOrZero(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ParseBoolField 解析表单中的布尔字段（"true"/"1" 为真）。
func ParseBoolField(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// UpdateMediaRequest 表示元数据更新请求体（nil 字段保留原值）。
type UpdateMediaRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// AffectedResponse 表示批量操作影响的行数。
type AffectedResponse struct {
	Affected int64 `json:"affected"`
}

// UnreadCountResponse 表示未读通知数。
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// CommentRequest 表示创建/更新评论的请求体。
type CommentRequest struct {
	Content string `json:"content"`
}

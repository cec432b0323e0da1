// Package services 封装业务用例编排：发布 saga、资产写操作、
// 观看记录、互动开关与通知扇出。对外错误统一为 kratos errors。
package services

import "github.com/go-kratos/kratos/v2/errors"

// 对外错误码（reason），由网关与客户端消费。
const (
	ReasonMediaNotFound         = "MEDIA_NOT_FOUND"
	ReasonCommentNotFound       = "COMMENT_NOT_FOUND"
	ReasonNotificationNotFound  = "NOTIFICATION_NOT_FOUND"
	ReasonMediaValidationFailed = "MEDIA_VALIDATION_FAILED"
	ReasonCommentInvalid        = "COMMENT_INVALID"
	ReasonEngagementInvalid     = "ENGAGEMENT_INVALID"
	ReasonPublishFailed         = "MEDIA_PUBLISH_FAILED"
	ReasonMutationFailed        = "MEDIA_MUTATION_FAILED"
	ReasonQueryFailed           = "MEDIA_QUERY_FAILED"
	ReasonQueryTimeout          = "QUERY_TIMEOUT"
	ReasonUnauthenticated       = "UNAUTHENTICATED"
)

// 哨兵错误。记录不存在与越权访问统一映射为 404，不泄露资产存在性。
var (
	ErrMediaNotFound        = errors.NotFound(ReasonMediaNotFound, "media not found")
	ErrCommentNotFound      = errors.NotFound(ReasonCommentNotFound, "comment not found")
	ErrNotificationNotFound = errors.NotFound(ReasonNotificationNotFound, "notification not found")
)

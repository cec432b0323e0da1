// Package controllers 暴露 HTTP Handler，负责请求解析、身份提取与超时控制，
// 将业务逻辑委托给 Service 层。
package controllers

import (
	"context"
	nethttp "net/http"
	"strings"
	"time"

	configloader "github.com/bionicotaku/lingo-services-media/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-media/internal/metadata"
	"github.com/bionicotaku/lingo-services-media/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/google/uuid"
)

// HandlerType 表示 Handler 的语义类别，用于选择超时策略。
type HandlerType int

const (
	// HandlerTypeDefault 表示未显式区分的 Handler。
	HandlerTypeDefault HandlerType = iota
	// HandlerTypeCommand 表示写操作 Handler。
	HandlerTypeCommand
	// HandlerTypeQuery 表示查询 Handler。
	HandlerTypeQuery
	// HandlerTypeUpload 表示携带文件搬运的 Handler，超时显著更长。
	HandlerTypeUpload
)

// HandlerTimeouts 聚合不同类型 Handler 的超时策略。
type HandlerTimeouts struct {
	Default time.Duration
	Command time.Duration
	Query   time.Duration
	Upload  time.Duration
}

const (
	fallbackDefaultTimeout = 5 * time.Second
	fallbackQueryTimeout   = 3 * time.Second
	fallbackUploadTimeout  = 90 * time.Second

	headerUserID         = "x-md-global-user-id"
	headerIdempotencyKey = "x-md-idempotency-key"
	headerIfMatch        = "x-md-if-match"
	headerIfNoneMatch    = "x-md-if-none-match"
)

// ProvideHandlerTimeouts 从服务器配置映射超时策略。
func ProvideHandlerTimeouts(cfg configloader.ServerConfig) HandlerTimeouts {
	return HandlerTimeouts{
		Default: cfg.Handler.Default,
		Command: cfg.Handler.Command,
		Query:   cfg.Handler.Query,
		Upload:  cfg.Handler.Upload,
	}
}

// BaseHandler 提供公共的超时与 Header 解析能力，供具体 Handler 内嵌复用。
type BaseHandler struct {
	timeouts HandlerTimeouts
}

// NewBaseHandler 构造基础 Handler，并为缺省值填充合理的回退策略。
func NewBaseHandler(timeouts HandlerTimeouts) *BaseHandler {
	if timeouts.Default <= 0 {
		if timeouts.Command > 0 {
			timeouts.Default = timeouts.Command
		} else if timeouts.Query > 0 {
			timeouts.Default = timeouts.Query
		} else {
			timeouts.Default = fallbackDefaultTimeout
		}
	}
	if timeouts.Command <= 0 {
		timeouts.Command = timeouts.Default
	}
	if timeouts.Query <= 0 {
		timeouts.Query = fallbackQueryTimeout
	}
	if timeouts.Upload <= 0 {
		timeouts.Upload = fallbackUploadTimeout
	}
	return &BaseHandler{timeouts: timeouts}
}

// WithTimeout 根据 Handler 类型包装上下文，返回绑定超时的新 Context 与取消函数。
func (h *BaseHandler) WithTimeout(ctx context.Context, kind HandlerType) (context.Context, context.CancelFunc) {
	if h == nil {
		return context.WithTimeout(ctx, fallbackDefaultTimeout)
	}
	var timeout time.Duration
	switch kind {
	case HandlerTypeCommand:
		timeout = h.timeouts.Command
	case HandlerTypeQuery:
		timeout = h.timeouts.Query
	case HandlerTypeUpload:
		timeout = h.timeouts.Upload
	default:
		timeout = h.timeouts.Default
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// ExtractMetadata 从 HTTP Header 解析网关注入的身份与条件请求信息。
func (h *BaseHandler) ExtractMetadata(header nethttp.Header) metadata.HandlerMetadata {
	return metadata.HandlerMetadata{
		IdempotencyKey: strings.TrimSpace(header.Get(headerIdempotencyKey)),
		IfMatch:        strings.TrimSpace(header.Get(headerIfMatch)),
		IfNoneMatch:    strings.TrimSpace(header.Get(headerIfNoneMatch)),
		UserID:         strings.TrimSpace(header.Get(headerUserID)),
	}
}

// RequireUser 解析网关注入的用户身份。缺失返回 401，格式非法返回 400。
func (h *BaseHandler) RequireUser(header nethttp.Header) (uuid.UUID, error) {
	raw := strings.TrimSpace(header.Get(headerUserID))
	if raw == "" {
		return uuid.Nil, errors.Unauthorized(services.ReasonUnauthenticated, "missing user identity header")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.BadRequest(services.ReasonUnauthenticated, "malformed user identity header")
	}
	return userID, nil
}

// OptionalUser 解析用户身份；Header 缺失时返回 uuid.Nil，格式非法返回 400。
func (h *BaseHandler) OptionalUser(header nethttp.Header) (uuid.UUID, error) {
	raw := strings.TrimSpace(header.Get(headerUserID))
	if raw == "" {
		return uuid.Nil, nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.BadRequest(services.ReasonUnauthenticated, "malformed user identity header")
	}
	return userID, nil
}

// PrepareContext 绑定超时并注入 Header 元信息，返回的 cancel 必须被调用。
func (h *BaseHandler) PrepareContext(ctx context.Context, header nethttp.Header, kind HandlerType) (context.Context, context.CancelFunc) {
	meta := h.ExtractMetadata(header)
	timeoutCtx, cancel := h.WithTimeout(ctx, kind)
	return metadata.Inject(timeoutCtx, meta), cancel
}

package controllers

import (
	nethttp "net/http"

	"github.com/bionicotaku/lingo-services-media/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-media/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// NotificationHandler 负责通知消费面路由。
type NotificationHandler struct {
	*BaseHandler
	svc *services.NotificationService
	log *log.Helper
}

// NewNotificationHandler 构造通知 Handler。
func NewNotificationHandler(svc *services.NotificationService, base *BaseHandler, logger log.Logger) *NotificationHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &NotificationHandler{BaseHandler: base, svc: svc, log: log.NewHelper(logger)}
}

// Register 挂载通知路由。
func (h *NotificationHandler) Register(r *khttp.Router) {
	r.GET("/notifications", h.List)
	r.GET("/notifications/unread-count", h.UnreadCount)
	r.POST("/notifications/{id}/read", h.MarkRead)
	r.POST("/notifications/read-all", h.MarkAllRead)
	r.DELETE("/notifications", h.DeleteAll)
}

// List 分页返回当前用户的通知。
func (h *NotificationHandler) List(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	query := req.URL.Query()
	page := dto.ParsePageParams(query.Get("page"), query.Get("size"))

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeQuery)
	defer cancel()

	result, err := h.svc.List(timeoutCtx, userID, page.Page, page.Size)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, result)
}

// UnreadCount 返回未读通知数。
func (h *NotificationHandler) UnreadCount(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeQuery)
	defer cancel()

	count, err := h.svc.UnreadCount(timeoutCtx, userID)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, &dto.UnreadCountResponse{Unread: count})
}

// MarkRead 将单条通知标记为已读。
func (h *NotificationHandler) MarkRead(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	notificationID, err := dto.ParseID("notification id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonNotificationNotFound, err.Error())
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeCommand)
	defer cancel()

	if err := h.svc.MarkRead(timeoutCtx, notificationID, userID); err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusNoContent, nil)
}

// MarkAllRead 将全部通知标记为已读。
func (h *NotificationHandler) MarkAllRead(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeCommand)
	defer cancel()

	affected, err := h.svc.MarkAllRead(timeoutCtx, userID)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, &dto.AffectedResponse{Affected: affected})
}

// DeleteAll 清空当前用户的全部通知。
func (h *NotificationHandler) DeleteAll(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeCommand)
	defer cancel()

	deleted, err := h.svc.DeleteAll(timeoutCtx, userID)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, &dto.AffectedResponse{Affected: deleted})
}

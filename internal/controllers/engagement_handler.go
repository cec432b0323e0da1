package controllers

import (
	nethttp "net/http"

	"github.com/bionicotaku/lingo-services-media/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-media/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// EngagementHandler 负责互动开关路由：媒体/评论点赞与频道订阅。
type EngagementHandler struct {
	*BaseHandler
	svc *services.EngagementService
	log *log.Helper
}

// NewEngagementHandler 构造互动 Handler。
func NewEngagementHandler(svc *services.EngagementService, base *BaseHandler, logger log.Logger) *EngagementHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &EngagementHandler{BaseHandler: base, svc: svc, log: log.NewHelper(logger)}
}

// Register 挂载互动路由。
func (h *EngagementHandler) Register(r *khttp.Router) {
	r.POST("/media/{id}/like-toggle", h.ToggleMediaLike)
	r.POST("/comments/{id}/like-toggle", h.ToggleCommentLike)
	r.POST("/channels/{id}/subscribe-toggle", h.ToggleSubscription)
}

// ToggleMediaLike 翻转媒体点赞。
func (h *EngagementHandler) ToggleMediaLike(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	mediaID, err := dto.ParseID("media id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonEngagementInvalid, err.Error())
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeCommand)
	defer cancel()

	state, err := h.svc.ToggleMediaLike(timeoutCtx, userID, mediaID)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, state)
}

// ToggleCommentLike 翻转评论点赞。
func (h *EngagementHandler) ToggleCommentLike(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	commentID, err := dto.ParseID("comment id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonEngagementInvalid, err.Error())
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeCommand)
	defer cancel()

	state, err := h.svc.ToggleCommentLike(timeoutCtx, userID, commentID)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, state)
}

// ToggleSubscription 翻转频道订阅。
func (h *EngagementHandler) ToggleSubscription(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	channelID, err := dto.ParseID("channel id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonEngagementInvalid, err.Error())
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeCommand)
	defer cancel()

	state, err := h.svc.ToggleSubscription(timeoutCtx, userID, channelID)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, state)
}

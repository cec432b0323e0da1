package controllers

import (
	nethttp "net/http"

	"github.com/bionicotaku/lingo-services-media/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-media/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// MediaQueryHandler 负责媒体读路由：公开列表、owner 列表、
// 点赞列表与详情。
type MediaQueryHandler struct {
	*BaseHandler
	queries  *services.MediaQueryService
	playback *services.PlaybackService
	log      *log.Helper
}

// NewMediaQueryHandler 构造媒体读 Handler。
func NewMediaQueryHandler(queries *services.MediaQueryService, playback *services.PlaybackService, base *BaseHandler, logger log.Logger) *MediaQueryHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &MediaQueryHandler{
		BaseHandler: base,
		queries:     queries,
		playback:    playback,
		log:         log.NewHelper(logger),
	}
}

// Register 挂载媒体读路由。
func (h *MediaQueryHandler) Register(r *khttp.Router) {
	r.GET("/media", h.ListPublished)
	r.GET("/media/owner/{ownerID}", h.ListByOwner)
	r.GET("/media/{id}", h.GetDetail)
	r.GET("/likes/media", h.ListLiked)
}

// ListPublished 返回公开媒体列表（无需身份）。
func (h *MediaQueryHandler) ListPublished(ctx khttp.Context) error {
	req := ctx.Request()
	query := req.URL.Query()
	page := dto.ParsePageParams(query.Get("page"), query.Get("size"))

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeQuery)
	defer cancel()

	result, err := h.queries.ListPublished(timeoutCtx, query.Get("query"), page.Page, page.Size)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, result)
}

// ListByOwner 返回指定 owner 的媒体列表。
// 身份 Header 可选：owner 本人可见未发布资产。
func (h *MediaQueryHandler) ListByOwner(ctx khttp.Context) error {
	req := ctx.Request()
	viewerID, err := h.OptionalUser(req.Header)
	if err != nil {
		return err
	}
	ownerID, err := dto.ParseID("owner id", ctx.Vars().Get("ownerID"))
	if err != nil {
		return errors.BadRequest(services.ReasonMediaValidationFailed, err.Error())
	}
	query := req.URL.Query()
	page := dto.ParsePageParams(query.Get("page"), query.Get("size"))

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeQuery)
	defer cancel()

	result, err := h.queries.ListByOwner(timeoutCtx, ownerID, viewerID, page.Page, page.Size)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, result)
}

// GetDetail 返回媒体详情，并在已发布时记录一次观看。
func (h *MediaQueryHandler) GetDetail(ctx khttp.Context) error {
	req := ctx.Request()
	viewerID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	mediaID, err := dto.ParseID("media id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonMediaValidationFailed, err.Error())
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeQuery)
	defer cancel()

	detail, err := h.playback.GetDetail(timeoutCtx, mediaID, viewerID)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, detail)
}

// ListLiked 返回当前用户点赞过的媒体列表。
func (h *MediaQueryHandler) ListLiked(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	query := req.URL.Query()
	page := dto.ParsePageParams(query.Get("page"), query.Get("size"))

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeQuery)
	defer cancel()

	result, err := h.queries.ListLiked(timeoutCtx, userID, page.Page, page.Size)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, result)
}

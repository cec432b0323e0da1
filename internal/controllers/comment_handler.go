package controllers

import (
	nethttp "net/http"

	"github.com/bionicotaku/lingo-services-media/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-media/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// CommentHandler 负责评论路由：创建、更新、删除与按媒体列出。
type CommentHandler struct {
	*BaseHandler
	svc *services.CommentService
	log *log.Helper
}

// NewCommentHandler 构造评论 Handler。
func NewCommentHandler(svc *services.CommentService, base *BaseHandler, logger log.Logger) *CommentHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &CommentHandler{BaseHandler: base, svc: svc, log: log.NewHelper(logger)}
}

// Register 挂载评论路由。
func (h *CommentHandler) Register(r *khttp.Router) {
	r.POST("/media/{id}/comments", h.AddComment)
	r.GET("/media/{id}/comments", h.ListComments)
	r.PATCH("/comments/{id}", h.UpdateComment)
	r.DELETE("/comments/{id}", h.DeleteComment)
}

// AddComment 创建评论。
func (h *CommentHandler) AddComment(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	mediaID, err := dto.ParseID("media id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonCommentInvalid, err.Error())
	}
	var body dto.CommentRequest
	if err := ctx.Bind(&body); err != nil {
		return errors.BadRequest(services.ReasonCommentInvalid, "malformed request body")
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeCommand)
	defer cancel()

	created, err := h.svc.AddComment(timeoutCtx, services.AddCommentInput{
		MediaID:  mediaID,
		AuthorID: userID,
		Content:  body.Content,
	})
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusCreated, created)
}

// ListComments 按媒体分页列出评论（无需身份）。
func (h *CommentHandler) ListComments(ctx khttp.Context) error {
	req := ctx.Request()
	mediaID, err := dto.ParseID("media id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonCommentInvalid, err.Error())
	}
	query := req.URL.Query()
	page := dto.ParsePageParams(query.Get("page"), query.Get("size"))

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeQuery)
	defer cancel()

	result, err := h.svc.ListComments(timeoutCtx, mediaID, page.Page, page.Size)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, result)
}

// UpdateComment 更新评论内容（仅作者）。
func (h *CommentHandler) UpdateComment(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	commentID, err := dto.ParseID("comment id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonCommentInvalid, err.Error())
	}
	var body dto.CommentRequest
	if err := ctx.Bind(&body); err != nil {
		return errors.BadRequest(services.ReasonCommentInvalid, "malformed request body")
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeCommand)
	defer cancel()

	updated, err := h.svc.UpdateComment(timeoutCtx, commentID, userID, body.Content)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, updated)
}

// DeleteComment 删除评论（仅作者）。
func (h *CommentHandler) DeleteComment(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	commentID, err := dto.ParseID("comment id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonCommentInvalid, err.Error())
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeCommand)
	defer cancel()

	if err := h.svc.DeleteComment(timeoutCtx, commentID, userID); err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusNoContent, nil)
}

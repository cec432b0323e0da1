package controllers

import (
	"mime/multipart"
	nethttp "net/http"

	"github.com/bionicotaku/lingo-services-media/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-media/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// multipart 表单解析的内存上限，超出部分落盘。
const maxMultipartMemory = 32 << 20

// MediaCommandHandler 负责媒体写操作路由：发布、元数据更新、
// 预览图替换、删除与发布开关。
type MediaCommandHandler struct {
	*BaseHandler
	publish  *services.PublishService
	commands *services.MediaCommandService
	log      *log.Helper
}

// NewMediaCommandHandler 构造媒体写 Handler。
func NewMediaCommandHandler(publish *services.PublishService, commands *services.MediaCommandService, base *BaseHandler, logger log.Logger) *MediaCommandHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &MediaCommandHandler{
		BaseHandler: base,
		publish:     publish,
		commands:    commands,
		log:         log.NewHelper(logger),
	}
}

// Register 挂载媒体写路由。
func (h *MediaCommandHandler) Register(r *khttp.Router) {
	r.POST("/media", h.Publish)
	r.PATCH("/media/{id}", h.UpdateMetadata)
	r.PUT("/media/{id}/preview", h.ReplacePreview)
	r.DELETE("/media/{id}", h.Delete)
	r.POST("/media/{id}/publish-toggle", h.TogglePublish)
}

// Publish 处理 multipart 发布请求。
func (h *MediaCommandHandler) Publish(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	if err := req.ParseMultipartForm(maxMultipartMemory); err != nil {
		return errors.BadRequest(services.ReasonMediaValidationFailed, "malformed multipart form")
	}

	input := services.PublishMediaInput{
		OwnerID:     userID,
		Title:       req.FormValue("title"),
		Description: req.FormValue("description"),
		Published:   dto.ParseBoolField(req.FormValue("published")),
		Primary:     firstFile(req.MultipartForm, "primary"),
		Preview:     firstFile(req.MultipartForm, "preview"),
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeUpload)
	defer cancel()

	created, err := h.publish.Publish(timeoutCtx, input)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusCreated, created)
}

// UpdateMetadata 处理元数据更新请求。
func (h *MediaCommandHandler) UpdateMetadata(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	mediaID, err := dto.ParseID("media id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonMediaValidationFailed, err.Error())
	}

	var body dto.UpdateMediaRequest
	if err := ctx.Bind(&body); err != nil {
		return errors.BadRequest(services.ReasonMediaValidationFailed, "malformed request body")
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeCommand)
	defer cancel()

	updated, err := h.commands.UpdateMetadata(timeoutCtx, services.UpdateMetadataInput{
		MediaID:     mediaID,
		OwnerID:     userID,
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, updated)
}

// ReplacePreview 处理预览图替换请求。
func (h *MediaCommandHandler) ReplacePreview(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	mediaID, err := dto.ParseID("media id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonMediaValidationFailed, err.Error())
	}
	if err := req.ParseMultipartForm(maxMultipartMemory); err != nil {
		return errors.BadRequest(services.ReasonMediaValidationFailed, "malformed multipart form")
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeUpload)
	defer cancel()

	updated, err := h.commands.ReplacePreview(timeoutCtx, services.ReplacePreviewInput{
		MediaID: mediaID,
		OwnerID: userID,
		Preview: firstFile(req.MultipartForm, "preview"),
	})
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, updated)
}

// Delete 处理资产删除请求。
func (h *MediaCommandHandler) Delete(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	mediaID, err := dto.ParseID("media id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonMediaValidationFailed, err.Error())
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeCommand)
	defer cancel()

	if err := h.commands.Delete(timeoutCtx, mediaID, userID); err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusNoContent, nil)
}

// TogglePublish 处理发布开关请求。
func (h *MediaCommandHandler) TogglePublish(ctx khttp.Context) error {
	req := ctx.Request()
	userID, err := h.RequireUser(req.Header)
	if err != nil {
		return err
	}
	mediaID, err := dto.ParseID("media id", ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonMediaValidationFailed, err.Error())
	}

	timeoutCtx, cancel := h.PrepareContext(ctx, req.Header, HandlerTypeCommand)
	defer cancel()

	state, err := h.commands.TogglePublish(timeoutCtx, mediaID, userID)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, state)
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil || len(form.File[field]) == 0 {
		return nil
	}
	return form.File[field][0]
}

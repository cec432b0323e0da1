package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-media/internal/infrastructure/objectstore"
	"github.com/bionicotaku/lingo-services-media/internal/intake"
	"github.com/bionicotaku/lingo-services-media/internal/models/events"
	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/bionicotaku/lingo-services-media/internal/models/vo"
	"github.com/bionicotaku/lingo-services-media/internal/repositories"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PublishMediaInput 表示发布请求的输入。
type PublishMediaInput struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	Published   bool
	Primary     *multipart.FileHeader
	Preview     *multipart.FileHeader
}

// PublishService 编排发布 saga：校验+暂存 → 上传主媒体（失败即中止）→
// 上传预览图（失败降级）→ 写入记录。记录写入失败时并发补偿删除
// 本次上传的全部 blob，删除失败仅记录日志，原始错误原样上抛。
type PublishService struct {
	stager    *intake.Stager
	gateway   BlobGateway
	repo      MediaRepo
	publisher LifecyclePublisher
	log       *log.Helper
	newID     func() uuid.UUID
	now       func() time.Time
}

// NewPublishService 构造发布服务。
func NewPublishService(stager *intake.Stager, gateway BlobGateway, repo MediaRepo, publisher LifecyclePublisher, logger log.Logger) *PublishService {
	return &PublishService{
		stager:    stager,
		gateway:   gateway,
		repo:      repo,
		publisher: publisher,
		log:       log.NewHelper(logger),
		newID:     uuid.New,
		now:       time.Now,
	}
}

// Publish 执行完整发布流程，成功后返回新资产视图。
func (s *PublishService) Publish(ctx context.Context, input PublishMediaInput) (*vo.MediaCreated, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	// 全部字段先行校验：任一文件不合法则整个请求被拒，不暂存任何文件。
	if err := intake.Validate(intake.RolePrimary, input.Primary); err != nil {
		return nil, mapIntakeError(err)
	}
	if input.Preview != nil {
		if err := intake.Validate(intake.RolePreview, input.Preview); err != nil {
			return nil, mapIntakeError(err)
		}
	}

	mediaID := s.newID()

	primary, err := s.stager.Stage(intake.RolePrimary, input.Primary)
	if err != nil {
		return nil, s.mapStageError(ctx, err)
	}
	defer primary.Discard()

	var preview *intake.StagedFile
	if input.Preview != nil {
		preview, err = s.stager.Stage(intake.RolePreview, input.Preview)
		if err != nil {
			return nil, s.mapStageError(ctx, err)
		}
		defer preview.Discard()
	}

	// mp4 时长探测为 best-effort：失败记录 0 时长。
	var duration float64
	if primary.ContentType == "video/mp4" {
		if probed, probeErr := intake.ProbeMP4Duration(primary.Path); probeErr != nil {
			s.log.WithContext(ctx).Warnf("probe mp4 duration failed: media_id=%s err=%v", mediaID, probeErr)
		} else {
			duration = probed
		}
	}

	primaryRef, err := s.gateway.Upload(ctx, objectstore.StagedBlob{
		Path:        primary.Path,
		ObjectName:  s.objectName(input.OwnerID, mediaID, primary),
		ContentType: primary.ContentType,
	})
	if err != nil {
		return nil, s.mapStoreError(ctx, "upload primary blob", mediaID, err)
	}

	var previewURL *string
	if preview != nil {
		previewRef, upErr := s.gateway.Upload(ctx, objectstore.StagedBlob{
			Path:        preview.Path,
			ObjectName:  s.objectName(input.OwnerID, mediaID, preview),
			ContentType: preview.ContentType,
		})
		if upErr != nil {
			// 预览图上传失败降级：资产照常发布，仅缺预览。
			s.log.WithContext(ctx).Warnf("upload preview blob failed, publishing without preview: media_id=%s err=%v", mediaID, upErr)
		} else {
			previewURL = &previewRef.URL
		}
	}

	created, err := s.repo.Create(ctx, nil, repositories.CreateMediaInput{
		MediaID:         mediaID,
		OwnerID:         input.OwnerID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		PrimaryURL:      primaryRef.URL,
		PreviewURL:      previewURL,
		DurationSeconds: duration,
		IsPublished:     input.Published,
	})
	if err != nil {
		s.compensate(ctx, mediaID, primaryRef.URL, previewURL)
		return nil, s.mapStoreError(ctx, "create media record", mediaID, err)
	}

	if created.IsPublished {
		s.emitPublished(ctx, created)
	}

	s.log.WithContext(ctx).Infof("Publish: media_id=%s owner_id=%s published=%t", created.MediaID, created.OwnerID, created.IsPublished)
	return vo.NewMediaCreated(created), nil
}

func (s *PublishService) validateInput(input PublishMediaInput) error {
	if input.OwnerID == uuid.Nil {
		return errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return errors.BadRequest(ReasonMediaValidationFailed, "title is required")
	}
	if input.Primary == nil {
		return errors.BadRequest(ReasonMediaValidationFailed, "primary file is required")
	}
	return nil
}

// compensate 并发删除本次发布上传的全部 blob。
// 每个失败单独记录日志并吞掉，调用方继续上抛记录写入的原始错误。
func (s *PublishService) compensate(ctx context.Context, mediaID uuid.UUID, primaryURL string, previewURL *string) {
	urls := []string{primaryURL}
	if previewURL != nil {
		urls = append(urls, *previewURL)
	}

	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	for _, u := range urls {
		g.Go(func() error {
			if err := s.gateway.Delete(gctx, u); err != nil {
				s.log.WithContext(ctx).Errorf("compensating delete failed: media_id=%s url=%s err=%v", mediaID, u, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// emitPublished 发布 media.published 事件，失败仅记录日志。
func (s *PublishService) emitPublished(ctx context.Context, asset *po.MediaAsset) {
	if s.publisher == nil {
		return
	}
	env, err := events.NewMediaPublished(asset, s.newID(), s.now())
	if err != nil {
		s.log.WithContext(ctx).Errorf("build media.published event failed: media_id=%s err=%v", asset.MediaID, err)
		return
	}
	if err := s.publisher.Publish(ctx, env); err != nil {
		s.log.WithContext(ctx).Warnf("publish media.published event failed: media_id=%s err=%v", asset.MediaID, err)
	}
}

func (s *PublishService) objectName(ownerID, mediaID uuid.UUID, staged *intake.StagedFile) string {
	return fmt.Sprintf("media/%s/%s/%s%s", ownerID, mediaID, staged.Role, filepath.Ext(staged.Path))
}

func (s *PublishService) mapStageError(ctx context.Context, err error) error {
	s.log.WithContext(ctx).Errorf("stage upload failed: %v", err)
	return errors.InternalServer(ReasonPublishFailed, "failed to stage upload").WithCause(err)
}

func (s *PublishService) mapStoreError(ctx context.Context, op string, mediaID uuid.UUID, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithContext(ctx).Warnf("%s timeout: media_id=%s", op, mediaID)
		return errors.GatewayTimeout(ReasonQueryTimeout, op+" timeout")
	}
	s.log.WithContext(ctx).Errorf("%s failed: media_id=%s err=%v", op, mediaID, err)
	return errors.InternalServer(ReasonPublishFailed, "failed to publish media").WithCause(fmt.Errorf("%s: %w", op, err))
}

func mapIntakeError(err error) error {
	return errors.BadRequest(ReasonMediaValidationFailed, err.Error())
}

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

// UpdateMetadataInput 表示元数据更新的输入（nil 字段保留原值）。
type UpdateMetadataInput struct {
	MediaID     uuid.UUID
	OwnerID     uuid.UUID
	Title       *string
	Description *string
}

// ReplacePreviewInput 表示替换预览图的输入。
type ReplacePreviewInput struct {
	MediaID uuid.UUID
	OwnerID uuid.UUID
	Preview *multipart.FileHeader
}

// MediaCommandService 封装资产写操作：元数据更新、预览图替换、
// 删除与发布开关。所有操作 owner-scoped，越权访问统一 404。
type MediaCommandService struct {
	repo      MediaRepo
	gateway   BlobGateway
	stager    *intake.Stager
	publisher LifecyclePublisher
	log       *log.Helper
	newID     func() uuid.UUID
	now       func() time.Time
}

// NewMediaCommandService 构造资产写服务。
func NewMediaCommandService(repo MediaRepo, gateway BlobGateway, stager *intake.Stager, publisher LifecyclePublisher, logger log.Logger) *MediaCommandService {
	return &MediaCommandService{
		repo:      repo,
		gateway:   gateway,
		stager:    stager,
		publisher: publisher,
		log:       log.NewHelper(logger),
		newID:     uuid.New,
		now:       time.Now,
	}
}

// UpdateMetadata 更新标题与描述。
func (s *MediaCommandService) UpdateMetadata(ctx context.Context, input UpdateMetadataInput) (*vo.MediaSummary, error) {
	if input.OwnerID == uuid.Nil {
		return nil, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}
	if input.Title == nil && input.Description == nil {
		return nil, errors.BadRequest(ReasonMediaValidationFailed, "no fields to update")
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, errors.BadRequest(ReasonMediaValidationFailed, "title must not be empty")
	}

	updated, err := s.repo.UpdateMetadata(ctx, nil, repositories.UpdateMetadataInput{
		MediaID:     input.MediaID,
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		Description: input.Description,
	})
	if err != nil {
		return nil, s.mapRepoError(ctx, "update metadata", input.MediaID, err)
	}

	s.log.WithContext(ctx).Infof("UpdateMetadata: media_id=%s", updated.MediaID)
	return vo.NewMediaSummary(updated), nil
}

// ReplacePreview 替换预览图：先上传新图，再原子换入记录，
// 最后 best-effort 删除旧图。顺序保证换入失败时记录仍指向旧图。
func (s *MediaCommandService) ReplacePreview(ctx context.Context, input ReplacePreviewInput) (*vo.MediaSummary, error) {
	if input.OwnerID == uuid.Nil {
		return nil, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}
	if err := intake.Validate(intake.RolePreview, input.Preview); err != nil {
		return nil, mapIntakeError(err)
	}

	staged, err := s.stager.Stage(intake.RolePreview, input.Preview)
	if err != nil {
		s.log.WithContext(ctx).Errorf("stage preview failed: media_id=%s err=%v", input.MediaID, err)
		return nil, errors.InternalServer(ReasonMutationFailed, "failed to stage preview").WithCause(err)
	}

	newRef, err := s.gateway.Upload(ctx, objectstore.StagedBlob{
		Path:        staged.Path,
		ObjectName:  fmt.Sprintf("media/%s/%s/preview-%s%s", input.OwnerID, input.MediaID, s.newID(), filepath.Ext(staged.Path)),
		ContentType: staged.ContentType,
	})
	if err != nil {
		return nil, s.mapRepoError(ctx, "upload preview blob", input.MediaID, err)
	}

	oldURL, err := s.repo.SwapPreview(ctx, nil, input.MediaID, input.OwnerID, newRef.URL)
	if err != nil {
		// 换入失败时新图成为孤儿 blob，立即补偿删除。
		if delErr := s.gateway.Delete(context.WithoutCancel(ctx), newRef.URL); delErr != nil {
			s.log.WithContext(ctx).Errorf("compensating delete of new preview failed: media_id=%s url=%s err=%v", input.MediaID, newRef.URL, delErr)
		}
		return nil, s.mapRepoError(ctx, "swap preview", input.MediaID, err)
	}

	if oldURL != nil {
		if delErr := s.gateway.Delete(ctx, *oldURL); delErr != nil {
			s.log.WithContext(ctx).Warnf("delete old preview failed: media_id=%s url=%s err=%v", input.MediaID, *oldURL, delErr)
		}
	}

	asset, err := s.repo.FindByID(ctx, nil, input.MediaID)
	if err != nil {
		return nil, s.mapRepoError(ctx, "reload media", input.MediaID, err)
	}

	s.log.WithContext(ctx).Infof("ReplacePreview: media_id=%s", input.MediaID)
	return vo.NewMediaSummary(asset), nil
}

// Delete 删除资产：先删记录（owner-scoped），成功后 best-effort
// 并发删除 blob。越权访问在记录删除处被拒，不触碰任何 blob。
func (s *MediaCommandService) Delete(ctx context.Context, mediaID, ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}

	primaryURL, previewURL, err := s.repo.DeleteOwned(ctx, nil, mediaID, ownerID)
	if err != nil {
		return s.mapRepoError(ctx, "delete media record", mediaID, err)
	}

	urls := []string{primaryURL}
	if previewURL != nil {
		urls = append(urls, *previewURL)
	}
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	for _, u := range urls {
		g.Go(func() error {
			if delErr := s.gateway.Delete(gctx, u); delErr != nil {
				s.log.WithContext(ctx).Warnf("delete blob failed after record removal: media_id=%s url=%s err=%v", mediaID, u, delErr)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.emitDeleted(ctx, mediaID, ownerID)
	s.log.WithContext(ctx).Infof("Delete: media_id=%s", mediaID)
	return nil
}

// TogglePublish 原子翻转发布状态并发布生命周期事件。
func (s *MediaCommandService) TogglePublish(ctx context.Context, mediaID, ownerID uuid.UUID) (*vo.PublishState, error) {
	if ownerID == uuid.Nil {
		return nil, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}

	asset, err := s.repo.TogglePublish(ctx, nil, mediaID, ownerID)
	if err != nil {
		return nil, s.mapRepoError(ctx, "toggle publish", mediaID, err)
	}

	// 翻转后的可见性变更广播给下游：Published 字段携带最新状态。
	s.emitPublishState(ctx, asset)

	s.log.WithContext(ctx).Infof("TogglePublish: media_id=%s is_published=%t", asset.MediaID, asset.IsPublished)
	return &vo.PublishState{
		MediaID:     asset.MediaID,
		IsPublished: asset.IsPublished,
		UpdatedAt:   asset.UpdatedAt,
	}, nil
}

func (s *MediaCommandService) emitPublishState(ctx context.Context, asset *po.MediaAsset) {
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

func (s *MediaCommandService) emitDeleted(ctx context.Context, mediaID, ownerID uuid.UUID) {
	if s.publisher == nil {
		return
	}
	env := events.NewMediaDeleted(mediaID, ownerID, s.newID(), s.now())
	if err := s.publisher.Publish(ctx, env); err != nil {
		s.log.WithContext(ctx).Warnf("publish media.deleted event failed: media_id=%s err=%v", mediaID, err)
	}
}

func (s *MediaCommandService) mapRepoError(ctx context.Context, op string, mediaID uuid.UUID, err error) error {
	if errors.Is(err, repositories.ErrMediaNotFound) {
		return ErrMediaNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithContext(ctx).Warnf("%s timeout: media_id=%s", op, mediaID)
		return errors.GatewayTimeout(ReasonQueryTimeout, op+" timeout")
	}
	s.log.WithContext(ctx).Errorf("%s failed: media_id=%s err=%v", op, mediaID, err)
	return errors.InternalServer(ReasonMutationFailed, "failed to mutate media").WithCause(fmt.Errorf("%s: %w", op, err))
}

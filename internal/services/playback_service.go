package services

import (
	"context"
	"fmt"
	"time"

	configloader "github.com/bionicotaku/lingo-services-media/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/bionicotaku/lingo-services-media/internal/models/vo"
	"github.com/bionicotaku/lingo-services-media/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// PlaybackService 封装详情读取与观看记录。
// 未发布资产仅 owner 可见，其余访问统一 404；
// 已发布资产的读取附带观看计数与历史头部维护。
type PlaybackService struct {
	repo       MediaRepo
	watch      WatchHistoryRepo
	engagement EngagementRepo
	signer     PlaybackSigner
	txManager  txmanager.Manager
	signedTTL  time.Duration
	log        *log.Helper
}

// NewPlaybackService 构造详情读取服务。
func NewPlaybackService(
	repo MediaRepo,
	watch WatchHistoryRepo,
	engagement EngagementRepo,
	signer PlaybackSigner,
	tx txmanager.Manager,
	cfg configloader.StorageConfig,
	logger log.Logger,
) *PlaybackService {
	return &PlaybackService{
		repo:       repo,
		watch:      watch,
		engagement: engagement,
		signer:     signer,
		txManager:  tx,
		signedTTL:  cfg.SignedURLTTL,
		log:        log.NewHelper(logger),
	}
}

// GetDetail 返回详情视图，并在资产已发布时记录一次观看。
// 重复连播（资产已在观看历史头部）不增加计数，也不移动历史。
func (s *PlaybackService) GetDetail(ctx context.Context, mediaID, viewerID uuid.UUID) (*vo.MediaDetail, error) {
	if viewerID == uuid.Nil {
		return nil, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}

	asset, err := s.repo.FindByID(ctx, nil, mediaID)
	if err != nil {
		return nil, s.mapError(ctx, "load media detail", mediaID, err)
	}
	if !asset.IsPublished && asset.OwnerID != viewerID {
		return nil, ErrMediaNotFound
	}

	if asset.IsPublished {
		if err := s.recordView(ctx, asset, viewerID); err != nil {
			return nil, s.mapError(ctx, "record view", mediaID, err)
		}
	}

	detail, err := s.buildDetail(ctx, asset, viewerID)
	if err != nil {
		return nil, s.mapError(ctx, "build media detail", mediaID, err)
	}
	return detail, nil
}

// recordView 在单事务内完成头部判定、计数自增与历史前移。
// owner 观看自己已发布的资产同样计数。
func (s *PlaybackService) recordView(ctx context.Context, asset *po.MediaAsset, viewerID uuid.UUID) error {
	return s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		head, err := s.watch.Head(txCtx, sess, viewerID)
		if err != nil {
			return err
		}
		if head == asset.MediaID {
			return nil
		}

		count, err := s.repo.IncrementViews(txCtx, sess, asset.MediaID)
		if err != nil {
			return err
		}
		asset.ViewCount = count

		return s.watch.Touch(txCtx, sess, viewerID, asset.MediaID)
	})
}

func (s *PlaybackService) buildDetail(ctx context.Context, asset *po.MediaAsset, viewerID uuid.UUID) (*vo.MediaDetail, error) {
	likeCount, err := s.engagement.MediaLikeCount(ctx, nil, asset.MediaID)
	if err != nil {
		return nil, fmt.Errorf("load like count: %w", err)
	}
	liked, err := s.engagement.LikedByUser(ctx, nil, viewerID, asset.MediaID)
	if err != nil {
		return nil, fmt.Errorf("load liked flag: %w", err)
	}
	subscribers, err := s.engagement.SubscriberCount(ctx, nil, asset.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load subscriber count: %w", err)
	}
	subscribed, err := s.engagement.IsSubscribed(ctx, nil, viewerID, asset.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load subscribed flag: %w", err)
	}

	playbackURL, expiresAt, err := s.signer.SignedPlaybackURL(ctx, asset.PrimaryURL, s.signedTTL)
	if err != nil {
		return nil, fmt.Errorf("sign playback url: %w", err)
	}
	var previewPlayback *string
	if asset.PreviewURL != nil {
		signed, _, signErr := s.signer.SignedPlaybackURL(ctx, *asset.PreviewURL, s.signedTTL)
		if signErr != nil {
			// 预览图签名失败不阻断详情：仅缺预览播放地址。
			s.log.WithContext(ctx).Warnf("sign preview url failed: media_id=%s err=%v", asset.MediaID, signErr)
		} else {
			previewPlayback = &signed
		}
	}

	return &vo.MediaDetail{
		MediaID:            asset.MediaID,
		OwnerID:            asset.OwnerID,
		Title:              asset.Title,
		Description:        asset.Description,
		DurationSeconds:    asset.DurationSeconds,
		ViewCount:          asset.ViewCount,
		IsPublished:        asset.IsPublished,
		CreatedAt:          asset.CreatedAt,
		UpdatedAt:          asset.UpdatedAt,
		PlaybackURL:        playbackURL,
		PreviewPlaybackURL: previewPlayback,
		PlaybackExpiresAt:  expiresAt,
		LikeCount:          likeCount,
		LikedByViewer:      liked,
		SubscriberCount:    subscribers,
		SubscribedByViewer: subscribed,
	}, nil
}

func (s *PlaybackService) mapError(ctx context.Context, op string, mediaID uuid.UUID, err error) error {
	if errors.Is(err, repositories.ErrMediaNotFound) {
		return ErrMediaNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithContext(ctx).Warnf("%s timeout: media_id=%s", op, mediaID)
		return errors.GatewayTimeout(ReasonQueryTimeout, op+" timeout")
	}
	s.log.WithContext(ctx).Errorf("%s failed: media_id=%s err=%v", op, mediaID, err)
	return errors.InternalServer(ReasonQueryFailed, "failed to load media detail").WithCause(fmt.Errorf("%s: %w", op, err))
}

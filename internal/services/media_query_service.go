package services

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/bionicotaku/lingo-services-media/internal/models/vo"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// MediaQueryService 封装媒体列表读取用例。
type MediaQueryService struct {
	repo       MediaRepo
	engagement EngagementRepo
	log        *log.Helper
}

// NewMediaQueryService 构造列表读取服务。
func NewMediaQueryService(repo MediaRepo, engagement EngagementRepo, logger log.Logger) *MediaQueryService {
	return &MediaQueryService{
		repo:       repo,
		engagement: engagement,
		log:        log.NewHelper(logger),
	}
}

// ListPublished 返回公开列表：仅已发布，按创建时间倒序，支持标题搜索。
func (s *MediaQueryService) ListPublished(ctx context.Context, search string, page, size int) (*vo.MediaPage, error) {
	page, size = normalizePage(page, size)

	assets, total, err := s.repo.ListPublished(ctx, nil, search, size, (page-1)*size)
	if err != nil {
		return nil, s.mapError(ctx, "list published media", err)
	}
	return buildMediaPage(assets, page, size, total), nil
}

// ListByOwner 返回指定 owner 的列表。
// 仅 owner 本人可见未发布资产，其余视角过滤为已发布。
func (s *MediaQueryService) ListByOwner(ctx context.Context, ownerID, viewerID uuid.UUID, page, size int) (*vo.MediaPage, error) {
	page, size = normalizePage(page, size)
	publishedOnly := viewerID != ownerID

	assets, total, err := s.repo.ListByOwner(ctx, nil, ownerID, publishedOnly, size, (page-1)*size)
	if err != nil {
		return nil, s.mapError(ctx, "list media by owner", err)
	}
	return buildMediaPage(assets, page, size, total), nil
}

// ListLiked 返回用户点赞过的媒体，按点赞时间倒序。
func (s *MediaQueryService) ListLiked(ctx context.Context, userID uuid.UUID, page, size int) (*vo.MediaPage, error) {
	if userID == uuid.Nil {
		return nil, errors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
	}
	page, size = normalizePage(page, size)

	assets, total, err := s.engagement.ListLikedMedia(ctx, nil, userID, size, (page-1)*size)
	if err != nil {
		return nil, s.mapError(ctx, "list liked media", err)
	}
	return buildMediaPage(assets, page, size, total), nil
}

func (s *MediaQueryService) mapError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithContext(ctx).Warnf("%s timeout", op)
		return errors.GatewayTimeout(ReasonQueryTimeout, op+" timeout")
	}
	s.log.WithContext(ctx).Errorf("%s failed: %v", op, err)
	return errors.InternalServer(ReasonQueryFailed, "failed to list media").WithCause(fmt.Errorf("%s: %w", op, err))
}

func buildMediaPage(assets []*po.MediaAsset, page, size int, total int64) *vo.MediaPage {
	items := make([]*vo.MediaSummary, 0, len(assets))
	for _, asset := range assets {
		items = append(items, vo.NewMediaSummary(asset))
	}
	return &vo.MediaPage{Items: items, Page: page, Size: size, Total: total}
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

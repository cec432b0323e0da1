package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/lingo-services-media/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const mediaColumns = `
	media_id, owner_id, title, description, primary_url, preview_url,
	duration_seconds, view_count, is_published, created_at, updated_at`

// MediaRepository 维护 media.media_assets 表。
// 使用 pgxpool.Pool 进行数据库访问；传入 txmanager.Session 时加入既有事务。
type MediaRepository struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

// NewMediaRepository 构造媒体资产仓储。
func NewMediaRepository(pool *pgxpool.Pool, logger log.Logger) *MediaRepository {
	return &MediaRepository{
		pool: pool,
		log:  log.NewHelper(logger),
	}
}

// CreateMediaInput 描述创建媒体记录所需字段。
type CreateMediaInput struct {
	MediaID         uuid.UUID
	OwnerID         uuid.UUID
	Title           string
	Description     string
	PrimaryURL      string
	PreviewURL      *string
	DurationSeconds float64
	IsPublished     bool
}

// Create 创建新媒体记录。
// 使用 INSERT ... RETURNING 获取数据库生成的时间戳。
func (r *MediaRepository) Create(ctx context.Context, sess txmanager.Session, input CreateMediaInput) (*po.MediaAsset, error) {
	query := `
		INSERT INTO media.media_assets (
			media_id, owner_id, title, description, primary_url, preview_url,
			duration_seconds, is_published
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING view_count, created_at, updated_at
	`

	asset := &po.MediaAsset{
		MediaID:         input.MediaID,
		OwnerID:         input.OwnerID,
		Title:           input.Title,
		Description:     input.Description,
		PrimaryURL:      input.PrimaryURL,
		PreviewURL:      input.PreviewURL,
		DurationSeconds: input.DurationSeconds,
		IsPublished:     input.IsPublished,
	}

	err := pick(r.pool, sess).QueryRow(ctx, query,
		input.MediaID,
		input.OwnerID,
		input.Title,
		input.Description,
		input.PrimaryURL,
		input.PreviewURL,
		input.DurationSeconds,
		input.IsPublished,
	).Scan(&asset.ViewCount, &asset.CreatedAt, &asset.UpdatedAt)

	if err != nil {
		r.log.WithContext(ctx).Errorf("Create media asset failed: %v", err)
		return nil, fmt.Errorf("insert media asset: %w", err)
	}

	r.log.WithContext(ctx).Infof("Created media asset: media_id=%s", asset.MediaID)
	return asset, nil
}

// FindByID 根据 media_id 查询媒体记录。
// 查询不到时返回 ErrMediaNotFound。
func (r *MediaRepository) FindByID(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID) (*po.MediaAsset, error) {
	query := `SELECT` + mediaColumns + `
		FROM media.media_assets
		WHERE media_id = $1
	`

	var asset po.MediaAsset
	err := pick(r.pool, sess).QueryRow(ctx, query, mediaID).Scan(
		&asset.MediaID, &asset.OwnerID, &asset.Title, &asset.Description,
		&asset.PrimaryURL, &asset.PreviewURL,
		&asset.DurationSeconds, &asset.ViewCount, &asset.IsPublished,
		&asset.CreatedAt, &asset.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		r.log.WithContext(ctx).Errorf("FindByID failed: %v", err)
		return nil, fmt.Errorf("query media asset by id: %w", err)
	}

	return &asset, nil
}

// UpdateMetadataInput 描述元数据更新字段（nil 表示保留原值）。
type UpdateMetadataInput struct {
	MediaID     uuid.UUID
	OwnerID     uuid.UUID
	Title       *string
	Description *string
}

// UpdateMetadata 更新媒体元数据。owner 条件与 media_id 合并在同一 WHERE 中，
// 记录不存在与非 owner 访问同样返回 ErrMediaNotFound，不泄露资产存在性。
func (r *MediaRepository) UpdateMetadata(ctx context.Context, sess txmanager.Session, input UpdateMetadataInput) (*po.MediaAsset, error) {
	query := `
		UPDATE media.media_assets
		SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			updated_at = now()
		WHERE media_id = $1 AND owner_id = $2
		RETURNING` + mediaColumns + `
	`

	var asset po.MediaAsset
	err := pick(r.pool, sess).QueryRow(ctx, query,
		input.MediaID,
		input.OwnerID,
		input.Title,
		input.Description,
	).Scan(
		&asset.MediaID, &asset.OwnerID, &asset.Title, &asset.Description,
		&asset.PrimaryURL, &asset.PreviewURL,
		&asset.DurationSeconds, &asset.ViewCount, &asset.IsPublished,
		&asset.CreatedAt, &asset.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		r.log.WithContext(ctx).Errorf("UpdateMetadata failed: %v", err)
		return nil, fmt.Errorf("update media metadata: %w", err)
	}

	r.log.WithContext(ctx).Infof("Updated media metadata: media_id=%s", asset.MediaID)
	return &asset, nil
}

// SwapPreview 原子替换预览图 URL，返回被替换的旧 URL。
// 单条 UPDATE 完成换入并取回旧值，两个并发替换不会互相覆盖对方的旧值。
func (r *MediaRepository) SwapPreview(ctx context.Context, sess txmanager.Session, mediaID, ownerID uuid.UUID, newURL string) (*string, error) {
	query := `
		UPDATE media.media_assets AS m
		SET preview_url = $3, updated_at = now()
		FROM (
			SELECT media_id, preview_url AS old_url
			FROM media.media_assets
			WHERE media_id = $1 AND owner_id = $2
			FOR UPDATE
		) prev
		WHERE m.media_id = prev.media_id
		RETURNING prev.old_url
	`

	var oldURL *string
	err := pick(r.pool, sess).QueryRow(ctx, query, mediaID, ownerID, newURL).Scan(&oldURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		r.log.WithContext(ctx).Errorf("SwapPreview failed: %v", err)
		return nil, fmt.Errorf("swap preview url: %w", err)
	}
	return oldURL, nil
}

// DeleteOwned 删除媒体记录（owner-scoped），返回待清理的 blob URL。
func (r *MediaRepository) DeleteOwned(ctx context.Context, sess txmanager.Session, mediaID, ownerID uuid.UUID) (primaryURL string, previewURL *string, err error) {
	query := `
		DELETE FROM media.media_assets
		WHERE media_id = $1 AND owner_id = $2
		RETURNING primary_url, preview_url
	`

	err = pick(r.pool, sess).QueryRow(ctx, query, mediaID, ownerID).Scan(&primaryURL, &previewURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrMediaNotFound
		}
		r.log.WithContext(ctx).Errorf("DeleteOwned failed: %v", err)
		return "", nil, fmt.Errorf("delete media asset: %w", err)
	}

	r.log.WithContext(ctx).Infof("Deleted media asset: media_id=%s", mediaID)
	return primaryURL, previewURL, nil
}

// TogglePublish 原子翻转发布状态（owner-scoped），单次数据库往返。
func (r *MediaRepository) TogglePublish(ctx context.Context, sess txmanager.Session, mediaID, ownerID uuid.UUID) (*po.MediaAsset, error) {
	query := `
		UPDATE media.media_assets
		SET is_published = NOT is_published, updated_at = now()
		WHERE media_id = $1 AND owner_id = $2
		RETURNING` + mediaColumns + `
	`

	var asset po.MediaAsset
	err := pick(r.pool, sess).QueryRow(ctx, query, mediaID, ownerID).Scan(
		&asset.MediaID, &asset.OwnerID, &asset.Title, &asset.Description,
		&asset.PrimaryURL, &asset.PreviewURL,
		&asset.DurationSeconds, &asset.ViewCount, &asset.IsPublished,
		&asset.CreatedAt, &asset.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		r.log.WithContext(ctx).Errorf("TogglePublish failed: %v", err)
		return nil, fmt.Errorf("toggle publish: %w", err)
	}

	return &asset, nil
}

// IncrementViews 原子自增观看计数，返回最新值。
func (r *MediaRepository) IncrementViews(ctx context.Context, sess txmanager.Session, mediaID uuid.UUID) (int64, error) {
	query := `
		UPDATE media.media_assets
		SET view_count = view_count + 1
		WHERE media_id = $1
		RETURNING view_count
	`

	var count int64
	err := pick(r.pool, sess).QueryRow(ctx, query, mediaID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrMediaNotFound
		}
		r.log.WithContext(ctx).Errorf("IncrementViews failed: %v", err)
		return 0, fmt.Errorf("increment view count: %w", err)
	}
	return count, nil
}

// ListPublished 查询公开列表（仅已发布），按创建时间倒序，支持标题模糊搜索。
func (r *MediaRepository) ListPublished(ctx context.Context, sess txmanager.Session, search string, limit, offset int) ([]*po.MediaAsset, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	countQuery := `
		SELECT count(*)
		FROM media.media_assets
		WHERE is_published AND ($1 = '' OR title ILIKE '%' || $1 || '%')
	`
	var total int64
	if err := pick(r.pool, sess).QueryRow(ctx, countQuery, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count published media: %w", err)
	}

	query := `SELECT` + mediaColumns + `
		FROM media.media_assets
		WHERE is_published AND ($1 = '' OR title ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	assets, err := r.queryAssets(ctx, sess, query, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// ListByOwner 查询指定 owner 的媒体列表。
// publishedOnly 为 true 时过滤未发布资产（非 owner 视角）。
func (r *MediaRepository) ListByOwner(ctx context.Context, sess txmanager.Session, ownerID uuid.UUID, publishedOnly bool, limit, offset int) ([]*po.MediaAsset, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	countQuery := `
		SELECT count(*)
		FROM media.media_assets
		WHERE owner_id = $1 AND (NOT $2 OR is_published)
	`
	var total int64
	if err := pick(r.pool, sess).QueryRow(ctx, countQuery, ownerID, publishedOnly).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count media by owner: %w", err)
	}

	query := `SELECT` + mediaColumns + `
		FROM media.media_assets
		WHERE owner_id = $1 AND (NOT $2 OR is_published)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	assets, err := r.queryAssets(ctx, sess, query, ownerID, publishedOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

func (r *MediaRepository) queryAssets(ctx context.Context, sess txmanager.Session, query string, args ...any) ([]*po.MediaAsset, error) {
	rows, err := pick(r.pool, sess).Query(ctx, query, args...)
	if err != nil {
		r.log.WithContext(ctx).Errorf("query media assets failed: %v", err)
		return nil, fmt.Errorf("query media assets: %w", err)
	}
	defer rows.Close()

	var assets []*po.MediaAsset
	for rows.Next() {
		var asset po.MediaAsset
		err := rows.Scan(
			&asset.MediaID, &asset.OwnerID, &asset.Title, &asset.Description,
			&asset.PrimaryURL, &asset.PreviewURL,
			&asset.DurationSeconds, &asset.ViewCount, &asset.IsPublished,
			&asset.CreatedAt, &asset.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan media asset row: %w", err)
		}
		assets = append(assets, &asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media asset rows: %w", err)
	}
	return assets, nil
}

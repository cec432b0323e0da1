package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/bionicotaku/lingo-services-media/internal/infrastructure/objectstore"
	"github.com/bionicotaku/lingo-services-media/internal/models/events"
	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/bionicotaku/lingo-services-media/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type noopTxManager struct{}

type noopSession struct{}

func (noopSession) Tx() pgx.Tx               { return nil }
func (noopSession) Context() context.Context { return context.Background() }

func (noopTxManager) WithinTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

func (noopTxManager) WithinReadOnlyTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

type mediaRepoStub struct {
	asset     *po.MediaAsset
	list      []*po.MediaAsset
	total     int64
	err       error
	createErr error

	created    *repositories.CreateMediaInput
	deletedID  uuid.UUID
	viewCount  int64
	increments int
}

func (s *mediaRepoStub) Create(_ context.Context, _ txmanager.Session, input repositories.CreateMediaInput) (*po.MediaAsset, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.err != nil {
		return nil, s.err
	}
	s.created = &input
	return &po.MediaAsset{
		MediaID:         input.MediaID,
		OwnerID:         input.OwnerID,
		Title:           input.Title,
		Description:     input.Description,
		PrimaryURL:      input.PrimaryURL,
		PreviewURL:      input.PreviewURL,
		DurationSeconds: input.DurationSeconds,
		IsPublished:     input.IsPublished,
	}, nil
}

func (s *mediaRepoStub) FindByID(_ context.Context, _ txmanager.Session, _ uuid.UUID) (*po.MediaAsset, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.asset == nil {
		return nil, repositories.ErrMediaNotFound
	}
	return s.asset, nil
}

func (s *mediaRepoStub) UpdateMetadata(_ context.Context, _ txmanager.Session, input repositories.UpdateMetadataInput) (*po.MediaAsset, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.asset == nil {
		return nil, repositories.ErrMediaNotFound
	}
	if input.Title != nil {
		s.asset.Title = *input.Title
	}
	if input.Description != nil {
		s.asset.Description = *input.Description
	}
	return s.asset, nil
}

func (s *mediaRepoStub) SwapPreview(_ context.Context, _ txmanager.Session, _, _ uuid.UUID, newURL string) (*string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.asset == nil {
		return nil, repositories.ErrMediaNotFound
	}
	old := s.asset.PreviewURL
	s.asset.PreviewURL = &newURL
	return old, nil
}

func (s *mediaRepoStub) DeleteOwned(_ context.Context, _ txmanager.Session, mediaID, _ uuid.UUID) (string, *string, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	if s.asset == nil {
		return "", nil, repositories.ErrMediaNotFound
	}
	s.deletedID = mediaID
	return s.asset.PrimaryURL, s.asset.PreviewURL, nil
}

func (s *mediaRepoStub) TogglePublish(_ context.Context, _ txmanager.Session, _, _ uuid.UUID) (*po.MediaAsset, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.asset == nil {
		return nil, repositories.ErrMediaNotFound
	}
	s.asset.IsPublished = !s.asset.IsPublished
	return s.asset, nil
}

func (s *mediaRepoStub) IncrementViews(_ context.Context, _ txmanager.Session, _ uuid.UUID) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.increments++
	s.viewCount++
	return s.viewCount, nil
}

func (s *mediaRepoStub) ListPublished(_ context.Context, _ txmanager.Session, _ string, _, _ int) ([]*po.MediaAsset, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.list, s.total, nil
}

func (s *mediaRepoStub) ListByOwner(_ context.Context, _ txmanager.Session, _ uuid.UUID, publishedOnly bool, _, _ int) ([]*po.MediaAsset, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	if !publishedOnly {
		return s.list, s.total, nil
	}
	var filtered []*po.MediaAsset
	for _, a := range s.list {
		if a.IsPublished {
			filtered = append(filtered, a)
		}
	}
	return filtered, int64(len(filtered)), nil
}

type watchHistoryStub struct {
	head    uuid.UUID
	err     error
	touched []uuid.UUID
}

func (s *watchHistoryStub) Head(_ context.Context, _ txmanager.Session, _ uuid.UUID) (uuid.UUID, error) {
	if s.err != nil {
		return uuid.Nil, s.err
	}
	return s.head, nil
}

func (s *watchHistoryStub) Touch(_ context.Context, _ txmanager.Session, _, mediaID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.touched = append(s.touched, mediaID)
	return nil
}

type engagementRepoStub struct {
	toggleActive bool
	err          error
	likeCount    int64
	liked        bool
	subscribers  int64
	subscribed   bool
	likeCounts   map[uuid.UUID]int64
	likedMedia   []*po.MediaAsset
	likedTotal   int64
}

func (s *engagementRepoStub) ToggleMediaLike(_ context.Context, _ txmanager.Session, _, _ uuid.UUID) (bool, error) {
	return s.toggleActive, s.err
}

func (s *engagementRepoStub) ToggleCommentLike(_ context.Context, _ txmanager.Session, _, _ uuid.UUID) (bool, error) {
	return s.toggleActive, s.err
}

func (s *engagementRepoStub) ToggleSubscription(_ context.Context, _ txmanager.Session, _, _ uuid.UUID) (bool, error) {
	return s.toggleActive, s.err
}

func (s *engagementRepoStub) MediaLikeCount(_ context.Context, _ txmanager.Session, _ uuid.UUID) (int64, error) {
	return s.likeCount, s.err
}

func (s *engagementRepoStub) LikedByUser(_ context.Context, _ txmanager.Session, _, _ uuid.UUID) (bool, error) {
	return s.liked, s.err
}

func (s *engagementRepoStub) SubscriberCount(_ context.Context, _ txmanager.Session, _ uuid.UUID) (int64, error) {
	return s.subscribers, s.err
}

func (s *engagementRepoStub) IsSubscribed(_ context.Context, _ txmanager.Session, _, _ uuid.UUID) (bool, error) {
	return s.subscribed, s.err
}

func (s *engagementRepoStub) CommentLikeCounts(_ context.Context, _ txmanager.Session, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.likeCounts != nil {
		return s.likeCounts, nil
	}
	return map[uuid.UUID]int64{}, nil
}

func (s *engagementRepoStub) ListLikedMedia(_ context.Context, _ txmanager.Session, _ uuid.UUID, _, _ int) ([]*po.MediaAsset, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.likedMedia, s.likedTotal, nil
}

type commentRepoStub struct {
	comment *po.Comment
	list    []*po.Comment
	total   int64
	err     error
	created *po.Comment
	deleted uuid.UUID
}

func (s *commentRepoStub) Create(_ context.Context, _ txmanager.Session, c *po.Comment) (*po.Comment, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = c
	return c, nil
}

func (s *commentRepoStub) FindByID(_ context.Context, _ txmanager.Session, _ uuid.UUID) (*po.Comment, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.comment == nil {
		return nil, repositories.ErrCommentNotFound
	}
	return s.comment, nil
}

func (s *commentRepoStub) UpdateOwned(_ context.Context, _ txmanager.Session, _, _ uuid.UUID, content string) (*po.Comment, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.comment == nil {
		return nil, repositories.ErrCommentNotFound
	}
	s.comment.Content = content
	return s.comment, nil
}

func (s *commentRepoStub) DeleteOwned(_ context.Context, _ txmanager.Session, commentID, _ uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	if s.comment == nil {
		return repositories.ErrCommentNotFound
	}
	s.deleted = commentID
	return nil
}

func (s *commentRepoStub) ListByMedia(_ context.Context, _ txmanager.Session, _ uuid.UUID, _, _ int) ([]*po.Comment, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.list, s.total, nil
}

type notificationRepoStub struct {
	inserted         []*po.Notification
	err              error
	insertErr        error
	unread           int64
	affected         int64
	deleteSubscribed int
}

func (s *notificationRepoStub) Insert(_ context.Context, _ txmanager.Session, n *po.Notification) (*po.Notification, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	if s.err != nil {
		return nil, s.err
	}
	s.inserted = append(s.inserted, n)
	return n, nil
}

func (s *notificationRepoStub) ListByRecipient(_ context.Context, _ txmanager.Session, _ uuid.UUID, _, _ int) ([]*po.Notification, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.inserted, int64(len(s.inserted)), nil
}

func (s *notificationRepoStub) UnreadCount(_ context.Context, _ txmanager.Session, _ uuid.UUID) (int64, error) {
	return s.unread, s.err
}

func (s *notificationRepoStub) MarkRead(_ context.Context, _ txmanager.Session, _, _ uuid.UUID) error {
	return s.err
}

func (s *notificationRepoStub) MarkAllRead(_ context.Context, _ txmanager.Session, _ uuid.UUID) (int64, error) {
	return s.affected, s.err
}

func (s *notificationRepoStub) DeleteAll(_ context.Context, _ txmanager.Session, _ uuid.UUID) (int64, error) {
	return s.affected, s.err
}

func (s *notificationRepoStub) DeleteSubscribe(_ context.Context, _ txmanager.Session, _, _ uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.deleteSubscribed++
	return nil
}

// blobGatewayStub 记录上传与删除调用；uploadErrs 按调用顺序注入失败。
type blobGatewayStub struct {
	mu         sync.Mutex
	bucket     string
	uploads    []objectstore.StagedBlob
	deleted    []string
	uploadErrs []error
	deleteErr  error
}

func (s *blobGatewayStub) Upload(_ context.Context, staged objectstore.StagedBlob) (objectstore.BlobRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.uploadErrs) > 0 {
		err := s.uploadErrs[0]
		s.uploadErrs = s.uploadErrs[1:]
		if err != nil {
			return objectstore.BlobRef{}, err
		}
	}
	s.uploads = append(s.uploads, staged)
	bucket := s.bucket
	if bucket == "" {
		bucket = "test-bucket"
	}
	return objectstore.BlobRef{
		Bucket:     bucket,
		ObjectName: staged.ObjectName,
		URL:        objectstore.ObjectURL(bucket, staged.ObjectName),
	}, nil
}

func (s *blobGatewayStub) Delete(_ context.Context, rawURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, rawURL)
	return nil
}

type signerStub struct {
	err error
}

func (s *signerStub) SignedPlaybackURL(_ context.Context, blobURL string, ttl time.Duration) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return blobURL + "?sig=test", time.Now().Add(ttl), nil
}

type publisherStub struct {
	envs []events.Envelope
	err  error
}

func (s *publisherStub) Publish(_ context.Context, env events.Envelope) error {
	if s.err != nil {
		return s.err
	}
	s.envs = append(s.envs, env)
	return nil
}

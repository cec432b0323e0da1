package services_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	configloader "github.com/bionicotaku/lingo-services-media/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/bionicotaku/lingo-services-media/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

func newPlaybackService(repo *mediaRepoStub, watch *watchHistoryStub, engagement *engagementRepoStub, signer *signerStub) *services.PlaybackService {
	return services.NewPlaybackService(
		repo, watch, engagement, signer, noopTxManager{},
		configloader.StorageConfig{SignedURLTTL: 15 * time.Minute},
		log.NewStdLogger(io.Discard),
	)
}

func publishedAsset(owner uuid.UUID) *po.MediaAsset {
	return &po.MediaAsset{
		MediaID:     uuid.New(),
		OwnerID:     owner,
		Title:       "demo",
		PrimaryURL:  "https://storage.googleapis.com/test-bucket/media/x/primary.mp4",
		IsPublished: true,
	}
}

func TestGetDetailRequiresViewer(t *testing.T) {
	svc := newPlaybackService(&mediaRepoStub{}, &watchHistoryStub{}, &engagementRepoStub{}, &signerStub{})

	_, err := svc.GetDetail(context.Background(), uuid.New(), uuid.Nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if e := kerrors.FromError(err); e.Code != 401 {
		t.Fatalf("expected 401, got %d", e.Code)
	}
}

func TestGetDetailRecordsView(t *testing.T) {
	asset := publishedAsset(uuid.New())
	repo := &mediaRepoStub{asset: asset, viewCount: 41}
	watch := &watchHistoryStub{}
	svc := newPlaybackService(repo, watch, &engagementRepoStub{}, &signerStub{})

	detail, err := svc.GetDetail(context.Background(), asset.MediaID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.increments != 1 {
		t.Fatalf("expected 1 view increment, got %d", repo.increments)
	}
	if len(watch.touched) != 1 || watch.touched[0] != asset.MediaID {
		t.Fatal("watch history should move the asset to the head")
	}
	if detail.ViewCount != 42 {
		t.Fatalf("detail should carry the incremented count, got %d", detail.ViewCount)
	}
}

func TestGetDetailConsecutiveReplaySuppressed(t *testing.T) {
	asset := publishedAsset(uuid.New())
	repo := &mediaRepoStub{asset: asset}
	watch := &watchHistoryStub{head: asset.MediaID}
	svc := newPlaybackService(repo, watch, &engagementRepoStub{}, &signerStub{})

	if _, err := svc.GetDetail(context.Background(), asset.MediaID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.increments != 0 {
		t.Fatalf("replay at history head must not count, got %d increments", repo.increments)
	}
	if len(watch.touched) != 0 {
		t.Fatal("replay at history head must not touch history")
	}
}

func TestGetDetailUnpublishedHiddenFromOthers(t *testing.T) {
	asset := publishedAsset(uuid.New())
	asset.IsPublished = false
	svc := newPlaybackService(&mediaRepoStub{asset: asset}, &watchHistoryStub{}, &engagementRepoStub{}, &signerStub{})

	_, err := svc.GetDetail(context.Background(), asset.MediaID, uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	if e := kerrors.FromError(err); e.Code != 404 || e.Reason != services.ReasonMediaNotFound {
		t.Fatalf("expected 404/%s, got %d/%s", services.ReasonMediaNotFound, e.Code, e.Reason)
	}
}

func TestGetDetailOwnerSeesDraftWithoutView(t *testing.T) {
	owner := uuid.New()
	asset := publishedAsset(owner)
	asset.IsPublished = false
	repo := &mediaRepoStub{asset: asset}
	watch := &watchHistoryStub{}
	svc := newPlaybackService(repo, watch, &engagementRepoStub{}, &signerStub{})

	detail, err := svc.GetDetail(context.Background(), asset.MediaID, owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.IsPublished {
		t.Fatal("expected draft asset")
	}
	if repo.increments != 0 || len(watch.touched) != 0 {
		t.Fatal("draft views must not be recorded")
	}
}

func TestGetDetailSignsPlaybackURL(t *testing.T) {
	asset := publishedAsset(uuid.New())
	preview := "https://storage.googleapis.com/test-bucket/media/x/preview.png"
	asset.PreviewURL = &preview
	engagement := &engagementRepoStub{likeCount: 7, liked: true, subscribers: 3}
	svc := newPlaybackService(&mediaRepoStub{asset: asset}, &watchHistoryStub{}, engagement, &signerStub{})

	detail, err := svc.GetDetail(context.Background(), asset.MediaID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(detail.PlaybackURL, "?sig=test") {
		t.Fatalf("playback url should be signed: %s", detail.PlaybackURL)
	}
	if detail.PreviewPlaybackURL == nil || !strings.HasSuffix(*detail.PreviewPlaybackURL, "?sig=test") {
		t.Fatal("preview playback url should be signed")
	}
	if detail.PlaybackExpiresAt.Before(time.Now()) {
		t.Fatal("signed url must expire in the future")
	}
	if detail.LikeCount != 7 || !detail.LikedByViewer || detail.SubscriberCount != 3 {
		t.Fatalf("engagement aggregates missing: %+v", detail)
	}
}

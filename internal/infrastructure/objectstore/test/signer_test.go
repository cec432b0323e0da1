package objectstore_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-media/internal/infrastructure/objectstore"
	"github.com/go-kratos/kratos/v2/log"
)

func generateTestKey(t *testing.T) ([]byte, string) {
	t.Helper()
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(rsaKey)
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8})
	accessID := "test-signer@unit-test.iam.gserviceaccount.com"
	return pemBytes, accessID
}

func newTestSigner(t *testing.T, bucket string, clock func() time.Time) *objectstore.PlaybackSigner {
	t.Helper()
	keyPEM, accessID := generateTestKey(t)
	signer, err := objectstore.NewPlaybackSigner(context.Background(), bucket, accessID, log.NewStdLogger(io.Discard),
		objectstore.WithServiceAccountKey(accessID, keyPEM),
		objectstore.WithClock(clock),
	)
	if err != nil {
		t.Fatalf("NewPlaybackSigner: %v", err)
	}
	return signer
}

func TestSignedPlaybackURL(t *testing.T) {
	fixed := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	signer := newTestSigner(t, "media-bucket", func() time.Time { return fixed })

	ttl := 15 * time.Minute
	blobURL := objectstore.ObjectURL("media-bucket", "media/owner/id/primary.mp4")
	signed, expires, err := signer.SignedPlaybackURL(context.Background(), blobURL, ttl)
	if err != nil {
		t.Fatalf("SignedPlaybackURL: %v", err)
	}
	if !expires.Equal(fixed.Add(ttl)) {
		t.Fatalf("expected expires %v, got %v", fixed.Add(ttl), expires)
	}

	parsed, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	if !strings.Contains(parsed.Path, "media/owner/id/primary.mp4") {
		t.Fatalf("expected object path in signed url, got %s", parsed.Path)
	}
	query := parsed.Query()
	if query.Get("X-Goog-Expires") == "" {
		t.Fatal("missing TTL in signed url")
	}
	if query.Get("X-Goog-Signature") == "" {
		t.Fatal("missing signature in signed url")
	}
}

func TestSignedPlaybackURLBucketMismatch(t *testing.T) {
	signer := newTestSigner(t, "media-bucket", time.Now)

	blobURL := objectstore.ObjectURL("other-bucket", "media/x/primary.mp4")
	if _, _, err := signer.SignedPlaybackURL(context.Background(), blobURL, time.Minute); err == nil {
		t.Fatal("expected bucket mismatch error")
	}
}

func TestSignedPlaybackURLRejectsNonPositiveTTL(t *testing.T) {
	signer := newTestSigner(t, "media-bucket", time.Now)

	blobURL := objectstore.ObjectURL("media-bucket", "media/x/primary.mp4")
	if _, _, err := signer.SignedPlaybackURL(context.Background(), blobURL, 0); err == nil {
		t.Fatal("expected ttl error")
	}
}

func TestNewPlaybackSignerRequiresBucket(t *testing.T) {
	keyPEM, accessID := generateTestKey(t)
	_, err := objectstore.NewPlaybackSigner(context.Background(), "", accessID, log.NewStdLogger(io.Discard),
		objectstore.WithServiceAccountKey(accessID, keyPEM),
	)
	if err == nil {
		t.Fatal("expected error for missing bucket")
	}
}

package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/oauth2/google"

	configloader "github.com/bionicotaku/lingo-services-media/internal/infrastructure/configloader"
)

// PlaybackSigner 负责生成播放用的 V4 GET Signed URL。
// 媒体 bucket 不对外公开，详情页返回限时签名 URL。
type PlaybackSigner struct {
	googleAccessID string
	privateKey     []byte
	bucket         string
	now            func() time.Time
	log            *log.Helper
}

// SignerOption 定义可选配置。
type SignerOption func(*PlaybackSigner)

// WithClock 覆盖时间获取函数，便于测试。
func WithClock(clock func() time.Time) SignerOption {
	return func(s *PlaybackSigner) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithServiceAccountKey 允许直接注入访问 ID 与私钥（测试友好）。
func WithServiceAccountKey(accessID string, privateKey []byte) SignerOption {
	return func(s *PlaybackSigner) {
		if accessID != "" {
			s.googleAccessID = accessID
		}
		if len(privateKey) > 0 {
			s.privateKey = append([]byte(nil), privateKey...)
		}
	}
}

// NewPlaybackSigner 创建 PlaybackSigner，要求默认凭据中包含 service account 私钥。
func NewPlaybackSigner(ctx context.Context, bucket, accessID string, logger log.Logger, opts ...SignerOption) (*PlaybackSigner, error) {
	if bucket == "" {
		return nil, errors.New("playback signer: bucket is required")
	}
	signer := &PlaybackSigner{
		googleAccessID: accessID,
		bucket:         bucket,
		now:            time.Now,
		log:            log.NewHelper(logger),
	}

	for _, opt := range opts {
		opt(signer)
	}

	if len(signer.privateKey) == 0 {
		privKey, detectedAccessID, err := loadServiceAccountKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("init playback signer: %w", err)
		}
		signer.privateKey = privKey
		if signer.googleAccessID == "" {
			signer.googleAccessID = detectedAccessID
		} else if detectedAccessID != "" && detectedAccessID != signer.googleAccessID {
			signer.log.WithContext(ctx).Warnf("playback signer access id mismatch: config=%s credentials=%s", signer.googleAccessID, detectedAccessID)
		}
	}

	if signer.googleAccessID == "" {
		return nil, errors.New("playback signer: google access id is required")
	}
	if len(signer.privateKey) == 0 {
		return nil, errors.New("playback signer: private key is required")
	}

	return signer, nil
}

// SignedPlaybackURL 为指定 blob URL 生成限时 GET 签名 URL。
func (s *PlaybackSigner) SignedPlaybackURL(ctx context.Context, blobURL string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, errors.New("ttl must be positive")
	}
	bucket, objectName, err := ParseObjectURL(blobURL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse blob url: %w", err)
	}
	if bucket != s.bucket {
		return "", time.Time{}, fmt.Errorf("blob url bucket mismatch: got=%s want=%s", bucket, s.bucket)
	}

	expires := s.now().Add(ttl)
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         http.MethodGet,
		Expires:        expires,
		GoogleAccessID: s.googleAccessID,
		PrivateKey:     s.privateKey,
	}

	signed, signErr := storage.SignedURL(bucket, objectName, opts)
	if signErr != nil {
		s.log.WithContext(ctx).Errorf("generate playback signed url failed: bucket=%s object=%s err=%v", bucket, objectName, signErr)
		return "", time.Time{}, fmt.Errorf("signed url: %w", signErr)
	}
	return signed, expires, nil
}

type serviceAccountKey struct {
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
}

func loadServiceAccountKey(ctx context.Context) ([]byte, string, error) {
	creds, err := google.FindDefaultCredentials(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("find default credentials: %w", err)
	}
	if len(creds.JSON) == 0 {
		return nil, "", errors.New("service account JSON not found in default credentials")
	}

	var key serviceAccountKey
	if err := json.Unmarshal(creds.JSON, &key); err != nil {
		return nil, "", fmt.Errorf("parse service account json: %w", err)
	}
	if key.PrivateKey == "" {
		return nil, "", errors.New("service account private key is empty; use a service account JSON credential")
	}
	return []byte(key.PrivateKey), key.ClientEmail, nil
}

// ProvidePlaybackSigner 供 Wire 注入使用。
func ProvidePlaybackSigner(ctx context.Context, cfg configloader.StorageConfig, logger log.Logger) (*PlaybackSigner, error) {
	return NewPlaybackSigner(ctx, cfg.Bucket, cfg.SignerServiceAccount, logger)
}

package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/go-kratos/kratos/v2/log"

	configloader "github.com/bionicotaku/lingo-services-media/internal/infrastructure/configloader"
)

const publicHost = "storage.googleapis.com"

// BlobRef 描述一次成功上传产出的对象引用。
type BlobRef struct {
	Bucket      string
	ObjectName  string
	URL         string
	SizeBytes   int64
	ContentType string
}

// StagedBlob 描述待上传的本地暂存文件。
type StagedBlob struct {
	Path        string
	ObjectName  string
	ContentType string
}

// Gateway 封装对单一媒体 bucket 的上传与删除操作。
// 上传超时显著长于删除超时：上传搬运整个文件，删除只是一次元数据调用。
type Gateway struct {
	client        *storage.Client
	bucket        string
	uploadTimeout time.Duration
	deleteTimeout time.Duration
	log           *log.Helper
}

// NewGateway 构造 Gateway。
func NewGateway(client *storage.Client, cfg configloader.StorageConfig, logger log.Logger) (*Gateway, error) {
	switch {
	case client == nil:
		return nil, errors.New("objectstore: client is required")
	case cfg.Bucket == "":
		return nil, errors.New("objectstore: bucket is required")
	case cfg.UploadTimeout <= 0 || cfg.DeleteTimeout <= 0:
		return nil, errors.New("objectstore: upload/delete timeouts must be positive")
	}
	return &Gateway{
		client:        client,
		bucket:        cfg.Bucket,
		uploadTimeout: cfg.UploadTimeout,
		deleteTimeout: cfg.DeleteTimeout,
		log:           log.NewHelper(logger),
	}, nil
}

// Bucket 返回网关绑定的 bucket 名称。
func (g *Gateway) Bucket() string {
	return g.bucket
}

// Upload 将暂存文件写入对象存储并返回 BlobRef。
// 无论成败，本地暂存文件都会被移除；移除失败仅记录日志。
func (g *Gateway) Upload(ctx context.Context, staged StagedBlob) (ref BlobRef, err error) {
	defer func() {
		if rmErr := os.Remove(staged.Path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			g.log.WithContext(ctx).Warnf("remove staged file failed: path=%s err=%v", staged.Path, rmErr)
		}
	}()

	if staged.ObjectName == "" {
		return BlobRef{}, errors.New("object name is required")
	}

	src, err := os.Open(staged.Path)
	if err != nil {
		return BlobRef{}, fmt.Errorf("open staged file: %w", err)
	}
	defer src.Close()

	uploadCtx, cancel := context.WithTimeout(ctx, g.uploadTimeout)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(staged.ObjectName).NewWriter(uploadCtx)
	w.ContentType = staged.ContentType

	written, err := io.Copy(w, src)
	if err != nil {
		_ = w.Close()
		return BlobRef{}, fmt.Errorf("upload object %s: %w", staged.ObjectName, err)
	}
	if err := w.Close(); err != nil {
		return BlobRef{}, fmt.Errorf("finalize object %s: %w", staged.ObjectName, err)
	}

	ref = BlobRef{
		Bucket:      g.bucket,
		ObjectName:  staged.ObjectName,
		URL:         ObjectURL(g.bucket, staged.ObjectName),
		SizeBytes:   written,
		ContentType: staged.ContentType,
	}
	g.log.WithContext(ctx).Infof("uploaded blob: object=%s size=%d", ref.ObjectName, ref.SizeBytes)
	return ref, nil
}

// Delete 按对象 URL 删除 blob。对象不存在视为成功（幂等）。
func (g *Gateway) Delete(ctx context.Context, rawURL string) error {
	bucket, objectName, err := ParseObjectURL(rawURL)
	if err != nil {
		return fmt.Errorf("parse blob url: %w", err)
	}
	if bucket != g.bucket {
		return fmt.Errorf("blob url bucket mismatch: got=%s want=%s", bucket, g.bucket)
	}

	deleteCtx, cancel := context.WithTimeout(ctx, g.deleteTimeout)
	defer cancel()

	err = g.client.Bucket(bucket).Object(objectName).Delete(deleteCtx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			g.log.WithContext(ctx).Infof("delete blob skipped, object absent: object=%s", objectName)
			return nil
		}
		return fmt.Errorf("delete object %s: %w", objectName, err)
	}
	return nil
}

// ObjectURL 根据 bucket 与对象名构造规范 URL。
// 对象名由固定约定生成，URL 与对象名可互相推导，无需旁路映射表。
func ObjectURL(bucket, objectName string) string {
	return fmt.Sprintf("https://%s/%s/%s", publicHost, bucket, objectName)
}

// ParseObjectURL 从规范 URL 中解析 bucket 与对象名。
func ParseObjectURL(rawURL string) (bucket, objectName string, err error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	if parsed.Host != publicHost {
		return "", "", fmt.Errorf("unexpected blob host: %s", parsed.Host)
	}
	trimmed := strings.TrimPrefix(parsed.Path, "/")
	bucket, objectName, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || objectName == "" {
		return "", "", fmt.Errorf("malformed blob path: %s", parsed.Path)
	}
	return bucket, objectName, nil
}

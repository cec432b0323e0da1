// Package objectstore 提供与 Google Cloud Storage 交互的基础设施封装：
// 服务端上传、幂等删除、对象 URL 约定与播放签名 URL。
package objectstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/go-kratos/kratos/v2/log"
)

// NewGCSClient 创建 GCS 客户端并返回 Wire cleanup。
// 凭据来自 Application Default Credentials；STORAGE_EMULATOR_HOST 由 SDK 自动识别。
func NewGCSClient(ctx context.Context, logger log.Logger) (*storage.Client, func(), error) {
	helper := log.NewHelper(logger)

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("create gcs client: %w", err)
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			helper.Warnf("close gcs client: %v", err)
		}
	}
	return client, cleanup, nil
}

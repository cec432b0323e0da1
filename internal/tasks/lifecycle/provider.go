package lifecycle

import (
	"context"
	"fmt"

	configloader "github.com/bionicotaku/lingo-services-media/internal/infrastructure/configloader"

	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet 暴露事件发布相关的 Wire Provider。
var ProviderSet = wire.NewSet(ProvidePubSubPublisher, NewPublisher)

// ProvidePubSubPublisher 构造底层 Pub/Sub 发布器。
// 未配置 topic 时返回 nil publisher，发布链路整体停用。
func ProvidePubSubPublisher(ctx context.Context, cfg configloader.MessagingConfig, logger log.Logger) (gcpubsub.Publisher, func(), error) {
	if cfg.TopicID == "" {
		return nil, func() {}, nil
	}

	component, cleanup, err := gcpubsub.NewComponent(ctx, gcpubsub.Config{
		ProjectID:          cfg.ProjectID,
		TopicID:            cfg.TopicID,
		EmulatorEndpoint:   cfg.EmulatorEndpoint,
		EnableLogging:      cfg.LoggingEnabled,
		EnableMetrics:      cfg.MetricsEnabled,
		OrderingKeyEnabled: cfg.OrderingEnabled,
	}, gcpubsub.Dependencies{Logger: logger})
	if err != nil {
		return nil, nil, fmt.Errorf("init pubsub component: %w", err)
	}

	return gcpubsub.ProvidePublisher(component), cleanup, nil
}

// Package lifecycle 将媒体生命周期事件发布到 Pub/Sub。
// 发布为 best-effort：未配置 topic 时整体停用，失败只记录日志与指标，
// 不回滚已提交的业务状态。
package lifecycle

import (
	"context"
	"time"

	configloader "github.com/bionicotaku/lingo-services-media/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-media/internal/models/events"

	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "lingo-services-media.lifecycle"

// Publisher 封装生命周期事件的发布。pub 为 nil 时所有调用均为 no-op。
type Publisher struct {
	pub     gcpubsub.Publisher
	timeout time.Duration
	log     *log.Helper
	counter metric.Int64Counter
}

// NewPublisher 构造事件发布器。
func NewPublisher(pub gcpubsub.Publisher, cfg configloader.MessagingConfig, logger log.Logger) *Publisher {
	helper := log.NewHelper(logger)
	if pub == nil {
		helper.Info("lifecycle publisher disabled: no topic configured")
	}

	meter := otel.GetMeterProvider().Meter(meterName)
	counter, err := meter.Int64Counter("media_lifecycle_events_total",
		metric.WithDescription("Lifecycle events published, by kind and result."))
	if err != nil {
		helper.Warnf("init lifecycle event counter failed: %v", err)
	}

	return &Publisher{
		pub:     pub,
		timeout: cfg.PublishTimeout,
		log:     helper,
		counter: counter,
	}
}

// Publish 发布单个事件。
func (p *Publisher) Publish(ctx context.Context, env events.Envelope) error {
	if p == nil || p.pub == nil {
		return nil
	}

	data, attrs, err := env.Marshal()
	if err != nil {
		p.record(ctx, env.Kind, "marshal_error")
		return err
	}

	publishCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		publishCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if _, err := p.pub.Publish(publishCtx, gcpubsub.Message{Data: data, Attributes: attrs}); err != nil {
		p.record(ctx, env.Kind, "error")
		return err
	}

	p.record(ctx, env.Kind, "ok")
	p.log.WithContext(ctx).Debugf("published lifecycle event: kind=%s media_id=%s", env.Kind, env.MediaID)
	return nil
}

func (p *Publisher) record(ctx context.Context, kind, result string) {
	if p.counter == nil {
		return
	}
	p.counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("result", result),
	))
}

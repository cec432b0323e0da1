package lifecycle_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"cloud.google.com/go/pubsub/pstest"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	configloader "github.com/bionicotaku/lingo-services-media/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-media/internal/models/events"
	"github.com/bionicotaku/lingo-services-media/internal/models/po"
	"github.com/bionicotaku/lingo-services-media/internal/tasks/lifecycle"
	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newEmulatorPublisher(t *testing.T, ctx context.Context, srv *pstest.Server, projectID, topicID string) gcpubsub.Publisher {
	t.Helper()

	component, cleanup, err := gcpubsub.NewComponent(ctx, gcpubsub.Config{
		ProjectID:        projectID,
		TopicID:          topicID,
		EnableLogging:    boolPtr(false),
		EmulatorEndpoint: srv.Addr,
	}, gcpubsub.Dependencies{Logger: log.NewStdLogger(io.Discard)})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return gcpubsub.ProvidePublisher(component)
}

func TestPublisherDeliversLifecycleEvent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	srv := pstest.NewServer()
	t.Cleanup(func() { srv.Close() })

	projectID := "test-project"
	topicID := "media-lifecycle"
	topicName := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	_, err := srv.GServer.CreateTopic(ctx, &pubsubpb.Topic{Name: topicName})
	require.NoError(t, err)

	pub := newEmulatorPublisher(t, ctx, srv, projectID, topicID)
	publisher := lifecycle.NewPublisher(pub, configloader.MessagingConfig{
		ProjectID:      projectID,
		TopicID:        topicID,
		PublishTimeout: 2 * time.Second,
	}, log.NewStdLogger(io.Discard))

	asset := &po.MediaAsset{
		MediaID:     uuid.New(),
		OwnerID:     uuid.New(),
		Title:       "first clip",
		IsPublished: true,
	}
	eventID := uuid.New()
	env, err := events.NewMediaPublished(asset, eventID, time.Now())
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(ctx, env))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, topicName, msgs[0].Topic)
	require.Equal(t, events.KindMediaPublished, msgs[0].Attributes["event_type"])
	require.Equal(t, eventID.String(), msgs[0].Attributes["event_id"])
	require.Equal(t, asset.MediaID.String(), msgs[0].Attributes["media_id"])
	require.Equal(t, events.SchemaVersion, msgs[0].Attributes["schema_version"])

	var decoded events.Envelope
	require.NoError(t, json.Unmarshal(msgs[0].Data, &decoded))
	require.Equal(t, asset.MediaID, decoded.MediaID)
	require.Equal(t, asset.OwnerID, decoded.OwnerID)
	require.True(t, decoded.Published)
}

func TestPublisherSurfacesTopicNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	srv := pstest.NewServer()
	t.Cleanup(func() { srv.Close() })

	// 故意不创建 topic，Publish 应返回 NotFound 错误。
	pub := newEmulatorPublisher(t, ctx, srv, "test-project", "missing-topic")
	publisher := lifecycle.NewPublisher(pub, configloader.MessagingConfig{
		ProjectID:      "test-project",
		TopicID:        "missing-topic",
		PublishTimeout: 500 * time.Millisecond,
	}, log.NewStdLogger(io.Discard))

	env := events.NewMediaDeleted(uuid.New(), uuid.New(), uuid.New(), time.Now())
	require.Error(t, publisher.Publish(ctx, env))
	require.Empty(t, srv.Messages())
}

func TestPublisherNilBackendIsNoop(t *testing.T) {
	t.Parallel()

	publisher := lifecycle.NewPublisher(nil, configloader.MessagingConfig{}, log.NewStdLogger(io.Discard))

	env := events.NewMediaDeleted(uuid.New(), uuid.New(), uuid.New(), time.Now())
	require.NoError(t, publisher.Publish(context.Background(), env))
}

func TestPublisherRejectsUnmarshalableEnvelope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	srv := pstest.NewServer()
	t.Cleanup(func() { srv.Close() })

	topicName := "projects/test-project/topics/media-lifecycle"
	_, err := srv.GServer.CreateTopic(ctx, &pubsubpb.Topic{Name: topicName})
	require.NoError(t, err)

	pub := newEmulatorPublisher(t, ctx, srv, "test-project", "media-lifecycle")
	publisher := lifecycle.NewPublisher(pub, configloader.MessagingConfig{
		ProjectID: "test-project",
		TopicID:   "media-lifecycle",
	}, log.NewStdLogger(io.Discard))

	// 缺少 event_id 的信封在序列化阶段即失败，不应有消息发出。
	require.Error(t, publisher.Publish(ctx, events.Envelope{Kind: events.KindMediaDeleted}))
	require.Empty(t, srv.Messages())
}

func boolPtr(v bool) *bool {
	return &v
}

//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"context"

	"github.com/bionicotaku/lingo-services-media/internal/controllers"
	configloader "github.com/bionicotaku/lingo-services-media/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-media/internal/infrastructure/database"
	"github.com/bionicotaku/lingo-services-media/internal/infrastructure/objectstore"
	"github.com/bionicotaku/lingo-services-media/internal/intake"
	"github.com/bionicotaku/lingo-services-media/internal/repositories"
	"github.com/bionicotaku/lingo-services-media/internal/server"
	"github.com/bionicotaku/lingo-services-media/internal/services"
	"github.com/bionicotaku/lingo-services-media/internal/tasks/lifecycle"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(ctx context.Context, params configloader.Params, logger log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		configloader.ProviderSet,
		database.ProviderSet,
		objectstore.ProviderSet,
		intake.ProviderSet,
		repositories.ProviderSet,
		lifecycle.ProviderSet,
		services.ProviderSet,
		controllers.ProviderSet,
		server.ProviderSet,
		wire.Bind(new(services.MediaRepo), new(*repositories.MediaRepository)),
		wire.Bind(new(services.WatchHistoryRepo), new(*repositories.WatchHistoryRepository)),
		wire.Bind(new(services.EngagementRepo), new(*repositories.EngagementRepository)),
		wire.Bind(new(services.CommentRepo), new(*repositories.CommentRepository)),
		wire.Bind(new(services.NotificationRepo), new(*repositories.NotificationRepository)),
		wire.Bind(new(services.BlobGateway), new(*objectstore.Gateway)),
		wire.Bind(new(services.PlaybackSigner), new(*objectstore.PlaybackSigner)),
		wire.Bind(new(services.LifecyclePublisher), new(*lifecycle.Publisher)),
		newApp,
	))
}

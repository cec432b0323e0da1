// Package main boots the Kratos HTTP entrypoint for the media service.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	configloader "github.com/bionicotaku/lingo-services-media/internal/infrastructure/configloader"
	loginfra "github.com/bionicotaku/lingo-services-media/internal/infrastructure/logger"

	"github.com/bionicotaku/lingo-utils/observability"
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name string
	// Version is the version of the compiled software.
	Version string
	// flagconf is the config flag.
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "", "config path, eg: -conf configs/config.yaml")
}

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			hs,
		),
	)
}

func main() {
	flag.Parse()

	params := configloader.Params{ConfPath: flagconf}
	bundle, err := configloader.Build(params)
	if err != nil {
		panic(err)
	}
	if Name == "" {
		Name = bundle.Service.Name
	}
	if Version == "" {
		Version = bundle.Service.Version
	}

	logger, err := loginfra.NewLogger(loginfra.Config{
		Service: Name,
		Version: Version,
		HostID:  bundle.Service.InstanceID,
		Env:     bundle.Service.Environment,
	})
	if err != nil {
		panic(err)
	}

	obsShutdown, err := observability.Init(context.Background(), bundle.ObsConfig,
		observability.WithLogger(logger),
		observability.WithServiceName(Name),
		observability.WithServiceVersion(Version),
		observability.WithEnvironment(bundle.Service.Environment),
	)
	if err != nil {
		panic(err)
	}
	defer func() {
		if obsShutdown == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obsShutdown(ctx); err != nil {
			log.NewHelper(logger).Warnf("shutdown observability: %v", err)
		}
	}()

	app, cleanup, err := wireApp(context.Background(), params, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}

package configloader

import (
	"github.com/bionicotaku/lingo-utils/gclog"
	obswire "github.com/bionicotaku/lingo-utils/observability"
	txconfig "github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/wire"
)

// ProviderSet exposes configuration-derived dependencies for Wire graphs.
var ProviderSet = wire.NewSet(
	NewBundle,
	ProvideServiceMetadata,
	ProvideRuntimeConfig,
	ProvideServerConfig,
	ProvideDatabaseConfig,
	ProvideStorageConfig,
	ProvideMessagingConfig,
	ProvideObservabilityConfig,
	ProvideLoggerConfig,
	ProvideTxConfig,
)

// NewBundle builds the configuration bundle from runtime params.
func NewBundle(params Params) (*Bundle, error) {
	return Build(params)
}

// ProvideServiceMetadata returns the resolved ServiceMetadata from the bundle.
func ProvideServiceMetadata(b *Bundle) ServiceMetadata {
	if b == nil {
		return ServiceMetadata{}
	}
	return b.Service
}

// ProvideRuntimeConfig exposes the normalized runtime configuration.
func ProvideRuntimeConfig(b *Bundle) RuntimeConfig {
	if b == nil {
		return RuntimeConfig{}
	}
	return b.Runtime
}

// ProvideServerConfig returns the server section of the runtime configuration.
func ProvideServerConfig(rc RuntimeConfig) ServerConfig {
	return rc.Server
}

// ProvideDatabaseConfig returns the database section of the runtime configuration.
func ProvideDatabaseConfig(rc RuntimeConfig) DatabaseConfig {
	return rc.Database
}

// ProvideStorageConfig returns the object-store section of the runtime configuration.
func ProvideStorageConfig(rc RuntimeConfig) StorageConfig {
	return rc.Storage
}

// ProvideMessagingConfig returns the Pub/Sub section of the runtime configuration.
func ProvideMessagingConfig(rc RuntimeConfig) MessagingConfig {
	return rc.Messaging
}

// ProvideObservabilityConfig exposes the normalized observability configuration.
func ProvideObservabilityConfig(b *Bundle) obswire.ObservabilityConfig {
	if b == nil {
		return obswire.ObservabilityConfig{}
	}
	return b.ObsConfig
}

// ProvideLoggerConfig derives the gclog configuration from service metadata.
func ProvideLoggerConfig(meta ServiceMetadata) gclog.Config {
	return meta.LoggerConfig()
}

// ProvideTxConfig exposes the txmanager configuration.
func ProvideTxConfig(b *Bundle) txconfig.Config {
	if b == nil {
		return txconfig.Config{}
	}
	return b.TxConfig
}

package configloader

import "time"

const (
	// defaultConfPath is the fallback configuration directory when no overrides are provided.
	defaultConfPath = "configs"
	// envConfPath is the env var name that overrides configuration directory when flag is absent.
	envConfPath = "CONF_PATH"
	// defaultServiceName is used when SERVICE_NAME is missing.
	defaultServiceName = "media"
	// defaultServiceVersion is used when SERVICE_VERSION is missing.
	defaultServiceVersion = "dev"
	// defaultEnvironment is used when APP_ENV is missing.
	defaultEnvironment = "development"
	// defaultInstanceID is used when the hostname cannot be resolved.
	defaultInstanceID = "unknown"
	// defaultHTTPAddr is the listen address when server.http.addr is omitted.
	defaultHTTPAddr = "0.0.0.0:8000"

	defaultUploadTimeout  = 90 * time.Second
	defaultDeleteTimeout  = 10 * time.Second
	defaultSignedURLTTL   = 15 * time.Minute
	defaultPublishTimeout = 5 * time.Second
)

func resolveServiceName(raw string) string {
	if raw == "" {
		return defaultServiceName
	}
	return raw
}

func resolveServiceVersion(raw string) string {
	if raw == "" {
		return defaultServiceVersion
	}
	return raw
}

func resolveEnvironment(raw string) string {
	if raw == "" {
		return defaultEnvironment
	}
	return raw
}

func resolveInstanceID(raw string) string {
	if raw == "" {
		return defaultInstanceID
	}
	return raw
}

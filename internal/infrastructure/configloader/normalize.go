package configloader

import (
	"fmt"
	"time"
)

// fileBootstrap 镜像 configs/config.yaml 的文件结构。
// 所有 duration 字段以字符串承载（"3s"、"15m"），在归一化阶段解析。
type fileBootstrap struct {
	Server        fileServer        `json:"server"`
	Data          fileData          `json:"data"`
	Storage       fileStorage       `json:"storage"`
	Messaging     fileMessaging     `json:"messaging"`
	Observability fileObservability `json:"observability"`
}

type fileServer struct {
	HTTP struct {
		Network string `json:"network"`
		Addr    string `json:"addr"`
		Timeout string `json:"timeout"`
	} `json:"http"`
	Handler struct {
		DefaultTimeout string `json:"default_timeout"`
		CommandTimeout string `json:"command_timeout"`
		QueryTimeout   string `json:"query_timeout"`
		UploadTimeout  string `json:"upload_timeout"`
	} `json:"handler"`
}

type fileData struct {
	Postgres struct {
		DSN               string `json:"dsn"`
		MaxOpenConns      int    `json:"max_open_conns"`
		MinOpenConns      int    `json:"min_open_conns"`
		MaxConnLifetime   string `json:"max_conn_lifetime"`
		MaxConnIdleTime   string `json:"max_conn_idle_time"`
		HealthCheckPeriod string `json:"health_check_period"`
		Schema            string `json:"schema"`
		PreparedStmts     bool   `json:"prepared_statements_enabled"`
		Transaction       struct {
			DefaultIsolation string `json:"default_isolation"`
			DefaultTimeout   string `json:"default_timeout"`
			LockTimeout      string `json:"lock_timeout"`
			MaxRetries       int    `json:"max_retries"`
			MetricsEnabled   *bool  `json:"metrics_enabled"`
		} `json:"transaction"`
	} `json:"postgres"`
}

type fileStorage struct {
	GCS struct {
		Bucket               string `json:"bucket"`
		TmpDir               string `json:"tmp_dir"`
		UploadTimeout        string `json:"upload_timeout"`
		DeleteTimeout        string `json:"delete_timeout"`
		SignedURLTTL         string `json:"signed_url_ttl"`
		SignerServiceAccount string `json:"signer_service_account"`
	} `json:"gcs"`
}

type fileMessaging struct {
	PubSub struct {
		ProjectID        string `json:"project_id"`
		TopicID          string `json:"topic_id"`
		EmulatorEndpoint string `json:"emulator_endpoint"`
		PublishTimeout   string `json:"publish_timeout"`
		OrderingEnabled  *bool  `json:"ordering_key_enabled"`
		LoggingEnabled   *bool  `json:"logging_enabled"`
		MetricsEnabled   *bool  `json:"metrics_enabled"`
	} `json:"pubsub"`
}

type fileObservability struct {
	GlobalAttributes map[string]string `json:"global_attributes"`
	Tracing          *struct {
		Enabled            bool              `json:"enabled"`
		Exporter           string            `json:"exporter"`
		Endpoint           string            `json:"endpoint"`
		Headers            map[string]string `json:"headers"`
		Insecure           bool              `json:"insecure"`
		SamplingRatio      float64           `json:"sampling_ratio"`
		BatchTimeout       string            `json:"batch_timeout"`
		ExportTimeout      string            `json:"export_timeout"`
		MaxQueueSize       int               `json:"max_queue_size"`
		MaxExportBatchSize int               `json:"max_export_batch_size"`
		Required           bool              `json:"required"`
		Attributes         map[string]string `json:"attributes"`
	} `json:"tracing"`
	Metrics *struct {
		Enabled             bool              `json:"enabled"`
		Exporter            string            `json:"exporter"`
		Endpoint            string            `json:"endpoint"`
		Headers             map[string]string `json:"headers"`
		Insecure            bool              `json:"insecure"`
		Interval            string            `json:"interval"`
		DisableRuntimeStats bool              `json:"disable_runtime_stats"`
		Required            bool              `json:"required"`
		ResourceAttributes  map[string]string `json:"resource_attributes"`
	} `json:"metrics"`
}

// normalize 将文件结构转换为 RuntimeConfig，解析所有 duration 字段。
func normalize(fb *fileBootstrap) (RuntimeConfig, error) {
	if fb == nil {
		return RuntimeConfig{}, nil
	}
	p := &durationParser{}

	rc := RuntimeConfig{
		Server: ServerConfig{
			Network: fb.Server.HTTP.Network,
			Address: fb.Server.HTTP.Addr,
			Timeout: p.parse("server.http.timeout", fb.Server.HTTP.Timeout),
			Handler: HandlerTimeoutConfig{
				Default: p.parse("server.handler.default_timeout", fb.Server.Handler.DefaultTimeout),
				Command: p.parse("server.handler.command_timeout", fb.Server.Handler.CommandTimeout),
				Query:   p.parse("server.handler.query_timeout", fb.Server.Handler.QueryTimeout),
				Upload:  p.parse("server.handler.upload_timeout", fb.Server.Handler.UploadTimeout),
			},
		},
		Database: DatabaseConfig{
			DSN:               fb.Data.Postgres.DSN,
			MaxOpenConns:      fb.Data.Postgres.MaxOpenConns,
			MinOpenConns:      fb.Data.Postgres.MinOpenConns,
			MaxConnLifetime:   p.parse("data.postgres.max_conn_lifetime", fb.Data.Postgres.MaxConnLifetime),
			MaxConnIdleTime:   p.parse("data.postgres.max_conn_idle_time", fb.Data.Postgres.MaxConnIdleTime),
			HealthCheckPeriod: p.parse("data.postgres.health_check_period", fb.Data.Postgres.HealthCheckPeriod),
			Schema:            fb.Data.Postgres.Schema,
			PreparedStmts:     fb.Data.Postgres.PreparedStmts,
			Transaction: TransactionConfig{
				DefaultIsolation: fb.Data.Postgres.Transaction.DefaultIsolation,
				DefaultTimeout:   p.parse("data.postgres.transaction.default_timeout", fb.Data.Postgres.Transaction.DefaultTimeout),
				LockTimeout:      p.parse("data.postgres.transaction.lock_timeout", fb.Data.Postgres.Transaction.LockTimeout),
				MaxRetries:       fb.Data.Postgres.Transaction.MaxRetries,
				MetricsEnabled:   fb.Data.Postgres.Transaction.MetricsEnabled,
			},
		},
		Storage: StorageConfig{
			Bucket:               fb.Storage.GCS.Bucket,
			TmpDir:               fb.Storage.GCS.TmpDir,
			UploadTimeout:        p.parse("storage.gcs.upload_timeout", fb.Storage.GCS.UploadTimeout),
			DeleteTimeout:        p.parse("storage.gcs.delete_timeout", fb.Storage.GCS.DeleteTimeout),
			SignedURLTTL:         p.parse("storage.gcs.signed_url_ttl", fb.Storage.GCS.SignedURLTTL),
			SignerServiceAccount: fb.Storage.GCS.SignerServiceAccount,
		},
		Messaging: MessagingConfig{
			ProjectID:        fb.Messaging.PubSub.ProjectID,
			TopicID:          fb.Messaging.PubSub.TopicID,
			EmulatorEndpoint: fb.Messaging.PubSub.EmulatorEndpoint,
			PublishTimeout:   p.parse("messaging.pubsub.publish_timeout", fb.Messaging.PubSub.PublishTimeout),
			OrderingEnabled:  fb.Messaging.PubSub.OrderingEnabled,
			LoggingEnabled:   fb.Messaging.PubSub.LoggingEnabled,
			MetricsEnabled:   fb.Messaging.PubSub.MetricsEnabled,
		},
		Observability: normalizeObservability(fb.Observability, p),
	}
	if p.err != nil {
		return RuntimeConfig{}, p.err
	}
	return rc, nil
}

func normalizeObservability(fo fileObservability, p *durationParser) ObservabilityConfig {
	cfg := ObservabilityConfig{
		GlobalAttributes: mapCopy(fo.GlobalAttributes),
	}
	if tr := fo.Tracing; tr != nil {
		cfg.Tracing = &TracingConfig{
			Enabled:            tr.Enabled,
			Exporter:           tr.Exporter,
			Endpoint:           tr.Endpoint,
			Headers:            mapCopy(tr.Headers),
			Insecure:           tr.Insecure,
			SamplingRatio:      tr.SamplingRatio,
			BatchTimeout:       p.parse("observability.tracing.batch_timeout", tr.BatchTimeout),
			ExportTimeout:      p.parse("observability.tracing.export_timeout", tr.ExportTimeout),
			MaxQueueSize:       tr.MaxQueueSize,
			MaxExportBatchSize: tr.MaxExportBatchSize,
			Required:           tr.Required,
			Attributes:         mapCopy(tr.Attributes),
		}
	}
	if mt := fo.Metrics; mt != nil {
		cfg.Metrics = &MetricsConfig{
			Enabled:             mt.Enabled,
			Exporter:            mt.Exporter,
			Endpoint:            mt.Endpoint,
			Headers:             mapCopy(mt.Headers),
			Insecure:            mt.Insecure,
			Interval:            p.parse("observability.metrics.interval", mt.Interval),
			DisableRuntimeStats: mt.DisableRuntimeStats,
			Required:            mt.Required,
			ResourceAttributes:  mapCopy(mt.ResourceAttributes),
		}
	}
	return cfg
}

// durationParser 累积首个解析错误，避免逐字段的错误处理样板。
type durationParser struct {
	err error
}

func (p *durationParser) parse(field, raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("parse %s=%q: %w", field, raw, err)
	}
	return d
}

func mapCopy(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Package configloader 负责加载 bootstrap 配置并归一化为强类型的运行时配置。
// 配置来源：configs/ 下的 YAML 文件 + .env 文件 + 环境变量覆盖。
package configloader

import (
	"time"
)

// RuntimeConfig 聚合服务运行所需的全部配置片段。
type RuntimeConfig struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Storage       StorageConfig
	Messaging     MessagingConfig
	Observability ObservabilityConfig
}

// ServerConfig 描述 HTTP 服务器与 Handler 超时策略。
type ServerConfig struct {
	Network string
	Address string
	Timeout time.Duration
	Handler HandlerTimeoutConfig
}

// HandlerTimeoutConfig 按 Handler 语义类别划分超时。
// Upload 类请求需要流式接收 multipart 大文件，超时显著长于普通命令。
type HandlerTimeoutConfig struct {
	Default time.Duration
	Command time.Duration
	Query   time.Duration
	Upload  time.Duration
}

// DatabaseConfig 描述 PostgreSQL 连接池与事务配置。
type DatabaseConfig struct {
	DSN               string
	MaxOpenConns      int
	MinOpenConns      int
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	Schema            string
	PreparedStmts     bool
	Transaction       TransactionConfig
}

// TransactionConfig 映射 txmanager 的事务默认行为。
type TransactionConfig struct {
	DefaultIsolation string
	DefaultTimeout   time.Duration
	LockTimeout      time.Duration
	MaxRetries       int
	MetricsEnabled   *bool
}

// StorageConfig 描述对象存储（GCS）网关与签名配置。
type StorageConfig struct {
	Bucket               string
	TmpDir               string
	UploadTimeout        time.Duration
	DeleteTimeout        time.Duration
	SignedURLTTL         time.Duration
	SignerServiceAccount string
}

// MessagingConfig 描述生命周期事件使用的 Pub/Sub 通道。
// TopicID 为空时事件发布被整体禁用。
type MessagingConfig struct {
	ProjectID        string
	TopicID          string
	EmulatorEndpoint string
	PublishTimeout   time.Duration
	OrderingEnabled  *bool
	LoggingEnabled   *bool
	MetricsEnabled   *bool
}

// ObservabilityConfig 为 lingo-utils/observability 的纯结构体镜像。
type ObservabilityConfig struct {
	Tracing          *TracingConfig
	Metrics          *MetricsConfig
	GlobalAttributes map[string]string
}

// TracingConfig 描述分布式追踪导出配置。
type TracingConfig struct {
	Enabled            bool
	Exporter           string
	Endpoint           string
	Headers            map[string]string
	Insecure           bool
	SamplingRatio      float64
	BatchTimeout       time.Duration
	ExportTimeout      time.Duration
	MaxQueueSize       int
	MaxExportBatchSize int
	Required           bool
	Attributes         map[string]string
}

// MetricsConfig 描述指标导出配置。
type MetricsConfig struct {
	Enabled             bool
	Exporter            string
	Endpoint            string
	Headers             map[string]string
	Insecure            bool
	Interval            time.Duration
	DisableRuntimeStats bool
	Required            bool
	ResourceAttributes  map[string]string
}

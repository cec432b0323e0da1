package configloader

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/bionicotaku/lingo-utils/gclog"
	obswire "github.com/bionicotaku/lingo-utils/observability"
	txconfig "github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/joho/godotenv"
)

const (
	envServiceName    = "SERVICE_NAME"
	envServiceVersion = "SERVICE_VERSION"
	envAppEnv         = "APP_ENV"
	envDatabaseURL    = "DATABASE_URL"
	envPort           = "PORT"
	envMediaBucket    = "MEDIA_BUCKET"
)

var envFileNames = []string{".env.local", ".env"}

// Params 包含构造配置 Bundle 所需的运行时输入参数。
type Params struct {
	ConfPath string // 配置文件路径（可为空，使用默认值）
}

// ServiceMetadata 保存服务标识信息，供日志和可观测性组件使用。
type ServiceMetadata struct {
	Name        string
	Version     string
	Environment string
	InstanceID  string
}

// Bundle 聚合强类型的配置片段，供下游 Wire 注入使用。
type Bundle struct {
	Runtime   RuntimeConfig
	ObsConfig obswire.ObservabilityConfig
	Service   ServiceMetadata
	TxConfig  txconfig.Config
}

// BuildError 捕获配置构建过程中的上下文错误信息。
type BuildError struct {
	Stage string
	Path  string
	Err   error
}

// Error 实现 error 接口，提供包含上下文的错误信息。
func (e BuildError) Error() string {
	if e.Stage == "" {
		return e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("config %s at %q: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Stage, e.Err)
}

// Unwrap 暴露底层错误，支持 errors.Is/As 链式查询。
func (e BuildError) Unwrap() error {
	return e.Err
}

// ObservabilityInfo 将服务元信息转换为 observability.ServiceInfo。
func (m ServiceMetadata) ObservabilityInfo() obswire.ServiceInfo {
	return obswire.ServiceInfo{
		Name:        m.Name,
		Version:     m.Version,
		Environment: m.Environment,
	}
}

// LoggerConfig 将服务元信息转换为 gclog.Config。
func (m ServiceMetadata) LoggerConfig() gclog.Config {
	labels := map[string]string{}
	if m.InstanceID != "" {
		labels["service.id"] = m.InstanceID
	}
	return gclog.Config{
		Service:              m.Name,
		Version:              m.Version,
		Environment:          m.Environment,
		InstanceID:           m.InstanceID,
		StaticLabels:         labels,
		EnableSourceLocation: true,
	}
}

// Build 从 bootstrap 配置文件构建 Bundle。
//
// 流程：
// 1. 解析配置路径（应用回退规则）并加载 .env 文件
// 2. 加载 YAML 并归一化为 RuntimeConfig
// 3. 应用环境变量覆盖（DATABASE_URL、PORT、MEDIA_BUCKET）
// 4. 校验必填字段
// 5. 推导服务元信息
func Build(params Params) (*Bundle, error) {
	confPath := ResolveConfPath(params.ConfPath)
	loadEnvFiles(confPath)

	runtime, err := loadRuntime(confPath)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(&runtime)
	applyDefaults(&runtime)
	if err := validate(runtime, confPath); err != nil {
		return nil, err
	}

	meta := buildServiceMetadata()
	return &Bundle{
		Runtime:   runtime,
		ObsConfig: toObservabilityConfig(runtime.Observability),
		Service:   meta,
		TxConfig:  toTxManagerConfig(runtime.Database.Transaction),
	}, nil
}

// ResolveConfPath 应用回退规则确定要加载的配置目录/文件路径。
// 优先级：显式传入路径 > CONF_PATH 环境变量 > 默认路径。
func ResolveConfPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(envConfPath); env != "" {
		return env
	}
	return defaultConfPath
}

// loadRuntime 加载配置文件并归一化。
//
// 错误阶段：
//   - "load": 文件读取失败（文件不存在、权限不足）
//   - "scan": YAML/JSON 解析失败（格式错误、类型不匹配）
//   - "normalize": duration 字符串解析失败
func loadRuntime(confPath string) (RuntimeConfig, error) {
	c := config.New(config.WithSource(file.NewSource(confPath)))
	if err := c.Load(); err != nil {
		return RuntimeConfig{}, BuildError{Stage: "load", Path: confPath, Err: err}
	}
	defer c.Close()

	var fb fileBootstrap
	if err := c.Scan(&fb); err != nil {
		return RuntimeConfig{}, BuildError{Stage: "scan", Path: confPath, Err: err}
	}
	runtime, err := normalize(&fb)
	if err != nil {
		return RuntimeConfig{}, BuildError{Stage: "normalize", Path: confPath, Err: err}
	}
	return runtime, nil
}

// applyEnvOverrides 应用环境变量覆盖配置文件中的特定字段。
//
// 支持的环境变量：
//   - DATABASE_URL: 覆盖 data.postgres.dsn
//   - PORT: 覆盖 server.http.addr 的端口部分（Cloud Run 动态端口）
//   - MEDIA_BUCKET: 覆盖 storage.gcs.bucket
//
// 环境变量为空时不覆盖，保留配置文件原值。
func applyEnvOverrides(rc *RuntimeConfig) {
	if rc == nil {
		return
	}
	if dsn := os.Getenv(envDatabaseURL); dsn != "" {
		rc.Database.DSN = dsn
	}
	if port := os.Getenv(envPort); port != "" {
		rc.Server.Address = replacePort(rc.Server.Address, port)
	}
	if bucket := os.Getenv(envMediaBucket); bucket != "" {
		rc.Storage.Bucket = bucket
	}
}

func applyDefaults(rc *RuntimeConfig) {
	if rc.Server.Address == "" {
		rc.Server.Address = defaultHTTPAddr
	}
	if rc.Storage.TmpDir == "" {
		rc.Storage.TmpDir = os.TempDir()
	}
	if rc.Storage.UploadTimeout <= 0 {
		rc.Storage.UploadTimeout = defaultUploadTimeout
	}
	if rc.Storage.DeleteTimeout <= 0 {
		rc.Storage.DeleteTimeout = defaultDeleteTimeout
	}
	if rc.Storage.SignedURLTTL <= 0 {
		rc.Storage.SignedURLTTL = defaultSignedURLTTL
	}
	if rc.Messaging.PublishTimeout <= 0 {
		rc.Messaging.PublishTimeout = defaultPublishTimeout
	}
}

// validate 校验归一化后的配置完整性，失败时返回 stage=validate 的 BuildError。
func validate(rc RuntimeConfig, confPath string) error {
	var problems []error
	if rc.Database.DSN == "" {
		problems = append(problems, errors.New("data.postgres.dsn is required (set DATABASE_URL)"))
	}
	if rc.Storage.Bucket == "" {
		problems = append(problems, errors.New("storage.gcs.bucket is required (set MEDIA_BUCKET)"))
	}
	if rc.Storage.UploadTimeout <= rc.Storage.DeleteTimeout {
		problems = append(problems, errors.New("storage.gcs.upload_timeout must exceed delete_timeout"))
	}
	if len(problems) == 0 {
		return nil
	}
	return BuildError{Stage: "validate", Path: confPath, Err: errors.Join(problems...)}
}

// buildServiceMetadata 构建服务元信息，用于日志、追踪和指标标签。
//
// 数据来源优先级：
// 1. 环境变量（SERVICE_NAME、SERVICE_VERSION、APP_ENV）
// 2. 默认值（name: "media", version: "dev", env: "development"）
func buildServiceMetadata() ServiceMetadata {
	name := resolveServiceName(os.Getenv(envServiceName))
	version := resolveServiceVersion(os.Getenv(envServiceVersion))
	env := resolveEnvironment(os.Getenv(envAppEnv))
	host, _ := os.Hostname()
	host = resolveInstanceID(host)

	return ServiceMetadata{
		Name:        name,
		Version:     version,
		Environment: env,
		InstanceID:  host,
	}
}

// loadEnvFiles best-effort 加载配置相关的 .env 文件，失败时忽略以保持幂等。
func loadEnvFiles(confPath string) {
	files := envFileCandidates(confPath)
	if len(files) == 0 {
		return
	}
	_ = godotenv.Load(files...)
}

// envFileCandidates 搜索并返回所有可用的 .env 文件路径。
//
// 搜索策略：
// 1. 按优先级遍历目录：confPath 目录 -> 当前工作目录
// 2. 在每个目录中查找：.env.local（高优先级）、.env（低优先级）
// 3. 去重：同一文件路径仅保留第一次出现的位置
func envFileCandidates(confPath string) []string {
	dirs := orderedDirs(confPath)
	seen := make(map[string]struct{})
	var files []string
	for _, dir := range dirs {
		for _, name := range envFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if _, ok := seen[candidate]; ok {
				continue
			}
			files = append(files, candidate)
			seen[candidate] = struct{}{}
		}
	}
	return files
}

// orderedDirs 按优先级返回用于搜索 .env 文件的目录列表。
func orderedDirs(confPath string) []string {
	var dirs []string
	appendUnique := func(path string) {
		if path == "" {
			return
		}
		clean := filepath.Clean(path)
		for _, existing := range dirs {
			if existing == clean {
				return
			}
		}
		dirs = append(dirs, clean)
	}

	if confPath != "" {
		if info, err := os.Stat(confPath); err == nil {
			if info.IsDir() {
				appendUnique(confPath)
			} else {
				appendUnique(filepath.Dir(confPath))
			}
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		appendUnique(cwd)
	}

	return dirs
}

// toObservabilityConfig 将归一化配置转换为 observability 包的结构。
func toObservabilityConfig(src ObservabilityConfig) obswire.ObservabilityConfig {
	cfg := obswire.ObservabilityConfig{
		GlobalAttributes: mapCopy(src.GlobalAttributes),
	}
	if tr := src.Tracing; tr != nil {
		cfg.Tracing = &obswire.TracingConfig{
			Enabled:            tr.Enabled,
			Exporter:           tr.Exporter,
			Endpoint:           tr.Endpoint,
			Headers:            mapCopy(tr.Headers),
			Insecure:           tr.Insecure,
			SamplingRatio:      tr.SamplingRatio,
			BatchTimeout:       tr.BatchTimeout,
			ExportTimeout:      tr.ExportTimeout,
			MaxQueueSize:       tr.MaxQueueSize,
			MaxExportBatchSize: tr.MaxExportBatchSize,
			Required:           tr.Required,
			Attributes:         mapCopy(tr.Attributes),
		}
	}
	if mt := src.Metrics; mt != nil {
		cfg.Metrics = &obswire.MetricsConfig{
			Enabled:             mt.Enabled,
			Exporter:            mt.Exporter,
			Endpoint:            mt.Endpoint,
			Headers:             mapCopy(mt.Headers),
			Insecure:            mt.Insecure,
			Interval:            mt.Interval,
			DisableRuntimeStats: mt.DisableRuntimeStats,
			Required:            mt.Required,
			ResourceAttributes:  mapCopy(mt.ResourceAttributes),
		}
	}
	return cfg
}

// replacePort 替换地址中的端口部分，保留 host。
// 支持格式：
//   - "0.0.0.0:9090" -> "0.0.0.0:8080"
//   - ":9090" -> ":8080"
//   - "[::1]:9090" -> "[::1]:8080"
func replacePort(addr, newPort string) string {
	if addr == "" {
		return "0.0.0.0:" + newPort
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "0.0.0.0:" + newPort
	}

	return net.JoinHostPort(host, newPort)
}

func toTxManagerConfig(tx TransactionConfig) txconfig.Config {
	cfg := txconfig.Config{
		DefaultIsolation: tx.DefaultIsolation,
		DefaultTimeout:   tx.DefaultTimeout,
		LockTimeout:      tx.LockTimeout,
		MaxRetries:       tx.MaxRetries,
	}
	if tx.MetricsEnabled != nil {
		v := *tx.MetricsEnabled
		cfg.MetricsEnabled = &v
	}
	return cfg
}

// Package intake 负责 multipart 上传的校验与本地暂存。
// 所有校验在任何上游调用（对象存储、数据库）之前完成；
// 校验失败立即拒绝整个请求，不再继续暂存后续文件。
package intake

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	configloader "github.com/bionicotaku/lingo-services-media/internal/infrastructure/configloader"
)

// Role 表示 multipart 表单中某个文件字段承担的语义角色。
type Role string

// 支持的文件角色。primary 为视频，其余均为图片。
const (
	RolePrimary    Role = "primary"
	RolePreview    Role = "preview"
	RoleAvatar     Role = "avatar"
	RoleCoverImage Role = "coverImage"
)

const (
	maxVideoBytes int64 = 100 << 20 // 100 MiB
	maxImageBytes int64 = 5 << 20   // 5 MiB
)

// 校验失败的哨兵错误，由上层映射为 400。
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFileTooLarge         = errors.New("file exceeds size limit")
	ErrMissingFile          = errors.New("file is required")
	ErrUnknownRole          = errors.New("unknown file role")
)

var videoMIME = map[string]struct{}{
	"video/mp4":        {},
	"video/webm":       {},
	"video/quicktime":  {},
	"video/x-msvideo":  {},
	"video/x-matroska": {},
}

var imageMIME = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// StagedFile 描述一个已通过校验并落盘的暂存文件。
type StagedFile struct {
	Role         Role
	Path         string
	ContentType  string
	SizeBytes    int64
	OriginalName string
}

// Discard 移除暂存文件（用于上传前的回退路径），失败时忽略。
func (f *StagedFile) Discard() {
	if f == nil || f.Path == "" {
		return
	}
	_ = os.Remove(f.Path)
}

// Stager 将 multipart 文件校验后写入本地暂存目录。
// 暂存文件名形如 <role>-<uuid><ext>，避免并发请求间的命名冲突。
type Stager struct {
	dir   string
	newID func() string
	log   *log.Helper
}

// NewStager 构造 Stager 并确保暂存目录存在。
func NewStager(cfg configloader.StorageConfig, logger log.Logger) (*Stager, error) {
	dir := cfg.TmpDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir %s: %w", dir, err)
	}
	return &Stager{
		dir:   dir,
		newID: func() string { return uuid.NewString() },
		log:   log.NewHelper(logger),
	}, nil
}

// Validate 校验文件的 MIME 类型与大小，不产生任何副作用。
func Validate(role Role, fh *multipart.FileHeader) error {
	if fh == nil {
		return fmt.Errorf("%w: role=%s", ErrMissingFile, role)
	}
	allowed, limit, err := policyFor(role)
	if err != nil {
		return err
	}
	contentType := normalizeContentType(fh.Header.Get("Content-Type"))
	if _, ok := allowed[contentType]; !ok {
		return fmt.Errorf("%w: role=%s content_type=%s", ErrUnsupportedMediaType, role, contentType)
	}
	if fh.Size > limit {
		return fmt.Errorf("%w: role=%s size=%d limit=%d", ErrFileTooLarge, role, fh.Size, limit)
	}
	return nil
}

// Stage 校验并暂存文件，返回 StagedFile。
// 校验失败时不写任何字节到磁盘。
func (s *Stager) Stage(role Role, fh *multipart.FileHeader) (*StagedFile, error) {
	if err := Validate(role, fh); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open multipart file: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%s-%s%s", role, s.newID(), filepath.Ext(fh.Filename))
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}

	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("stage %s: %w", role, err)
	}

	return &StagedFile{
		Role:         role,
		Path:         path,
		ContentType:  normalizeContentType(fh.Header.Get("Content-Type")),
		SizeBytes:    written,
		OriginalName: fh.Filename,
	}, nil
}

func policyFor(role Role) (map[string]struct{}, int64, error) {
	switch role {
	case RolePrimary:
		return videoMIME, maxVideoBytes, nil
	case RolePreview, RoleAvatar, RoleCoverImage:
		return imageMIME, maxImageBytes, nil
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
}

func normalizeContentType(raw string) string {
	ct := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return ct
}

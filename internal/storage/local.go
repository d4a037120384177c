package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go-signage-cms/internal/domain"
	"go-signage-cms/pkg/utils"
)

// 扩展名 → 允许的 MIME。两边都得对得上才收
var imageTypes = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".webp": {"image/webp"},
}

const svgMIME = "image/svg+xml"

type Local struct {
	Root     string // 磁盘根目录
	BaseURL  string // 公开路径前缀，如 /uploads
	MaxBytes int64
	AllowSVG bool
}

func NewLocal(root, baseURL string, maxSizeMB int, allowSVG bool) *Local {
	_ = os.MkdirAll(root, 0o755)
	return &Local{
		Root:     root,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		MaxBytes: int64(maxSizeMB) << 20,
		AllowSVG: allowSVG,
	}
}

func (l *Local) validate(fh *multipart.FileHeader) error {
	if l.MaxBytes > 0 && fh.Size > l.MaxBytes {
		return domain.Validation(fmt.Sprintf("file too large (max %d MB)", l.MaxBytes>>20))
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	ct := fh.Header.Get("Content-Type")
	if ext == ".svg" {
		if l.AllowSVG && ct == svgMIME {
			return nil
		}
		return domain.Validation("svg uploads are not allowed")
	}
	mimes, ok := imageTypes[ext]
	if !ok {
		return domain.Validation("only image files are allowed (JPEG, PNG, GIF, WebP)")
	}
	for _, m := range mimes {
		if ct == m {
			return nil
		}
	}
	return domain.Validation("file extension does not match content type")
}

func (l *Local) SaveImage(folder string, fh *multipart.FileHeader) (string, error) {
	if err := l.validate(fh); err != nil {
		return "", err
	}
	if err := l.EnsureFolder(folder); err != nil {
		return "", err
	}

	name := utils.NewID() + strings.ToLower(filepath.Ext(fh.Filename))
	dst := filepath.Join(l.Root, folder, name)

	src, err := fh.Open()
	if err != nil {
		return "", domain.Storage("open upload failed", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", domain.Storage("create upload file failed", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		_ = os.Remove(dst)
		return "", domain.Storage("write upload file failed", err)
	}
	return path.Join(l.BaseURL, folder, name), nil
}

func (l *Local) Delete(publicPath string) error {
	rel, ok := l.relPath(publicPath)
	if !ok {
		return nil
	}
	return os.Remove(filepath.Join(l.Root, rel))
}

func (l *Local) EnsureFolder(folder string) error {
	if err := os.MkdirAll(filepath.Join(l.Root, folder), 0o755); err != nil {
		return domain.Storage("create upload folder failed", err)
	}
	return nil
}

func (l *Local) RemoveFolder(folder string) error {
	if folder == "" || strings.Contains(folder, "..") {
		return nil
	}
	return os.RemoveAll(filepath.Join(l.Root, folder))
}

// relPath 只认自家 BaseURL 下且不越界的路径
func (l *Local) relPath(publicPath string) (string, bool) {
	if !strings.HasPrefix(publicPath, l.BaseURL+"/") {
		return "", false
	}
	rel := strings.TrimPrefix(publicPath, l.BaseURL+"/")
	rel = path.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.FromSlash(rel), true
}

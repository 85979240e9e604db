package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"social-go/internal/config"
	"social-go/internal/mediatypes"
)

// LocalMediaStore 实现了 mediatypes.MediaStore，文件保存在本地目录并由 API 服务器静态提供。
type LocalMediaStore struct {
	basePath string // 本地存储的基础路径，例如 "./uploads"
	baseURL  string // 文件访问 URL 的前缀，例如 "/uploads"
}

// NewLocalMediaStore creates the directory if needed.
func NewLocalMediaStore(cfg config.StorageConfig, baseURL string) (*LocalMediaStore, error) {
	if err := os.MkdirAll(cfg.LocalPath, 0755); err != nil {
		return nil, fmt.Errorf("创建本地存储目录失败 '%s': %w", cfg.LocalPath, err)
	}
	return &LocalMediaStore{
		basePath: cfg.LocalPath,
		baseURL:  baseURL,
	}, nil
}

// Store 将文件保存到本地文件系统，文件名为 uuid 加原扩展名。
func (s *LocalMediaStore) Store(ctx context.Context, reader io.Reader, size int64, fileName, mimeType string) (*mediatypes.MediaRef, error) {
	key := uuid.New().String() + extensionFor(fileName, mimeType)
	dstPath := filepath.Join(s.basePath, key)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("创建目标文件失败 '%s': %w", dstPath, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("写入文件失败: %w", err)
	}
	if size >= 0 && written != size {
		os.Remove(dstPath)
		return nil, fmt.Errorf("文件大小不匹配: 预期 %d, 实际写入 %d", size, written)
	}

	return &mediatypes.MediaRef{
		Key:      key,
		URL:      strings.TrimSuffix(s.baseURL, "/") + "/" + url.PathEscape(key),
		MimeType: mimeType,
		Size:     written,
		FileName: fileName,
	}, nil
}

// Delete removes the file behind ref. A missing file is not an error.
func (s *LocalMediaStore) Delete(ctx context.Context, ref mediatypes.MediaRef) error {
	if ref.Key == "" || ref.Key != filepath.Base(ref.Key) {
		return fmt.Errorf("invalid media key %q", ref.Key)
	}
	err := os.Remove(filepath.Join(s.basePath, ref.Key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除文件失败 '%s': %w", ref.Key, err)
	}
	return nil
}

// extensionFor keeps the original extension, falling back to the MIME type.
func extensionFor(fileName, mimeType string) string {
	ext := filepath.Ext(fileName)
	if ext == "" && mimeType != "" {
		if extensions, _ := mime.ExtensionsByType(mimeType); len(extensions) > 0 {
			ext = extensions[0]
		}
	}
	return strings.ToLower(ext)
}

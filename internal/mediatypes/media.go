package mediatypes

import (
	"context"
	"io"
)

// MediaRef 描述一个已存储的媒体文件。Key 是存储系统内的唯一标识，删除时使用。
type MediaRef struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// MediaStore 定义了媒体存储操作的接口。
// 接口放在独立的包中，storage 和 services 都可以引用而不产生循环依赖。
type MediaStore interface {
	// Store 保存 reader 中的内容并返回可公开访问的引用。
	Store(ctx context.Context, reader io.Reader, size int64, fileName, mimeType string) (*MediaRef, error)
	// Delete 删除 Store 返回的对象。对象已不存在时返回 nil。
	Delete(ctx context.Context, ref MediaRef) error
}

// Upload 是尚未写入 MediaStore 的上传文件。服务层先完成校验再调用 Store。
type Upload struct {
	Reader   io.Reader
	Size     int64
	FileName string
	MimeType string
}

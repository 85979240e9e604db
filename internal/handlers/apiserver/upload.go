package apiserver

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"social-go/internal/apperrors"
	"social-go/internal/config"
	"social-go/internal/mediatypes"
)

const (
	defaultMaxMemory = 32 << 20 // 32 MB default max memory for multipart forms
)

// errTooLarge maps to 413, which has no apperrors kind.
var errTooLarge = errors.New("request body too large")

// multipartUploads 持有解析后的表单及其打开的文件，使用完毕后必须 Close。
type multipartUploads struct {
	form    *multipart.Form
	Uploads []mediatypes.Upload
	files   []multipart.File
}

func (m *multipartUploads) Value(key string) string {
	if m.form == nil {
		return ""
	}
	if v := m.form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (m *multipartUploads) Close() {
	for _, f := range m.files {
		f.Close()
	}
	if m.form != nil {
		_ = m.form.RemoveAll()
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseImages reads every file under field. maxFiles bounds the total request
// size to maxFiles * MaxFileSizeMB.
func parseImages(w http.ResponseWriter, r *http.Request, cfg config.StorageConfig, field string, maxFiles int) (*multipartUploads, error) {
	maxFileSize := cfg.MaxFileSizeMB << 20 // Convert MB to bytes
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxMemory
	}
	if maxFiles < 1 {
		maxFiles = 1
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize*int64(maxFiles)+defaultMaxMemory)

	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errTooLarge
		}
		return nil, apperrors.Wrap(apperrors.KindValidation, "Invalid multipart form", err)
	}

	out := &multipartUploads{form: r.MultipartForm}
	for _, header := range r.MultipartForm.File[field] {
		if header.Size > maxFileSize {
			out.Close()
			return nil, errTooLarge
		}
		mimeType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(mimeType, "image/") {
			out.Close()
			return nil, apperrors.ValidationFields("Only images can be uploaded",
				map[string]string{field: fmt.Sprintf("unsupported type %q", mimeType)})
		}
		file, err := header.Open()
		if err != nil {
			out.Close()
			return nil, apperrors.Internal("读取上传文件失败", err)
		}
		out.files = append(out.files, file)
		out.Uploads = append(out.Uploads, mediatypes.Upload{
			Reader:   file,
			Size:     header.Size,
			FileName: header.Filename,
			MimeType: mimeType,
		})
	}
	return out, nil
}

// respondUploadError writes 413 for oversized uploads and defers to respondError otherwise.
func (h *handlerBase) respondUploadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errTooLarge) {
		writeJSONResponse(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "payload_too_large",
			Message: fmt.Sprintf("File too large, at most %d MB", h.storage.MaxFileSizeMB),
		})
		return
	}
	respondError(w, r, h.logger, err)
}

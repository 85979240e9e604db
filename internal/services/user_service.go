package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/mediatypes"
	"social-go/internal/models"
	"social-go/internal/storage"
)

// SearchLimit caps user search results.
const SearchLimit = 10

// UserService 定义了用户相关服务的接口。
type UserService interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateInfo(ctx context.Context, userID, firstName, lastName string) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID string, upload mediatypes.Upload) (*models.User, error)
	Search(ctx context.Context, query, currentUserID string) ([]models.UserBasicInfo, error)
}

// userService 是 UserService 的实现。
type userService struct {
	userRepo storage.UserRepository
	media    mediatypes.MediaStore
	logger   *zap.Logger
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo storage.UserRepository, media mediatypes.MediaStore, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, media: media, logger: logger}
}

// GetUser 获取用户公开的个人资料。
func (s *userService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if err := requireID(userID, "userId"); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("获取用户失败", err)
	}
	return user, nil
}

// UpdateInfo 更新用户的姓名。
func (s *userService) UpdateInfo(ctx context.Context, userID, firstName, lastName string) (*models.User, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	fields := map[string]string{}
	if firstName == "" {
		fields["firstName"] = "required"
	}
	if lastName == "" {
		fields["lastName"] = "required"
	}
	if len(fields) > 0 {
		return nil, apperrors.ValidationFields("Invalid user info", fields)
	}

	err := s.userRepo.UpdateInfo(ctx, userID, firstName, lastName)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("更新用户资料失败", err)
	}
	return s.GetUser(ctx, userID)
}

// UpdateAvatar 保存新头像并删除旧头像。旧头像删除失败只记录日志。
func (s *userService) UpdateAvatar(ctx context.Context, userID string, upload mediatypes.Upload) (*models.User, error) {
	if upload.Reader == nil {
		return nil, apperrors.ValidationFields("Image is required", map[string]string{"image": "required"})
	}
	if !strings.HasPrefix(upload.MimeType, "image/") {
		return nil, apperrors.ValidationFields("Avatar must be an image", map[string]string{"image": "unsupported type " + upload.MimeType})
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.media == nil {
		return nil, apperrors.Internal("媒体存储未配置", errors.New("nil media store"))
	}

	ref, err := s.media.Store(ctx, upload.Reader, upload.Size, upload.FileName, upload.MimeType)
	if err != nil {
		return nil, apperrors.Internal("保存头像失败", err)
	}
	if err := s.userRepo.UpdateAvatar(ctx, userID, ref.URL, ref.Key); err != nil {
		if derr := s.media.Delete(ctx, *ref); derr != nil {
			s.logger.Warn("删除未使用的头像失败", zap.String("key", ref.Key), zap.Error(derr))
		}
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal("更新头像失败", err)
	}

	if user.AvatarKey != "" {
		old := mediatypes.MediaRef{Key: user.AvatarKey, URL: user.AvatarURL}
		if err := s.media.Delete(ctx, old); err != nil {
			s.logger.Warn("删除旧头像失败", zap.String("user", userID), zap.String("key", old.Key), zap.Error(err))
		}
	}

	user.AvatarURL, user.AvatarKey = ref.URL, ref.Key
	return user, nil
}

// Search 按名或姓前缀搜索用户，排除当前用户。
func (s *userService) Search(ctx context.Context, query, currentUserID string) ([]models.UserBasicInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.ValidationFields("Search query is required", map[string]string{"q": "required"})
	}
	users, err := s.userRepo.SearchByNamePrefix(ctx, query, currentUserID, SearchLimit)
	if err != nil {
		return nil, apperrors.Internal("搜索用户失败", err)
	}
	return users, nil
}

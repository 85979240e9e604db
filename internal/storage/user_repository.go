package storage

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByOAuthID(ctx context.Context, oauthID string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateInfo(ctx context.Context, id, firstName, lastName string) error
	UpdateAvatar(ctx context.Context, id, avatarURL, avatarKey string) error
	SearchByNamePrefix(ctx context.Context, prefix, excludeID string, limit int) ([]models.UserBasicInfo, error)
	GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []string) ([]models.UserBasicInfo, error)
	ListExcluding(ctx context.Context, excludeIDs []string, limit int) ([]models.UserBasicInfo, error)
}

// gormUserRepository implements UserRepository using GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

var basicInfoColumns = []string{"id", "first_name", "last_name", "avatar_url"}

// Create creates a new user record. A taken username yields ErrDuplicatedKey.
func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by their ID.
func (r *gormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err // Handles gorm.ErrRecordNotFound as well
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username (email), case-insensitively.
func (r *gormUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("LOWER(username) = ?", strings.ToLower(username)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByOAuthID retrieves the user linked to a federated identity.
func (r *gormUserRepository) GetByOAuthID(ctx context.Context, oauthID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("oauth_id = ?", oauthID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UpdateInfo changes the display name parts only.
func (r *gormUserRepository) UpdateInfo(ctx context.Context, id, firstName, lastName string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"first_name": firstName, "last_name": lastName})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *gormUserRepository) UpdateAvatar(ctx context.Context, id, avatarURL, avatarKey string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"avatar_url": avatarURL, "avatar_key": avatarKey})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SearchByNamePrefix 按名或姓做大小写不敏感的前缀匹配，排除当前用户。
func (r *gormUserRepository) SearchByNamePrefix(ctx context.Context, prefix, excludeID string, limit int) ([]models.UserBasicInfo, error) {
	users := []models.UserBasicInfo{}
	pattern := escapeLike(strings.ToLower(prefix)) + "%"

	q := r.db.WithContext(ctx).Model(&models.User{}).
		Select(basicInfoColumns).
		Where("(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(first_name || ' ' || last_name) LIKE ?)", pattern, pattern, pattern)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Order("first_name ASC, last_name ASC, id ASC").Limit(limit).Find(&users).Error
	if err != nil {
		// 对于搜索功能，没有匹配结果不是错误
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return users, nil
		}
		return nil, err
	}
	return users, nil
}

// GetMultipleBasicInfoByIDs retrieves minimal public user info for a list of user IDs.
// Missing ids are simply absent from the result.
func (r *gormUserRepository) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []string) ([]models.UserBasicInfo, error) {
	basicInfos := []models.UserBasicInfo{}
	if len(userIDs) == 0 {
		return basicInfos, nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(basicInfoColumns).
		Where("id IN ?", userIDs).
		Find(&basicInfos).Error
	if err != nil {
		return nil, err
	}
	return basicInfos, nil
}

// ListExcluding returns up to limit users whose id is not in excludeIDs, newest first.
func (r *gormUserRepository) ListExcluding(ctx context.Context, excludeIDs []string, limit int) ([]models.UserBasicInfo, error) {
	users := []models.UserBasicInfo{}
	q := r.db.WithContext(ctx).Model(&models.User{}).Select(basicInfoColumns)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

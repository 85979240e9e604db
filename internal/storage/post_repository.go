package storage

import (
	"context"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	// UpdateText sets text and edited=true in one statement.
	UpdateText(ctx context.Context, id, text string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	ListAll(ctx context.Context, q PageQuery) ([]models.Post, error)
	ListByCreators(ctx context.Context, creatorIDs []string, q PageQuery) ([]models.Post, error)
}

type gormPostRepository struct {
	db *gorm.DB
}

func NewGormPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

func (r *gormPostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *gormPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *gormPostRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *gormPostRepository) UpdateText(ctx context.Context, id, text string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		Updates(map[string]interface{}{"text": text, "edited": true})
	return res.RowsAffected, res.Error
}

func (r *gormPostRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	return res.RowsAffected, res.Error
}

func (r *gormPostRepository) ListAll(ctx context.Context, q PageQuery) ([]models.Post, error) {
	posts := []models.Post{}
	err := q.apply(r.db.WithContext(ctx)).Find(&posts).Error
	return posts, err
}

func (r *gormPostRepository) ListByCreators(ctx context.Context, creatorIDs []string, q PageQuery) ([]models.Post, error) {
	posts := []models.Post{}
	if len(creatorIDs) == 0 {
		return posts, nil
	}
	err := q.apply(r.db.WithContext(ctx).Where("creator_id IN ?", creatorIDs)).Find(&posts).Error
	return posts, err
}

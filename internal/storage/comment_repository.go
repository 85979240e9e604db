package storage

import (
	"context"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateText(ctx context.Context, id, text string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	ListByPost(ctx context.Context, postID string, q PageQuery) ([]models.Comment, error)
	ListIDsByPost(ctx context.Context, postID string) ([]string, error)
	DeleteByPost(ctx context.Context, postID string) (int64, error)
	// CountByPosts returns post id -> comment count; posts without comments are absent.
	CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error)
}

type gormCommentRepository struct {
	db *gorm.DB
}

func NewGormCommentRepository(db *gorm.DB) CommentRepository {
	return &gormCommentRepository{db: db}
}

func (r *gormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *gormCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *gormCommentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *gormCommentRepository) UpdateText(ctx context.Context, id, text string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"text": text, "edited": true})
	return res.RowsAffected, res.Error
}

func (r *gormCommentRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	return res.RowsAffected, res.Error
}

func (r *gormCommentRepository) ListByPost(ctx context.Context, postID string, q PageQuery) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := q.apply(r.db.WithContext(ctx).Where("post_id = ?", postID)).Find(&comments).Error
	return comments, err
}

func (r *gormCommentRepository) ListIDsByPost(ctx context.Context, postID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Pluck("id", &ids).Error
	return ids, err
}

func (r *gormCommentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{})
	return res.RowsAffected, res.Error
}

func (r *gormCommentRepository) CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	if len(postIDs) == 0 {
		return map[string]int64{}, nil
	}
	var rows []countRow
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id AS parent_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return countsToMap(rows), nil
}

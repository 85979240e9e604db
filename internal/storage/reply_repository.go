package storage

import (
	"context"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// ReplyRepository defines the interface for reply data operations.
type ReplyRepository interface {
	Create(ctx context.Context, reply *models.Reply) error
	GetByID(ctx context.Context, id string) (*models.Reply, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateText(ctx context.Context, id, text string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	ListByComment(ctx context.Context, commentID string, q PageQuery) ([]models.Reply, error)
	ListIDsByPost(ctx context.Context, postID string) ([]string, error)
	ListIDsByComment(ctx context.Context, commentID string) ([]string, error)
	DeleteByPost(ctx context.Context, postID string) (int64, error)
	DeleteByComment(ctx context.Context, commentID string) (int64, error)
	CountByComments(ctx context.Context, commentIDs []string) (map[string]int64, error)
}

type gormReplyRepository struct {
	db *gorm.DB
}

func NewGormReplyRepository(db *gorm.DB) ReplyRepository {
	return &gormReplyRepository{db: db}
}

func (r *gormReplyRepository) Create(ctx context.Context, reply *models.Reply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *gormReplyRepository) GetByID(ctx context.Context, id string) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *gormReplyRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reply{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *gormReplyRepository) UpdateText(ctx context.Context, id, text string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Reply{}).Where("id = ?", id).
		Updates(map[string]interface{}{"text": text, "edited": true})
	return res.RowsAffected, res.Error
}

func (r *gormReplyRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Reply{})
	return res.RowsAffected, res.Error
}

func (r *gormReplyRepository) ListByComment(ctx context.Context, commentID string, q PageQuery) ([]models.Reply, error) {
	replies := []models.Reply{}
	err := q.apply(r.db.WithContext(ctx).Where("comment_id = ?", commentID)).Find(&replies).Error
	return replies, err
}

func (r *gormReplyRepository) ListIDsByPost(ctx context.Context, postID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Reply{}).Where("post_id = ?", postID).Pluck("id", &ids).Error
	return ids, err
}

func (r *gormReplyRepository) ListIDsByComment(ctx context.Context, commentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Reply{}).Where("comment_id = ?", commentID).Pluck("id", &ids).Error
	return ids, err
}

func (r *gormReplyRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Reply{})
	return res.RowsAffected, res.Error
}

func (r *gormReplyRepository) DeleteByComment(ctx context.Context, commentID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("comment_id = ?", commentID).Delete(&models.Reply{})
	return res.RowsAffected, res.Error
}

func (r *gormReplyRepository) CountByComments(ctx context.Context, commentIDs []string) (map[string]int64, error) {
	if len(commentIDs) == 0 {
		return map[string]int64{}, nil
	}
	var rows []countRow
	err := r.db.WithContext(ctx).Model(&models.Reply{}).
		Select("comment_id AS parent_id, COUNT(*) AS total").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return countsToMap(rows), nil
}

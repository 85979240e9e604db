package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"social-go/internal/models"
)

// LikeRepository is the storage side of the like ledger. Every method takes
// the subject kind, which selects one of the three ledger tables.
type LikeRepository interface {
	// Insert adds (subject, user) unless present; it reports whether a row was written.
	Insert(ctx context.Context, kind models.ContentKind, subjectID, userID string) (bool, error)
	// Remove deletes (subject, user); it reports whether a row was removed.
	Remove(ctx context.Context, kind models.ContentKind, subjectID, userID string) (bool, error)
	CountBySubjects(ctx context.Context, kind models.ContentKind, subjectIDs []string) (map[string]int64, error)
	LikedSubjectIDs(ctx context.Context, kind models.ContentKind, subjectIDs []string, userID string) ([]string, error)
	DeleteBySubjects(ctx context.Context, kind models.ContentKind, subjectIDs []string) (int64, error)
}

type gormLikeRepository struct {
	db *gorm.DB
}

func NewGormLikeRepository(db *gorm.DB) LikeRepository {
	return &gormLikeRepository{db: db}
}

func (r *gormLikeRepository) table(ctx context.Context, kind models.ContentKind) (*gorm.DB, error) {
	name, ok := kind.LikeTable()
	if !ok {
		return nil, fmt.Errorf("unknown like subject kind %q", kind)
	}
	return r.db.WithContext(ctx).Table(name), nil
}

// Insert relies on the (subject_id, user_id) primary key: a concurrent
// duplicate insert becomes a no-op instead of a second row.
func (r *gormLikeRepository) Insert(ctx context.Context, kind models.ContentKind, subjectID, userID string) (bool, error) {
	tx, err := r.table(ctx, kind)
	if err != nil {
		return false, err
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.LikeRecord{SubjectID: subjectID, UserID: userID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *gormLikeRepository) Remove(ctx context.Context, kind models.ContentKind, subjectID, userID string) (bool, error) {
	tx, err := r.table(ctx, kind)
	if err != nil {
		return false, err
	}
	res := tx.Where("subject_id = ? AND user_id = ?", subjectID, userID).Delete(&models.LikeRecord{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormLikeRepository) CountBySubjects(ctx context.Context, kind models.ContentKind, subjectIDs []string) (map[string]int64, error) {
	if len(subjectIDs) == 0 {
		return map[string]int64{}, nil
	}
	tx, err := r.table(ctx, kind)
	if err != nil {
		return nil, err
	}
	var rows []countRow
	err = tx.Select("subject_id AS parent_id, COUNT(*) AS total").
		Where("subject_id IN ?", subjectIDs).
		Group("subject_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return countsToMap(rows), nil
}

func (r *gormLikeRepository) LikedSubjectIDs(ctx context.Context, kind models.ContentKind, subjectIDs []string, userID string) ([]string, error) {
	ids := []string{}
	if len(subjectIDs) == 0 || userID == "" {
		return ids, nil
	}
	tx, err := r.table(ctx, kind)
	if err != nil {
		return nil, err
	}
	err = tx.Where("subject_id IN ? AND user_id = ?", subjectIDs, userID).Pluck("subject_id", &ids).Error
	return ids, err
}

func (r *gormLikeRepository) DeleteBySubjects(ctx context.Context, kind models.ContentKind, subjectIDs []string) (int64, error) {
	if len(subjectIDs) == 0 {
		return 0, nil
	}
	tx, err := r.table(ctx, kind)
	if err != nil {
		return 0, err
	}
	res := tx.Where("subject_id IN ?", subjectIDs).Delete(&models.LikeRecord{})
	return res.RowsAffected, res.Error
}

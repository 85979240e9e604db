package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"social-go/internal/models"
)

// FriendshipRepository defines the interface for friendship data operations.
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	AreUsersFriends(ctx context.Context, userID1, userID2 string) (bool, error)
	GetFriendIDs(ctx context.Context, userID string) ([]string, error)
	Delete(ctx context.Context, userID1, userID2 string) (int64, error)
}

type gormFriendshipRepository struct {
	db *gorm.DB
}

// NewGormFriendshipRepository creates a new GormFriendshipRepository.
func NewGormFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &gormFriendshipRepository{db: db}
}

// Create inserts the friendship in canonical order. An existing pair is left as is.
func (r *gormFriendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	friendship.EnsureCanonicalOrder()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id1"}, {Name: "user_id2"}}, DoNothing: true}).
		Create(friendship).Error
}

// AreUsersFriends checks if two users are already friends.
func (r *gormFriendshipRepository) AreUsersFriends(ctx context.Context, userID1, userID2 string) (bool, error) {
	u1, u2 := models.CanonicalPair(userID1, userID2)
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id1 = ? AND user_id2 = ?", u1, u2).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFriendIDs retrieves the ids of every user who is friends with userID.
func (r *gormFriendshipRepository) GetFriendIDs(ctx context.Context, userID string) ([]string, error) {
	// userID 可能出现在 user_id1 或 user_id2，分两次查询取"另一方"
	var idsPart1 []string
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id1 = ?", userID).
		Pluck("user_id2", &idsPart1).Error
	if err != nil {
		return nil, err
	}

	var idsPart2 []string
	err = r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id2 = ?", userID).
		Pluck("user_id1", &idsPart2).Error
	if err != nil {
		return nil, err
	}

	return append(idsPart1, idsPart2...), nil
}

// Delete removes the friendship between two users; both sides go at once.
func (r *gormFriendshipRepository) Delete(ctx context.Context, userID1, userID2 string) (int64, error) {
	u1, u2 := models.CanonicalPair(userID1, userID2)
	res := r.db.WithContext(ctx).Where("user_id1 = ? AND user_id2 = ?", u1, u2).Delete(&models.Friendship{})
	return res.RowsAffected, res.Error
}

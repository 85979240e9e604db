package storage

import (
	"context"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// FriendRequestRepository defines the interface for friend request data operations.
type FriendRequestRepository interface {
	// Create adds sender to receiver's pending list. A duplicate yields ErrDuplicatedKey.
	Create(ctx context.Context, request *models.FriendRequest) error
	Exists(ctx context.Context, receiverID, senderID string) (bool, error)
	Delete(ctx context.Context, receiverID, senderID string) (int64, error)
	// ListForReceiver returns pending requests, most recent first.
	ListForReceiver(ctx context.Context, receiverID string) ([]models.FriendRequest, error)
	// ListCounterpartIDs returns every user with a pending request to or from userID.
	ListCounterpartIDs(ctx context.Context, userID string) ([]string, error)
	// Accept removes the request and records the friendship atomically.
	// It reports false, without changing anything, when no such request exists.
	Accept(ctx context.Context, receiverID, senderID string) (bool, error)
}

type gormFriendRequestRepository struct {
	db *gorm.DB
}

func NewGormFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &gormFriendRequestRepository{db: db}
}

func (r *gormFriendRequestRepository) Create(ctx context.Context, request *models.FriendRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *gormFriendRequestRepository) Exists(ctx context.Context, receiverID, senderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("receiver_id = ? AND sender_id = ?", receiverID, senderID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormFriendRequestRepository) Delete(ctx context.Context, receiverID, senderID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("receiver_id = ? AND sender_id = ?", receiverID, senderID).
		Delete(&models.FriendRequest{})
	return res.RowsAffected, res.Error
}

func (r *gormFriendRequestRepository) ListForReceiver(ctx context.Context, receiverID string) ([]models.FriendRequest, error) {
	requests := []models.FriendRequest{}
	err := r.db.WithContext(ctx).
		Where("receiver_id = ?", receiverID).
		Order("created_at DESC, sender_id DESC").
		Find(&requests).Error
	return requests, err
}

func (r *gormFriendRequestRepository) ListCounterpartIDs(ctx context.Context, userID string) ([]string, error) {
	var senders []string
	if err := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("receiver_id = ?", userID).Pluck("sender_id", &senders).Error; err != nil {
		return nil, err
	}
	var receivers []string
	if err := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("sender_id = ?", userID).Pluck("receiver_id", &receivers).Error; err != nil {
		return nil, err
	}
	return append(senders, receivers...), nil
}

// Accept runs in one transaction: delete the pending request (and any crossed
// one), then create the canonical friendship row.
func (r *gormFriendRequestRepository) Accept(ctx context.Context, receiverID, senderID string) (bool, error) {
	accepted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRequests := NewGormFriendRequestRepository(tx)
		txFriendships := NewGormFriendshipRepository(tx)

		removed, err := txRequests.Delete(ctx, receiverID, senderID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return nil
		}
		if _, err := txRequests.Delete(ctx, senderID, receiverID); err != nil {
			return err
		}
		if err := txFriendships.Create(ctx, &models.Friendship{UserID1: receiverID, UserID2: senderID}); err != nil {
			return err
		}
		accepted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return accepted, nil
}

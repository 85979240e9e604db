package memory

import (
	"context"
	"sort"

	"social-go/internal/models"
	"social-go/internal/storage"
)

type friendRequestRepo struct{ s *Store }

var _ storage.FriendRequestRepository = (*friendRequestRepo)(nil)

func (r *friendRequestRepo) Create(ctx context.Context, request *models.FriendRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey{request.ReceiverID, request.SenderID}
	if _, ok := r.s.requests[key]; ok {
		return storage.ErrDuplicatedKey
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = r.s.now()
	}
	r.s.requests[key] = *request
	return nil
}

func (r *friendRequestRepo) Exists(ctx context.Context, receiverID, senderID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.requests[pairKey{receiverID, senderID}]
	return ok, nil
}

func (r *friendRequestRepo) Delete(ctx context.Context, receiverID, senderID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.deleteLocked(receiverID, senderID), nil
}

func (r *friendRequestRepo) deleteLocked(receiverID, senderID string) int64 {
	key := pairKey{receiverID, senderID}
	if _, ok := r.s.requests[key]; !ok {
		return 0
	}
	delete(r.s.requests, key)
	return 1
}

func (r *friendRequestRepo) ListForReceiver(ctx context.Context, receiverID string) ([]models.FriendRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.FriendRequest{}
	for key, req := range r.s.requests {
		if key[0] == receiverID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].SenderID > out[j].SenderID
	})
	return out, nil
}

func (r *friendRequestRepo) ListCounterpartIDs(ctx context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := []string{}
	for key := range r.s.requests {
		switch userID {
		case key[0]:
			ids = append(ids, key[1])
		case key[1]:
			ids = append(ids, key[0])
		}
	}
	return ids, nil
}

// Accept holds the store lock for the whole read-modify-write.
func (r *friendRequestRepo) Accept(ctx context.Context, receiverID, senderID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.deleteLocked(receiverID, senderID) == 0 {
		return false, nil
	}
	r.deleteLocked(senderID, receiverID)
	f := models.Friendship{UserID1: receiverID, UserID2: senderID}
	f.EnsureCanonicalOrder()
	key := pairKey{f.UserID1, f.UserID2}
	if _, ok := r.s.friendships[key]; !ok {
		r.s.stamp(&f.BaseModel)
		r.s.friendships[key] = f
	}
	return true, nil
}

type friendshipRepo struct{ s *Store }

var _ storage.FriendshipRepository = (*friendshipRepo)(nil)

func (r *friendshipRepo) Create(ctx context.Context, friendship *models.Friendship) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	friendship.EnsureCanonicalOrder()
	key := pairKey{friendship.UserID1, friendship.UserID2}
	if _, ok := r.s.friendships[key]; ok {
		return nil
	}
	r.s.stamp(&friendship.BaseModel)
	r.s.friendships[key] = *friendship
	return nil
}

func (r *friendshipRepo) AreUsersFriends(ctx context.Context, userID1, userID2 string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, b := models.CanonicalPair(userID1, userID2)
	_, ok := r.s.friendships[pairKey{a, b}]
	return ok, nil
}

func (r *friendshipRepo) GetFriendIDs(ctx context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := []string{}
	for key := range r.s.friendships {
		switch userID {
		case key[0]:
			ids = append(ids, key[1])
		case key[1]:
			ids = append(ids, key[0])
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *friendshipRepo) Delete(ctx context.Context, userID1, userID2 string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, b := models.CanonicalPair(userID1, userID2)
	key := pairKey{a, b}
	if _, ok := r.s.friendships[key]; !ok {
		return 0, nil
	}
	delete(r.s.friendships, key)
	return 1, nil
}

package memory

import (
	"context"
	"fmt"

	"social-go/internal/models"
	"social-go/internal/storage"
)

type likeRepo struct{ s *Store }

var _ storage.LikeRepository = (*likeRepo)(nil)

func (r *likeRepo) ledger(kind models.ContentKind) (map[pairKey]models.LikeRecord, error) {
	ledger, ok := r.s.likes[kind]
	if !ok {
		return nil, fmt.Errorf("unknown like subject kind %q", kind)
	}
	return ledger, nil
}

func (r *likeRepo) Insert(ctx context.Context, kind models.ContentKind, subjectID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ledger, err := r.ledger(kind)
	if err != nil {
		return false, err
	}
	key := pairKey{subjectID, userID}
	if _, ok := ledger[key]; ok {
		return false, nil
	}
	ledger[key] = models.LikeRecord{SubjectID: subjectID, UserID: userID, CreatedAt: r.s.now()}
	return true, nil
}

func (r *likeRepo) Remove(ctx context.Context, kind models.ContentKind, subjectID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ledger, err := r.ledger(kind)
	if err != nil {
		return false, err
	}
	key := pairKey{subjectID, userID}
	if _, ok := ledger[key]; !ok {
		return false, nil
	}
	delete(ledger, key)
	return true, nil
}

func (r *likeRepo) CountBySubjects(ctx context.Context, kind models.ContentKind, subjectIDs []string) (map[string]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ledger, err := r.ledger(kind)
	if err != nil {
		return nil, err
	}
	wanted := toSet(subjectIDs)
	out := map[string]int64{}
	for key := range ledger {
		if _, ok := wanted[key[0]]; ok {
			out[key[0]]++
		}
	}
	return out, nil
}

func (r *likeRepo) LikedSubjectIDs(ctx context.Context, kind models.ContentKind, subjectIDs []string, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ledger, err := r.ledger(kind)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for id := range toSet(subjectIDs) {
		if _, ok := ledger[pairKey{id, userID}]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *likeRepo) DeleteBySubjects(ctx context.Context, kind models.ContentKind, subjectIDs []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ledger, err := r.ledger(kind)
	if err != nil {
		return 0, err
	}
	wanted := toSet(subjectIDs)
	var n int64
	for key := range ledger {
		if _, ok := wanted[key[0]]; ok {
			delete(ledger, key)
			n++
		}
	}
	return n, nil
}

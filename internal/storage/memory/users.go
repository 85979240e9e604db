package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"social-go/internal/models"
	"social-go/internal/storage"
)

type userRepo struct{ s *Store }

var _ storage.UserRepository = (*userRepo)(nil)

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return storage.ErrDuplicatedKey
		}
		if user.OAuthID != nil && u.OAuthID != nil && *u.OAuthID == *user.OAuthID {
			return storage.ErrDuplicatedKey
		}
	}
	r.s.stamp(&user.BaseModel)
	if _, ok := r.s.users[user.ID]; ok {
		return storage.ErrDuplicatedKey
	}
	if user.Gender == "" {
		user.Gender = models.GenderOther
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, storage.ErrRecordNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, storage.ErrRecordNotFound
}

func (r *userRepo) GetByOAuthID(ctx context.Context, oauthID string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.OAuthID != nil && *u.OAuthID == oauthID {
			return &u, nil
		}
	}
	return nil, storage.ErrRecordNotFound
}

func (r *userRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.users[id]
	return ok, nil
}

func (r *userRepo) UpdateInfo(ctx context.Context, id, firstName, lastName string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return storage.ErrRecordNotFound
	}
	u.FirstName, u.LastName = firstName, lastName
	r.s.users[id] = u
	return nil
}

func (r *userRepo) UpdateAvatar(ctx context.Context, id, avatarURL, avatarKey string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return storage.ErrRecordNotFound
	}
	u.AvatarURL, u.AvatarKey = avatarURL, avatarKey
	r.s.users[id] = u
	return nil
}

func (r *userRepo) SearchByNamePrefix(ctx context.Context, prefix, excludeID string, limit int) ([]models.UserBasicInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p := strings.ToLower(prefix)
	out := []models.UserBasicInfo{}
	for _, u := range r.s.users {
		if u.ID == excludeID {
			continue
		}
		first, last := strings.ToLower(u.FirstName), strings.ToLower(u.LastName)
		if strings.HasPrefix(first, p) || strings.HasPrefix(last, p) || strings.HasPrefix(first+" "+last, p) {
			out = append(out, u.BasicInfo())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *userRepo) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []string) ([]models.UserBasicInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.UserBasicInfo{}
	for id := range toSet(userIDs) {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u.BasicInfo())
		}
	}
	return out, nil
}

func (r *userRepo) ListExcluding(ctx context.Context, excludeIDs []string, limit int) ([]models.UserBasicInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	excluded := toSet(excludeIDs)
	users := []models.User{}
	for id, u := range r.s.users {
		if _, skip := excluded[id]; !skip {
			users = append(users, u)
		}
	}
	users = window(users, storage.PageQuery{Desc: true, Limit: limit}, func(u models.User) (time.Time, string) {
		return u.CreatedAt, u.ID
	})
	out := make([]models.UserBasicInfo, 0, len(users))
	for _, u := range users {
		out = append(out, u.BasicInfo())
	}
	return out, nil
}

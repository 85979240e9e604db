// Package memory is an in-process implementation of every storage
// repository. It backs DATABASE.TYPE=memory and the service/handler tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"social-go/internal/models"
	"social-go/internal/storage"
)

type pairKey [2]string

// Store holds all tables behind a single lock.
type Store struct {
	mu          sync.RWMutex
	users       map[string]models.User
	requests    map[pairKey]models.FriendRequest // (receiver, sender)
	friendships map[pairKey]models.Friendship    // canonical (user1, user2)
	posts       map[string]models.Post
	comments    map[string]models.Comment
	replies     map[string]models.Reply
	likes       map[models.ContentKind]map[pairKey]models.LikeRecord // (subject, user)
	lastStamp   time.Time
}

func NewStore() *Store {
	s := &Store{
		users:       map[string]models.User{},
		requests:    map[pairKey]models.FriendRequest{},
		friendships: map[pairKey]models.Friendship{},
		posts:       map[string]models.Post{},
		comments:    map[string]models.Comment{},
		replies:     map[string]models.Reply{},
		likes:       map[models.ContentKind]map[pairKey]models.LikeRecord{},
	}
	for kind := range models.LikeTables {
		s.likes[kind] = map[pairKey]models.LikeRecord{}
	}
	return s
}

// Repositories exposes the store through the storage interfaces.
func (s *Store) Repositories() *storage.Repositories {
	return &storage.Repositories{
		Users:          &userRepo{s},
		FriendRequests: &friendRequestRepo{s},
		Friendships:    &friendshipRepo{s},
		Posts:          &postRepo{s},
		Comments:       &commentRepo{s},
		Replies:        &replyRepo{s},
		Likes:          &likeRepo{s},
	}
}

// now returns strictly increasing timestamps. Must be called with mu held.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = t
	return t
}

func (s *Store) stamp(b *models.BaseModel) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	b.EnsureIdentity()
}

// window sorts items by (created_at, id) and cuts out the page.
func window[T any](items []T, q storage.PageQuery, key func(T) (time.Time, string)) []T {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			if q.Desc {
				return ti.After(tj)
			}
			return ti.Before(tj)
		}
		if q.Desc {
			return idi > idj
		}
		return idi < idj
	})
	if q.Offset < 0 || q.Offset >= len(items) {
		return items[:0]
	}
	items = items[q.Offset:]
	if q.Limit > 0 && q.Limit < len(items) {
		items = items[:q.Limit]
	}
	return items
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

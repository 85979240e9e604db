package memory

import (
	"context"
	"time"

	"social-go/internal/models"
	"social-go/internal/storage"
)

type postRepo struct{ s *Store }

var _ storage.PostRepository = (*postRepo)(nil)

func postKey(p models.Post) (time.Time, string) { return p.CreatedAt, p.ID }

func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&post.BaseModel)
	if _, ok := r.s.posts[post.ID]; ok {
		return storage.ErrDuplicatedKey
	}
	r.s.posts[post.ID] = *post
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, storage.ErrRecordNotFound
	}
	return &p, nil
}

func (r *postRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.posts[id]
	return ok, nil
}

func (r *postRepo) UpdateText(ctx context.Context, id, text string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return 0, nil
	}
	p.Text, p.Edited = text, true
	r.s.posts[id] = p
	return 1, nil
}

func (r *postRepo) Delete(ctx context.Context, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return 0, nil
	}
	delete(r.s.posts, id)
	return 1, nil
}

func (r *postRepo) ListAll(ctx context.Context, q storage.PageQuery) ([]models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	posts := make([]models.Post, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		posts = append(posts, p)
	}
	return window(posts, q, postKey), nil
}

func (r *postRepo) ListByCreators(ctx context.Context, creatorIDs []string, q storage.PageQuery) ([]models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	creators := toSet(creatorIDs)
	posts := []models.Post{}
	for _, p := range r.s.posts {
		if _, ok := creators[p.CreatorID]; ok {
			posts = append(posts, p)
		}
	}
	return window(posts, q, postKey), nil
}

type commentRepo struct{ s *Store }

var _ storage.CommentRepository = (*commentRepo)(nil)

func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&comment.BaseModel)
	if _, ok := r.s.comments[comment.ID]; ok {
		return storage.ErrDuplicatedKey
	}
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, storage.ErrRecordNotFound
	}
	return &c, nil
}

func (r *commentRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.comments[id]
	return ok, nil
}

func (r *commentRepo) UpdateText(ctx context.Context, id, text string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return 0, nil
	}
	c.Text, c.Edited = text, true
	r.s.comments[id] = c
	return 1, nil
}

func (r *commentRepo) Delete(ctx context.Context, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return 0, nil
	}
	delete(r.s.comments, id)
	return 1, nil
}

func (r *commentRepo) ListByPost(ctx context.Context, postID string, q storage.PageQuery) ([]models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	comments := []models.Comment{}
	for _, c := range r.s.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	return window(comments, q, func(c models.Comment) (time.Time, string) { return c.CreatedAt, c.ID }), nil
}

func (r *commentRepo) ListIDsByPost(ctx context.Context, postID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := []string{}
	for id, c := range r.s.comments {
		if c.PostID == postID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *commentRepo) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.comments {
		if c.PostID == postID {
			delete(r.s.comments, id)
			n++
		}
	}
	return n, nil
}

func (r *commentRepo) CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := toSet(postIDs)
	out := map[string]int64{}
	for _, c := range r.s.comments {
		if _, ok := wanted[c.PostID]; ok {
			out[c.PostID]++
		}
	}
	return out, nil
}

type replyRepo struct{ s *Store }

var _ storage.ReplyRepository = (*replyRepo)(nil)

func (r *replyRepo) Create(ctx context.Context, reply *models.Reply) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&reply.BaseModel)
	if _, ok := r.s.replies[reply.ID]; ok {
		return storage.ErrDuplicatedKey
	}
	r.s.replies[reply.ID] = *reply
	return nil
}

func (r *replyRepo) GetByID(ctx context.Context, id string) (*models.Reply, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rep, ok := r.s.replies[id]
	if !ok {
		return nil, storage.ErrRecordNotFound
	}
	return &rep, nil
}

func (r *replyRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.replies[id]
	return ok, nil
}

func (r *replyRepo) UpdateText(ctx context.Context, id, text string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.replies[id]
	if !ok {
		return 0, nil
	}
	rep.Text, rep.Edited = text, true
	r.s.replies[id] = rep
	return 1, nil
}

func (r *replyRepo) Delete(ctx context.Context, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.replies[id]; !ok {
		return 0, nil
	}
	delete(r.s.replies, id)
	return 1, nil
}

func (r *replyRepo) ListByComment(ctx context.Context, commentID string, q storage.PageQuery) ([]models.Reply, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	replies := []models.Reply{}
	for _, rep := range r.s.replies {
		if rep.CommentID == commentID {
			replies = append(replies, rep)
		}
	}
	return window(replies, q, func(rep models.Reply) (time.Time, string) { return rep.CreatedAt, rep.ID }), nil
}

func (r *replyRepo) listIDs(match func(models.Reply) bool) []string {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := []string{}
	for id, rep := range r.s.replies {
		if match(rep) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *replyRepo) ListIDsByPost(ctx context.Context, postID string) ([]string, error) {
	return r.listIDs(func(rep models.Reply) bool { return rep.PostID == postID }), nil
}

func (r *replyRepo) ListIDsByComment(ctx context.Context, commentID string) ([]string, error) {
	return r.listIDs(func(rep models.Reply) bool { return rep.CommentID == commentID }), nil
}

func (r *replyRepo) deleteWhere(match func(models.Reply) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, rep := range r.s.replies {
		if match(rep) {
			delete(r.s.replies, id)
			n++
		}
	}
	return n
}

func (r *replyRepo) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	return r.deleteWhere(func(rep models.Reply) bool { return rep.PostID == postID }), nil
}

func (r *replyRepo) DeleteByComment(ctx context.Context, commentID string) (int64, error) {
	return r.deleteWhere(func(rep models.Reply) bool { return rep.CommentID == commentID }), nil
}

func (r *replyRepo) CountByComments(ctx context.Context, commentIDs []string) (map[string]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := toSet(commentIDs)
	out := map[string]int64{}
	for _, rep := range r.s.replies {
		if _, ok := wanted[rep.CommentID]; ok {
			out[rep.CommentID]++
		}
	}
	return out, nil
}

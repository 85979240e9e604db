package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"social-go/internal/apperrors"
	"social-go/internal/mediatypes"
	"social-go/internal/models"
	"social-go/internal/storage"
)

// PostView is a post as rendered to a viewer.
type PostView struct {
	ID            string                `json:"id"`
	Creator       models.UserBasicInfo  `json:"creator"`
	Text          string                `json:"text"`
	Media         []mediatypes.MediaRef `json:"media"`
	Edited        bool                  `json:"edited"`
	Timestamp     time.Time             `json:"timestamp"`
	LikeCount     int64                 `json:"likeCount"`
	CommentCount  int64                 `json:"commentCount"`
	IsLikedByUser bool                  `json:"isLikedByUser"`
}

// CommentView is a comment as rendered to a viewer.
type CommentView struct {
	ID            string               `json:"id"`
	PostID        string               `json:"postId"`
	Creator       models.UserBasicInfo `json:"creator"`
	Text          string               `json:"text"`
	Edited        bool                 `json:"edited"`
	Timestamp     time.Time            `json:"timestamp"`
	LikeCount     int64                `json:"likeCount"`
	ReplyCount    int64                `json:"replyCount"`
	IsLikedByUser bool                 `json:"isLikedByUser"`
}

// ReplyView is a reply as rendered to a viewer.
type ReplyView struct {
	ID            string               `json:"id"`
	PostID        string               `json:"postId"`
	CommentID     string               `json:"commentId"`
	Creator       models.UserBasicInfo `json:"creator"`
	Text          string               `json:"text"`
	Edited        bool                 `json:"edited"`
	Timestamp     time.Time            `json:"timestamp"`
	LikeCount     int64                `json:"likeCount"`
	IsLikedByUser bool                 `json:"isLikedByUser"`
}

// FeedService composes paginated, viewer-specific listings.
// viewerID may be empty for anonymous reads; liked flags are then false.
type FeedService interface {
	GlobalFeed(ctx context.Context, viewerID string) ([]PostView, error)
	FriendFeed(ctx context.Context, viewerID string, page Page) ([]PostView, error)
	UserTimeline(ctx context.Context, viewerID, targetUserID string, page Page, order SortOrder) ([]PostView, error)
	GetPostView(ctx context.Context, viewerID, postID string) (*PostView, error)
	GetCommentView(ctx context.Context, viewerID, commentID string) (*CommentView, error)
	GetReplyView(ctx context.Context, viewerID, replyID string) (*ReplyView, error)
	PostComments(ctx context.Context, viewerID, postID string, page Page, order SortOrder) ([]CommentView, error)
	CommentReplies(ctx context.Context, viewerID, commentID string, page Page, order SortOrder) ([]ReplyView, error)
}

type feedService struct {
	repos  *storage.Repositories
	likes  LikeLedger
	logger *zap.Logger
}

func NewFeedService(repos *storage.Repositories, likes LikeLedger, logger *zap.Logger) FeedService {
	return &feedService{repos: repos, likes: likes, logger: logger}
}

// annotations holds the batched per-page lookups.
type annotations struct {
	creators map[string]models.UserBasicInfo
	likes    map[string]int64
	children map[string]int64
	liked    map[string]bool
}

func (a *annotations) creator(id string) models.UserBasicInfo {
	if info, ok := a.creators[id]; ok {
		return info
	}
	// account gone: render the bare id
	return models.UserBasicInfo{ID: id}
}

// annotate runs the four independent batch reads for one page concurrently.
// children may be nil for kinds without a child count.
func (s *feedService) annotate(
	ctx context.Context,
	kind models.ContentKind,
	ids, creatorIDs []string,
	viewerID string,
	children func(context.Context, []string) (map[string]int64, error),
) (*annotations, error) {
	a := &annotations{children: map[string]int64{}}
	if len(ids) == 0 {
		a.creators, a.likes, a.liked = map[string]models.UserBasicInfo{}, map[string]int64{}, map[string]bool{}
		return a, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		infos, err := s.repos.Users.GetMultipleBasicInfoByIDs(gctx, dedupe(creatorIDs))
		if err != nil {
			return apperrors.Internal("查询作者信息失败", err)
		}
		a.creators = make(map[string]models.UserBasicInfo, len(infos))
		for _, info := range infos {
			a.creators[info.ID] = info
		}
		return nil
	})
	g.Go(func() error {
		counts, err := s.likes.CountFor(gctx, kind, ids)
		a.likes = counts
		return err
	})
	g.Go(func() error {
		flags, err := s.likes.LikedSubjectIDs(gctx, kind, ids, viewerID)
		a.liked = flags
		return err
	})
	if children != nil {
		g.Go(func() error {
			counts, err := children(gctx, ids)
			if err != nil {
				return apperrors.Internal("统计子内容数量失败", err)
			}
			a.children = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *feedService) renderPosts(ctx context.Context, viewerID string, posts []models.Post) ([]PostView, error) {
	ids := make([]string, len(posts))
	creators := make([]string, len(posts))
	for i, p := range posts {
		ids[i], creators[i] = p.ID, p.CreatorID
	}
	a, err := s.annotate(ctx, models.KindPost, ids, creators, viewerID, s.repos.Comments.CountByPosts)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		media, err := p.GetMedia()
		if err != nil {
			s.logger.Warn("无法解析帖子图片", zap.String("post", p.ID), zap.Error(err))
			media = []mediatypes.MediaRef{}
		}
		views = append(views, PostView{
			ID:            p.ID,
			Creator:       a.creator(p.CreatorID),
			Text:          p.Text,
			Media:         media,
			Edited:        p.Edited,
			Timestamp:     p.CreatedAt,
			LikeCount:     a.likes[p.ID],
			CommentCount:  a.children[p.ID],
			IsLikedByUser: a.liked[p.ID],
		})
	}
	return views, nil
}

func (s *feedService) renderComments(ctx context.Context, viewerID string, comments []models.Comment) ([]CommentView, error) {
	ids := make([]string, len(comments))
	creators := make([]string, len(comments))
	for i, c := range comments {
		ids[i], creators[i] = c.ID, c.CreatorID
	}
	a, err := s.annotate(ctx, models.KindComment, ids, creators, viewerID, s.repos.Replies.CountByComments)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{
			ID:            c.ID,
			PostID:        c.PostID,
			Creator:       a.creator(c.CreatorID),
			Text:          c.Text,
			Edited:        c.Edited,
			Timestamp:     c.CreatedAt,
			LikeCount:     a.likes[c.ID],
			ReplyCount:    a.children[c.ID],
			IsLikedByUser: a.liked[c.ID],
		})
	}
	return views, nil
}

func (s *feedService) renderReplies(ctx context.Context, viewerID string, replies []models.Reply) ([]ReplyView, error) {
	ids := make([]string, len(replies))
	creators := make([]string, len(replies))
	for i, r := range replies {
		ids[i], creators[i] = r.ID, r.CreatorID
	}
	a, err := s.annotate(ctx, models.KindReply, ids, creators, viewerID, nil)
	if err != nil {
		return nil, err
	}

	views := make([]ReplyView, 0, len(replies))
	for _, r := range replies {
		views = append(views, ReplyView{
			ID:            r.ID,
			PostID:        r.PostID,
			CommentID:     r.CommentID,
			Creator:       a.creator(r.CreatorID),
			Text:          r.Text,
			Edited:        r.Edited,
			Timestamp:     r.CreatedAt,
			LikeCount:     a.likes[r.ID],
			IsLikedByUser: a.liked[r.ID],
		})
	}
	return views, nil
}

func (s *feedService) GlobalFeed(ctx context.Context, viewerID string) ([]PostView, error) {
	posts, err := s.repos.Posts.ListAll(ctx, storage.PageQuery{Desc: true})
	if err != nil {
		return nil, apperrors.Internal("查询帖子失败", err)
	}
	return s.renderPosts(ctx, viewerID, posts)
}

func (s *feedService) FriendFeed(ctx context.Context, viewerID string, page Page) ([]PostView, error) {
	friendIDs, err := s.repos.Friendships.GetFriendIDs(ctx, viewerID)
	if err != nil {
		return nil, apperrors.Internal("查询好友列表失败", err)
	}
	creators := append(friendIDs, viewerID)
	posts, err := s.repos.Posts.ListByCreators(ctx, creators, page.Query(SortDesc))
	if err != nil {
		return nil, apperrors.Internal("查询帖子失败", err)
	}
	return s.renderPosts(ctx, viewerID, posts)
}

func (s *feedService) UserTimeline(ctx context.Context, viewerID, targetUserID string, page Page, order SortOrder) ([]PostView, error) {
	if err := requireID(targetUserID, "userId"); err != nil {
		return nil, err
	}
	exists, err := s.repos.Users.Exists(ctx, targetUserID)
	if err != nil {
		return nil, apperrors.Internal("查询用户失败", err)
	}
	if !exists {
		return nil, apperrors.NotFound("User not found")
	}
	posts, err := s.repos.Posts.ListByCreators(ctx, []string{targetUserID}, page.Query(order))
	if err != nil {
		return nil, apperrors.Internal("查询帖子失败", err)
	}
	return s.renderPosts(ctx, viewerID, posts)
}

func (s *feedService) GetPostView(ctx context.Context, viewerID, postID string) (*PostView, error) {
	if err := requireID(postID, "postId"); err != nil {
		return nil, err
	}
	post, err := s.repos.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, notFoundOrInternal(err, models.KindPost)
	}
	views, err := s.renderPosts(ctx, viewerID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *feedService) GetCommentView(ctx context.Context, viewerID, commentID string) (*CommentView, error) {
	if err := requireID(commentID, "commentId"); err != nil {
		return nil, err
	}
	comment, err := s.repos.Comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOrInternal(err, models.KindComment)
	}
	views, err := s.renderComments(ctx, viewerID, []models.Comment{*comment})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *feedService) GetReplyView(ctx context.Context, viewerID, replyID string) (*ReplyView, error) {
	if err := requireID(replyID, "replyId"); err != nil {
		return nil, err
	}
	reply, err := s.repos.Replies.GetByID(ctx, replyID)
	if err != nil {
		return nil, notFoundOrInternal(err, models.KindReply)
	}
	views, err := s.renderReplies(ctx, viewerID, []models.Reply{*reply})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *feedService) PostComments(ctx context.Context, viewerID, postID string, page Page, order SortOrder) ([]CommentView, error) {
	if err := requireID(postID, "postId"); err != nil {
		return nil, err
	}
	exists, err := s.repos.Posts.Exists(ctx, postID)
	if err != nil {
		return nil, apperrors.Internal("查询帖子失败", err)
	}
	if !exists {
		return nil, apperrors.NotFound("Post not found")
	}
	comments, err := s.repos.Comments.ListByPost(ctx, postID, page.Query(order))
	if err != nil {
		return nil, apperrors.Internal("查询评论失败", err)
	}
	return s.renderComments(ctx, viewerID, comments)
}

func (s *feedService) CommentReplies(ctx context.Context, viewerID, commentID string, page Page, order SortOrder) ([]ReplyView, error) {
	if err := requireID(commentID, "commentId"); err != nil {
		return nil, err
	}
	exists, err := s.repos.Comments.Exists(ctx, commentID)
	if err != nil {
		return nil, apperrors.Internal("查询评论失败", err)
	}
	if !exists {
		return nil, apperrors.NotFound("Comment not found")
	}
	replies, err := s.repos.Replies.ListByComment(ctx, commentID, page.Query(order))
	if err != nil {
		return nil, apperrors.Internal("查询回复失败", err)
	}
	return s.renderReplies(ctx, viewerID, replies)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

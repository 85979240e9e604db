package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/mediatypes"
	"social-go/internal/models"
	"social-go/internal/storage"
)

// CascadeReport describes what a delete removed and which steps were left
// for out-of-band cleanup. Failed carries storage errors and media keys and
// is never serialized.
type CascadeReport struct {
	Kind    models.ContentKind `json:"kind"`
	ID      string             `json:"id"`
	Removed map[string]int64   `json:"removed"`
	Failed  []CleanupTask      `json:"-"`
}

// Complete reports whether every cascade step succeeded.
func (r *CascadeReport) Complete() bool {
	return len(r.Failed) == 0
}

// ContentService manages the post -> comment -> reply tree.
type ContentService interface {
	CreatePost(ctx context.Context, creatorID, text string, uploads []mediatypes.Upload) (*models.Post, error)
	CreateComment(ctx context.Context, creatorID, postID, text string) (*models.Comment, error)
	CreateReply(ctx context.Context, creatorID, commentID, text string) (*models.Reply, error)
	EditText(ctx context.Context, kind models.ContentKind, id, actorID, text string) error
	DeletePost(ctx context.Context, postID, actorID string) (*CascadeReport, error)
	DeleteComment(ctx context.Context, commentID, actorID string) (*CascadeReport, error)
	DeleteReply(ctx context.Context, replyID, actorID string) (*CascadeReport, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	GetReply(ctx context.Context, id string) (*models.Reply, error)
}

type contentService struct {
	repos    *storage.Repositories
	media    mediatypes.MediaStore
	executor *CleanupExecutor
	orphans  OrphanRecorder
	maxMedia int
	logger   *zap.Logger
}

// NewContentService creates a ContentService. maxMedia caps the number of
// images per post; 0 means no cap.
func NewContentService(
	repos *storage.Repositories,
	media mediatypes.MediaStore,
	orphans OrphanRecorder,
	maxMedia int,
	logger *zap.Logger,
) ContentService {
	return &contentService{
		repos:    repos,
		media:    media,
		executor: NewCleanupExecutor(repos, media, logger),
		orphans:  orphans,
		maxMedia: maxMedia,
		logger:   logger,
	}
}

// normalizeText trims text and rejects an empty result.
func normalizeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", apperrors.ValidationFields("Text must not be empty", map[string]string{"text": "required"})
	}
	return trimmed, nil
}

func requireID(id, field string) error {
	if !models.IsValidID(id) {
		return apperrors.ValidationFields("Invalid id", map[string]string{field: "must be a 24-character hex id"})
	}
	return nil
}

func (s *contentService) CreatePost(ctx context.Context, creatorID, text string, uploads []mediatypes.Upload) (*models.Post, error) {
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}
	if s.maxMedia > 0 && len(uploads) > s.maxMedia {
		return nil, apperrors.ValidationFields("Too many images", map[string]string{"images": fmt.Sprintf("at most %d", s.maxMedia)})
	}
	if len(uploads) > 0 && s.media == nil {
		return nil, apperrors.Internal("媒体存储未配置", errors.New("nil media store"))
	}

	refs := make([]mediatypes.MediaRef, 0, len(uploads))
	for _, up := range uploads {
		ref, err := s.media.Store(ctx, up.Reader, up.Size, up.FileName, up.MimeType)
		if err != nil {
			s.discardMedia(ctx, refs)
			return nil, apperrors.Internal("保存图片失败", err)
		}
		refs = append(refs, *ref)
	}

	post := &models.Post{CreatorID: creatorID, Text: text}
	if err := post.SetMedia(refs); err != nil {
		s.discardMedia(ctx, refs)
		return nil, apperrors.Internal("编码图片信息失败", err)
	}
	if err := s.repos.Posts.Create(ctx, post); err != nil {
		s.discardMedia(ctx, refs)
		return nil, apperrors.Internal("创建帖子失败", err)
	}
	return post, nil
}

// discardMedia removes objects stored for a post that was never created.
func (s *contentService) discardMedia(ctx context.Context, refs []mediatypes.MediaRef) {
	for _, ref := range refs {
		if err := s.media.Delete(ctx, ref); err != nil {
			s.logger.Warn("删除未使用的图片失败", zap.String("key", ref.Key), zap.Error(err))
		}
	}
}

func (s *contentService) CreateComment(ctx context.Context, creatorID, postID, text string) (*models.Comment, error) {
	if err := requireID(postID, "postId"); err != nil {
		return nil, err
	}
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}
	exists, err := s.repos.Posts.Exists(ctx, postID)
	if err != nil {
		return nil, apperrors.Internal("查询帖子失败", err)
	}
	if !exists {
		return nil, apperrors.NotFound("Post not found")
	}

	comment := &models.Comment{CreatorID: creatorID, PostID: postID, Text: text}
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		return nil, apperrors.Internal("创建评论失败", err)
	}
	return comment, nil
}

func (s *contentService) CreateReply(ctx context.Context, creatorID, commentID, text string) (*models.Reply, error) {
	if err := requireID(commentID, "commentId"); err != nil {
		return nil, err
	}
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}
	comment, err := s.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	reply := &models.Reply{CreatorID: creatorID, CommentID: commentID, PostID: comment.PostID, Text: text}
	if err := s.repos.Replies.Create(ctx, reply); err != nil {
		return nil, apperrors.Internal("创建回复失败", err)
	}
	return reply, nil
}

// EditText checks input, then existence, then ownership, and writes text
// with edited=true in a single update.
func (s *contentService) EditText(ctx context.Context, kind models.ContentKind, id, actorID, text string) error {
	if !kind.Valid() {
		return apperrors.Validation("Invalid content kind")
	}
	if err := requireID(id, "id"); err != nil {
		return err
	}
	text, err := normalizeText(text)
	if err != nil {
		return err
	}

	entity, err := s.lookup(ctx, kind, id)
	if err != nil {
		return err
	}
	if !CanMutate(entity, actorID) {
		return apperrors.Forbidden("You are not allowed to edit this " + string(kind))
	}

	var affected int64
	switch kind {
	case models.KindPost:
		affected, err = s.repos.Posts.UpdateText(ctx, id, text)
	case models.KindComment:
		affected, err = s.repos.Comments.UpdateText(ctx, id, text)
	case models.KindReply:
		affected, err = s.repos.Replies.UpdateText(ctx, id, text)
	}
	if err != nil {
		return apperrors.Internal("更新内容失败", err)
	}
	if affected == 0 {
		// deleted between lookup and update
		return apperrors.NotFound(notFoundMessage(kind))
	}
	return nil
}

func (s *contentService) lookup(ctx context.Context, kind models.ContentKind, id string) (models.Owned, error) {
	switch kind {
	case models.KindPost:
		return s.GetPost(ctx, id)
	case models.KindComment:
		return s.GetComment(ctx, id)
	case models.KindReply:
		return s.GetReply(ctx, id)
	}
	return nil, apperrors.Validation("Invalid content kind")
}

func (s *contentService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if err := requireID(id, "postId"); err != nil {
		return nil, err
	}
	post, err := s.repos.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, models.KindPost)
	}
	return post, nil
}

func (s *contentService) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	if err := requireID(id, "commentId"); err != nil {
		return nil, err
	}
	comment, err := s.repos.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, models.KindComment)
	}
	return comment, nil
}

func (s *contentService) GetReply(ctx context.Context, id string) (*models.Reply, error) {
	if err := requireID(id, "replyId"); err != nil {
		return nil, err
	}
	reply, err := s.repos.Replies.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, models.KindReply)
	}
	return reply, nil
}

func notFoundOrInternal(err error, kind models.ContentKind) error {
	if errors.Is(err, storage.ErrRecordNotFound) {
		return apperrors.NotFound(notFoundMessage(kind))
	}
	return apperrors.Internal("查询"+string(kind)+"失败", err)
}

func (s *contentService) DeletePost(ctx context.Context, postID, actorID string) (*CascadeReport, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !CanMutate(post, actorID) {
		return nil, apperrors.Forbidden("You are not allowed to delete this post")
	}
	media, err := post.GetMedia()
	if err != nil {
		// undecodable media only leaks objects; the delete proceeds
		s.logger.Warn("无法解析帖子图片", zap.String("post", postID), zap.Error(err))
	}

	origin := "deletePost:" + postID
	before := []CleanupTask{
		{Action: ActionDeleteLikes, Kind: models.KindReply, Scope: ScopePost, ScopeID: postID},
		{Action: ActionDeleteReplies, Scope: ScopePost, ScopeID: postID},
		{Action: ActionDeleteLikes, Kind: models.KindComment, Scope: ScopePost, ScopeID: postID},
		{Action: ActionDeleteComments, Scope: ScopePost, ScopeID: postID},
		{Action: ActionDeleteLikes, Kind: models.KindPost, Scope: ScopeSelf, ScopeID: postID},
	}
	var after []CleanupTask
	if len(media) > 0 {
		after = append(after, CleanupTask{Action: ActionDeleteMedia, Kind: models.KindPost, ScopeID: postID, Media: media})
	}
	return s.cascade(ctx, models.KindPost, postID, origin, before, func() (int64, error) {
		return s.repos.Posts.Delete(ctx, postID)
	}, after)
}

func (s *contentService) DeleteComment(ctx context.Context, commentID, actorID string) (*CascadeReport, error) {
	comment, err := s.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !CanMutate(comment, actorID) {
		return nil, apperrors.Forbidden("You are not allowed to delete this comment")
	}

	before := []CleanupTask{
		{Action: ActionDeleteLikes, Kind: models.KindReply, Scope: ScopeComment, ScopeID: commentID},
		{Action: ActionDeleteReplies, Scope: ScopeComment, ScopeID: commentID},
		{Action: ActionDeleteLikes, Kind: models.KindComment, Scope: ScopeSelf, ScopeID: commentID},
	}
	return s.cascade(ctx, models.KindComment, commentID, "deleteComment:"+commentID, before, func() (int64, error) {
		return s.repos.Comments.Delete(ctx, commentID)
	}, nil)
}

func (s *contentService) DeleteReply(ctx context.Context, replyID, actorID string) (*CascadeReport, error) {
	reply, err := s.GetReply(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if !CanMutate(reply, actorID) {
		return nil, apperrors.Forbidden("You are not allowed to delete this reply")
	}

	before := []CleanupTask{
		{Action: ActionDeleteLikes, Kind: models.KindReply, Scope: ScopeSelf, ScopeID: replyID},
	}
	return s.cascade(ctx, models.KindReply, replyID, "deleteReply:"+replyID, before, func() (int64, error) {
		return s.repos.Replies.Delete(ctx, replyID)
	}, nil)
}

// cascade runs the dependent steps, the primary delete, then the trailing
// steps. Dependent step failures are recorded and never abort the delete;
// only the primary delete can fail the operation. Nothing is restored.
func (s *contentService) cascade(
	ctx context.Context,
	kind models.ContentKind,
	id, origin string,
	before []CleanupTask,
	primary func() (int64, error),
	after []CleanupTask,
) (*CascadeReport, error) {
	report := &CascadeReport{Kind: kind, ID: id, Removed: map[string]int64{}}

	for _, task := range before {
		s.runStep(ctx, report, origin, task)
	}

	affected, err := primary()
	if err != nil {
		s.logger.Error("级联删除主记录失败", zap.String("origin", origin), zap.Int("failedSteps", len(report.Failed)), zap.Error(err))
		return nil, apperrors.Internal("删除失败", err)
	}
	if affected == 0 {
		// removed concurrently; the dependent rows are gone as well
		return nil, apperrors.NotFound(notFoundMessage(kind))
	}
	report.Removed[string(kind)] = affected

	for _, task := range after {
		s.runStep(ctx, report, origin, task)
	}
	return report, nil
}

func (s *contentService) runStep(ctx context.Context, report *CascadeReport, origin string, task CleanupTask) {
	task.Origin = origin
	n, err := s.executor.Apply(ctx, &task)
	if err == nil {
		report.Removed[stepLabel(task)] += n
		return
	}

	task.Error = err.Error()
	task.FailedAt = time.Now().UTC()
	report.Failed = append(report.Failed, task)
	s.logger.Warn("级联删除步骤失败",
		zap.String("origin", origin),
		zap.String("action", string(task.Action)),
		zap.String("kind", string(task.Kind)),
		zap.Error(err))

	// The request context may already be canceled; recording must still happen.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if rerr := s.orphans.Record(recordCtx, task); rerr != nil {
		s.logger.Error("记录清理任务失败", zap.String("origin", origin), zap.Error(rerr))
	}
}

func stepLabel(task CleanupTask) string {
	switch task.Action {
	case ActionDeleteLikes:
		return string(task.Kind) + "_likes"
	case ActionDeleteReplies:
		return "replies"
	case ActionDeleteComments:
		return "comments"
	case ActionDeleteMedia:
		return "media"
	}
	return string(task.Action)
}

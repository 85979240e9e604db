package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/models"
	"social-go/internal/storage"
)

// maxToggleAttempts bounds the insert/remove race against concurrent toggles
// by the same user. A lost attempt means another toggle settled, so fewer
// than this many in-flight toggles on one pair always settle.
const maxToggleAttempts = 16

// LikeOutcome is the state of a (subject, user) pair after a toggle.
type LikeOutcome struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// LikeLedger records which users like which posts, comments and replies.
// Counts are always recounted from the ledger, never cached.
type LikeLedger interface {
	Toggle(ctx context.Context, kind models.ContentKind, subjectID, userID string) (*LikeOutcome, error)
	CountFor(ctx context.Context, kind models.ContentKind, subjectIDs []string) (map[string]int64, error)
	LikedSubjectIDs(ctx context.Context, kind models.ContentKind, subjectIDs []string, userID string) (map[string]bool, error)
	DeleteForSubjects(ctx context.Context, kind models.ContentKind, subjectIDs []string) (int64, error)
}

type likeLedger struct {
	repos  *storage.Repositories
	logger *zap.Logger
}

// NewLikeLedger creates a LikeLedger over repos.
func NewLikeLedger(repos *storage.Repositories, logger *zap.Logger) LikeLedger {
	return &likeLedger{repos: repos, logger: logger}
}

// subjectExists checks the content table that matches kind.
func subjectExists(ctx context.Context, repos *storage.Repositories, kind models.ContentKind, id string) (bool, error) {
	switch kind {
	case models.KindPost:
		return repos.Posts.Exists(ctx, id)
	case models.KindComment:
		return repos.Comments.Exists(ctx, id)
	case models.KindReply:
		return repos.Replies.Exists(ctx, id)
	}
	return false, fmt.Errorf("unknown content kind %q", kind)
}

func (l *likeLedger) Toggle(ctx context.Context, kind models.ContentKind, subjectID, userID string) (*LikeOutcome, error) {
	if !kind.Valid() {
		return nil, apperrors.Validation("Invalid content kind")
	}
	if !models.IsValidID(subjectID) {
		return nil, apperrors.Validation("Invalid id")
	}
	if !models.IsValidID(userID) {
		return nil, apperrors.Unauthorized("Invalid user")
	}

	exists, err := subjectExists(ctx, l.repos, kind, subjectID)
	if err != nil {
		return nil, apperrors.Internal("检查点赞对象失败", err)
	}
	if !exists {
		return nil, apperrors.NotFound(notFoundMessage(kind))
	}

	liked, settled := false, false
	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		inserted, err := l.repos.Likes.Insert(ctx, kind, subjectID, userID)
		if err != nil {
			return nil, apperrors.Internal("写入点赞记录失败", err)
		}
		if inserted {
			liked, settled = true, true
			break
		}
		removed, err := l.repos.Likes.Remove(ctx, kind, subjectID, userID)
		if err != nil {
			return nil, apperrors.Internal("删除点赞记录失败", err)
		}
		if removed {
			liked, settled = false, true
			break
		}
		// A concurrent toggle removed the row between our insert and remove.
		l.logger.Debug("like toggle raced, retrying",
			zap.String("kind", string(kind)), zap.String("subject", subjectID), zap.Int("attempt", attempt+1))
	}
	if !settled {
		return nil, apperrors.Internal("点赞状态未能确定", fmt.Errorf("toggle on %s %s did not settle after %d attempts", kind, subjectID, maxToggleAttempts))
	}

	counts, err := l.CountFor(ctx, kind, []string{subjectID})
	if err != nil {
		return nil, err
	}
	return &LikeOutcome{Liked: liked, LikeCount: counts[subjectID]}, nil
}

func (l *likeLedger) CountFor(ctx context.Context, kind models.ContentKind, subjectIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(subjectIDs))
	if len(subjectIDs) == 0 {
		return out, nil
	}
	counts, err := l.repos.Likes.CountBySubjects(ctx, kind, subjectIDs)
	if err != nil {
		return nil, apperrors.Internal("统计点赞数失败", err)
	}
	for _, id := range subjectIDs {
		out[id] = counts[id]
	}
	return out, nil
}

func (l *likeLedger) LikedSubjectIDs(ctx context.Context, kind models.ContentKind, subjectIDs []string, userID string) (map[string]bool, error) {
	out := make(map[string]bool, len(subjectIDs))
	if len(subjectIDs) == 0 || userID == "" {
		return out, nil
	}
	ids, err := l.repos.Likes.LikedSubjectIDs(ctx, kind, subjectIDs, userID)
	if err != nil {
		return nil, apperrors.Internal("查询点赞状态失败", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (l *likeLedger) DeleteForSubjects(ctx context.Context, kind models.ContentKind, subjectIDs []string) (int64, error) {
	if len(subjectIDs) == 0 {
		return 0, nil
	}
	return l.repos.Likes.DeleteBySubjects(ctx, kind, subjectIDs)
}

func notFoundMessage(kind models.ContentKind) string {
	switch kind {
	case models.KindPost:
		return "Post not found"
	case models.KindComment:
		return "Comment not found"
	case models.KindReply:
		return "Reply not found"
	}
	return "Not found"
}

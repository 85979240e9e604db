package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"social-go/internal/kafka"
	"social-go/internal/mediatypes"
	"social-go/internal/models"
	"social-go/internal/storage"
)

// CleanupAction names one idempotent delete step of a cascade.
type CleanupAction string

const (
	ActionDeleteLikes    CleanupAction = "delete_likes"
	ActionDeleteReplies  CleanupAction = "delete_replies"
	ActionDeleteComments CleanupAction = "delete_comments"
	ActionDeleteMedia    CleanupAction = "delete_media"
)

// CleanupScope selects which rows a task covers relative to ScopeID.
type CleanupScope string

const (
	ScopePost    CleanupScope = "post"    // everything under a post
	ScopeComment CleanupScope = "comment" // everything under a comment
	ScopeSelf    CleanupScope = "self"    // ScopeID itself
)

// CleanupTask is a single step of a cascading delete. Tasks that fail during
// the request are published for out-of-band retry; re-applying a task that
// already succeeded is a no-op.
type CleanupTask struct {
	Action     CleanupAction         `json:"action"`
	Kind       models.ContentKind    `json:"kind,omitempty"`
	Scope      CleanupScope          `json:"scope,omitempty"`
	ScopeID    string                `json:"scopeId,omitempty"`
	SubjectIDs []string              `json:"subjectIds,omitempty"`
	Media      []mediatypes.MediaRef `json:"media,omitempty"`
	Origin     string                `json:"origin,omitempty"`
	Error      string                `json:"error,omitempty"`
	FailedAt   time.Time             `json:"failedAt"`
}

// Key groups retries of the same cascade onto one partition.
func (t CleanupTask) Key() string {
	if t.Origin != "" {
		return t.Origin
	}
	return string(t.Action) + ":" + t.ScopeID
}

// OrphanRecorder receives cascade steps that could not be completed inline.
type OrphanRecorder interface {
	Record(ctx context.Context, task CleanupTask) error
}

type logOrphanRecorder struct {
	logger *zap.Logger
}

// NewLogOrphanRecorder records orphans only in the log. Used when Kafka is
// disabled; the admin reconcile command then repairs the database.
func NewLogOrphanRecorder(logger *zap.Logger) OrphanRecorder {
	return &logOrphanRecorder{logger: logger}
}

func (r *logOrphanRecorder) Record(ctx context.Context, task CleanupTask) error {
	r.logger.Warn("orphaned rows left behind by cascade",
		zap.String("action", string(task.Action)),
		zap.String("kind", string(task.Kind)),
		zap.String("scope", string(task.Scope)),
		zap.String("scopeId", task.ScopeID),
		zap.Int("subjects", len(task.SubjectIDs)),
		zap.Int("media", len(task.Media)),
		zap.String("origin", task.Origin),
		zap.String("error", task.Error))
	return nil
}

type kafkaOrphanRecorder struct {
	producer kafka.MessageProducer
	topic    string
	logger   *zap.Logger
}

// NewKafkaOrphanRecorder publishes failed tasks as JSON to topic.
func NewKafkaOrphanRecorder(producer kafka.MessageProducer, topic string, logger *zap.Logger) OrphanRecorder {
	return &kafkaOrphanRecorder{producer: producer, topic: topic, logger: logger}
}

func (r *kafkaOrphanRecorder) Record(ctx context.Context, task CleanupTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("序列化清理任务失败: %w", err)
	}
	if err := r.producer.SendMessage(ctx, r.topic, []byte(task.Key()), payload); err != nil {
		r.logger.Error("发布清理任务失败", zap.String("origin", task.Origin), zap.ByteString("task", payload), zap.Error(err))
		return err
	}
	r.logger.Info("清理任务已发布", zap.String("origin", task.Origin), zap.String("action", string(task.Action)))
	return nil
}

// CleanupExecutor runs cleanup tasks against the repositories and media store.
type CleanupExecutor struct {
	repos  *storage.Repositories
	media  mediatypes.MediaStore
	logger *zap.Logger
}

func NewCleanupExecutor(repos *storage.Repositories, media mediatypes.MediaStore, logger *zap.Logger) *CleanupExecutor {
	return &CleanupExecutor{repos: repos, media: media, logger: logger}
}

// Apply runs task and returns the number of rows or objects removed. For
// like deletes whose SubjectIDs are empty the ids are resolved from the
// scope first and written back into task, so a retry targets the same rows
// even after their parents are gone.
func (e *CleanupExecutor) Apply(ctx context.Context, task *CleanupTask) (int64, error) {
	switch task.Action {
	case ActionDeleteLikes:
		if len(task.SubjectIDs) == 0 {
			ids, err := e.resolveSubjects(ctx, task)
			if err != nil {
				return 0, err
			}
			task.SubjectIDs = ids
		}
		if len(task.SubjectIDs) == 0 {
			return 0, nil
		}
		return e.repos.Likes.DeleteBySubjects(ctx, task.Kind, task.SubjectIDs)

	case ActionDeleteReplies:
		switch task.Scope {
		case ScopePost:
			return e.repos.Replies.DeleteByPost(ctx, task.ScopeID)
		case ScopeComment:
			return e.repos.Replies.DeleteByComment(ctx, task.ScopeID)
		}

	case ActionDeleteComments:
		if task.Scope == ScopePost {
			return e.repos.Comments.DeleteByPost(ctx, task.ScopeID)
		}

	case ActionDeleteMedia:
		if e.media == nil {
			return 0, errors.New("no media store configured")
		}
		var (
			removed int64
			errs    []error
		)
		for _, ref := range task.Media {
			if err := e.media.Delete(ctx, ref); err != nil {
				errs = append(errs, fmt.Errorf("delete %s: %w", ref.Key, err))
				continue
			}
			removed++
		}
		return removed, errors.Join(errs...)

	default:
		return 0, fmt.Errorf("unknown cleanup action %q", task.Action)
	}
	return 0, fmt.Errorf("cleanup action %q does not support scope %q", task.Action, task.Scope)
}

func (e *CleanupExecutor) resolveSubjects(ctx context.Context, task *CleanupTask) ([]string, error) {
	switch {
	case task.Scope == ScopeSelf:
		return []string{task.ScopeID}, nil
	case task.Kind == models.KindReply && task.Scope == ScopePost:
		return e.repos.Replies.ListIDsByPost(ctx, task.ScopeID)
	case task.Kind == models.KindReply && task.Scope == ScopeComment:
		return e.repos.Replies.ListIDsByComment(ctx, task.ScopeID)
	case task.Kind == models.KindComment && task.Scope == ScopePost:
		return e.repos.Comments.ListIDsByPost(ctx, task.ScopeID)
	}
	return nil, fmt.Errorf("cannot resolve %s likes for scope %q", task.Kind, task.Scope)
}

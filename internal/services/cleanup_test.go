package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-go/internal/models"
)

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) SendMessage(ctx context.Context, topic string, key []byte, payload []byte) error {
	return m.Called(ctx, topic, key, payload).Error(0)
}

func (m *mockProducer) Close() {}

func TestKafkaOrphanRecorderPublishesTask(t *testing.T) {
	producer := &mockProducer{}
	task := CleanupTask{
		Action:  ActionDeleteReplies,
		Scope:   ScopePost,
		ScopeID: models.NewID(),
		Origin:  "deletePost:abc",
	}
	producer.On("SendMessage", mock.Anything, "cleanup", []byte("deletePost:abc"), mock.MatchedBy(func(payload []byte) bool {
		var got CleanupTask
		return json.Unmarshal(payload, &got) == nil && got.ScopeID == task.ScopeID && got.Action == task.Action
	})).Return(nil).Once()

	recorder := NewKafkaOrphanRecorder(producer, "cleanup", zap.NewNop())
	require.NoError(t, recorder.Record(context.Background(), task))
	producer.AssertExpectations(t)

	producer.On("SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	assert.Error(t, recorder.Record(context.Background(), task))
}

func TestCleanupExecutorRejectsUnknownTasks(t *testing.T) {
	env := newTestEnv(t)
	exec := NewCleanupExecutor(env.repos, env.media, zap.NewNop())

	_, err := exec.Apply(context.Background(), &CleanupTask{Action: "delete_everything"})
	assert.Error(t, err)
	_, err = exec.Apply(context.Background(), &CleanupTask{Action: ActionDeleteComments, Scope: ScopeComment, ScopeID: models.NewID()})
	assert.Error(t, err)
}

func TestCleanupExecutorResolvesScope(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "Ann", "Lee")
	post := env.post(t, ann, "p")
	comment := env.comment(t, ann, post.ID, "c")
	reply := env.reply(t, ann, comment.ID, "r")
	_, err := env.likes.Toggle(ctx, models.KindReply, reply.ID, ann.ID)
	require.NoError(t, err)

	exec := NewCleanupExecutor(env.repos, env.media, zap.NewNop())
	task := &CleanupTask{Action: ActionDeleteLikes, Kind: models.KindReply, Scope: ScopeComment, ScopeID: comment.ID}
	n, err := exec.Apply(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, []string{reply.ID}, task.SubjectIDs)

	// second run is a no-op
	n, err = exec.Apply(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestLogOrphanRecorder(t *testing.T) {
	assert.NoError(t, NewLogOrphanRecorder(zap.NewNop()).Record(context.Background(), CleanupTask{Action: ActionDeleteMedia}))
}

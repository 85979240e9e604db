package kafkahandlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-go/internal/models"
	"social-go/internal/services"
)

type mockApplier struct {
	mock.Mock
}

func (m *mockApplier) Apply(ctx context.Context, task *services.CleanupTask) (int64, error) {
	args := m.Called(ctx, task)
	return args.Get(0).(int64), args.Error(1)
}

func message(t *testing.T, task services.CleanupTask) *kafka.Message {
	t.Helper()
	payload, err := json.Marshal(task)
	require.NoError(t, err)
	topic := "social-content-cleanup"
	return &kafka.Message{TopicPartition: kafka.TopicPartition{Topic: &topic}, Value: payload}
}

func TestHandleCleanupTaskApplies(t *testing.T) {
	applier := &mockApplier{}
	task := services.CleanupTask{
		Action:     services.ActionDeleteLikes,
		Kind:       models.KindReply,
		Scope:      services.ScopePost,
		ScopeID:    "65a1f0c2e4b0a1b2c3d4e5f6",
		SubjectIDs: []string{"65a1f0c2e4b0a1b2c3d4e5f7"},
		Origin:     "deletePost:65a1f0c2e4b0a1b2c3d4e5f6",
	}
	applier.On("Apply", mock.Anything, mock.MatchedBy(func(got *services.CleanupTask) bool {
		return got.Action == task.Action && got.Kind == task.Kind && len(got.SubjectIDs) == 1
	})).Return(int64(1), nil).Once()

	logic := NewCleanupConsumerLogic(applier, zap.NewNop())
	require.NoError(t, logic.HandleCleanupTask(context.Background(), message(t, task)))
	applier.AssertExpectations(t)
}

func TestHandleCleanupTaskReturnsApplyError(t *testing.T) {
	applier := &mockApplier{}
	applier.On("Apply", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down")).Once()

	logic := NewCleanupConsumerLogic(applier, zap.NewNop())
	err := logic.HandleCleanupTask(context.Background(), message(t, services.CleanupTask{
		Action:  services.ActionDeleteReplies,
		Scope:   services.ScopeComment,
		ScopeID: "65a1f0c2e4b0a1b2c3d4e5f6",
	}))
	assert.ErrorContains(t, err, "db down")
}

func TestHandleCleanupTaskSkipsMalformed(t *testing.T) {
	applier := &mockApplier{}
	logic := NewCleanupConsumerLogic(applier, zap.NewNop())

	assert.NoError(t, logic.HandleCleanupTask(context.Background(), &kafka.Message{Value: []byte("{not json")}))
	assert.NoError(t, logic.HandleCleanupTask(context.Background(), &kafka.Message{Value: []byte(`{"scopeId":"x"}`)}))
	applier.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

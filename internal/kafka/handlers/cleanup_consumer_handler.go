package kafkahandlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"social-go/internal/services"
)

// TaskApplier re-runs one cleanup task. *services.CleanupExecutor satisfies it.
type TaskApplier interface {
	Apply(ctx context.Context, task *services.CleanupTask) (int64, error)
}

// CleanupConsumerLogic applies cleanup tasks published by failed cascades.
type CleanupConsumerLogic struct {
	applier TaskApplier
	logger  *zap.Logger
}

// NewCleanupConsumerLogic creates a new instance of CleanupConsumerLogic.
func NewCleanupConsumerLogic(applier TaskApplier, logger *zap.Logger) *CleanupConsumerLogic {
	if applier == nil {
		panic("kafkahandlers: TaskApplier cannot be nil")
	}
	return &CleanupConsumerLogic{applier: applier, logger: logger}
}

// HandleCleanupTask is the kafka.MessageHandler for the cleanup topic.
// Malformed messages are skipped (committed); apply failures are returned so
// the offset stays uncommitted and the task is redelivered.
func (h *CleanupConsumerLogic) HandleCleanupTask(ctx context.Context, msg *kafka.Message) error {
	var task services.CleanupTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		h.logger.Error("无法解析清理任务，跳过", zap.ByteString("value", msg.Value), zap.Error(err))
		return nil
	}
	if task.Action == "" {
		h.logger.Error("清理任务缺少 action，跳过", zap.ByteString("value", msg.Value))
		return nil
	}

	removed, err := h.applier.Apply(ctx, &task)
	if err != nil {
		return fmt.Errorf("apply %s for %s: %w", task.Action, task.Key(), err)
	}
	h.logger.Info("清理任务已完成",
		zap.String("origin", task.Origin),
		zap.String("action", string(task.Action)),
		zap.Int64("removed", removed))
	return nil
}

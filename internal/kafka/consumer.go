package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"social-go/internal/config"
)

// MessageHandler is a function type for processing consumed Kafka messages.
// Returning an error leaves the offset uncommitted.
type MessageHandler func(ctx context.Context, msg *kafka.Message) error

// MessageConsumer defines the interface for a Kafka message consumer.
type MessageConsumer interface {
	Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error
	Close()
}

// confluentKafkaConsumer is an implementation of MessageConsumer using confluent-kafka-go.
type confluentKafkaConsumer struct {
	consumer *kafka.Consumer
	cfg      config.KafkaConfig
	groupID  string
	logger   *zap.Logger
}

// NewConfluentKafkaConsumer creates a new Kafka consumer. The underlying
// client is created by Consume, once the group id is known.
func NewConfluentKafkaConsumer(cfg config.KafkaConfig, logger *zap.Logger) (MessageConsumer, error) {
	return &confluentKafkaConsumer{cfg: cfg, logger: logger}, nil
}

// Consume starts consuming messages from the specified topics and group.
// This method will block until the context is canceled or a fatal error occurs.
func (c *confluentKafkaConsumer) Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error {
	if len(topics) == 0 {
		return fmt.Errorf("kafka consumer: no topics specified")
	}
	c.groupID = groupID
	log := c.logger.With(zap.String("group", groupID))

	configMap := &kafka.ConfigMap{
		"bootstrap.servers":  strings.Join(c.cfg.Brokers, ","),
		"group.id":           c.groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": "false", // 处理成功后手动提交
		"security.protocol":  c.cfg.Protocol,
	}
	if c.cfg.ClientID != "" {
		_ = configMap.SetKey("client.id", c.cfg.ClientID)
	}

	consumer, err := kafka.NewConsumer(configMap)
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer for group %s: %w", groupID, err)
	}
	c.consumer = consumer

	if err := c.consumer.SubscribeTopics(topics, nil); err != nil {
		_ = c.consumer.Close()
		c.consumer = nil
		return fmt.Errorf("failed to subscribe to topics %v for group %s: %w", topics, groupID, err)
	}

	log.Info("Kafka consumer started", zap.Strings("topics", topics))

	for {
		select {
		case <-ctx.Done():
			log.Info("Context canceled, consumer loop finished")
			return nil
		default:
		}

		ev := c.consumer.Poll(1000)
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			fields := []zap.Field{zap.String("topic", *e.TopicPartition.Topic), zap.String("offset", e.TopicPartition.Offset.String())}
			if err := handler(ctx, e); err != nil {
				log.Error("Error processing Kafka message", append(fields, zap.Error(err))...)
				continue
			}
			if _, err := c.consumer.CommitMessage(e); err != nil {
				log.Error("Failed to commit offset", append(fields, zap.Error(err))...)
			}
		case kafka.Error:
			log.Warn("Kafka consumer error", zap.Error(e), zap.Bool("fatal", e.IsFatal()), zap.Bool("retriable", e.IsRetriable()))
			if e.IsFatal() {
				return e
			}
		case kafka.AssignedPartitions:
			log.Info("Partitions assigned", zap.Int("count", len(e.Partitions)))
			_ = c.consumer.Assign(e.Partitions)
		case kafka.RevokedPartitions:
			log.Info("Partitions revoked", zap.Int("count", len(e.Partitions)))
			_ = c.consumer.Unassign()
		}
	}
}

// Close closes the Kafka consumer.
func (c *confluentKafkaConsumer) Close() {
	if c.consumer == nil {
		return
	}
	if err := c.consumer.Close(); err != nil {
		c.logger.Error("Error closing Kafka consumer", zap.String("group", c.groupID), zap.Error(err))
	} else {
		c.logger.Info("Kafka consumer closed", zap.String("group", c.groupID))
	}
	c.consumer = nil
}

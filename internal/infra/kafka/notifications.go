package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/domain"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/port"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/logger"
)

// ErrDispatchFailed indicates the broker did not acknowledge a notification
// publish. The triggering state mutation is already committed when this is
// returned; callers surface the error without rolling back.
var ErrDispatchFailed = errors.New("kafka: notification dispatch failed")

// Notifier implements port.NotificationPublisher on top of the email
// notification topic. The routing key travels as the message key so the
// notification service can fan out by source.
type Notifier struct {
	producer *Producer
	topic    string
	logger   *zap.Logger
}

// NewNotifier constructs a Kafka-backed notification publisher.
func NewNotifier(producer *Producer, topic string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{producer: producer, topic: topic, logger: logger}
}

// Publish serializes the message and produces it synchronously. A nil
// return means the broker acknowledged the write.
func (n *Notifier) Publish(ctx context.Context, msg domain.NotificationMessage, routingKey, logContext string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification message: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: n.producer.TopicName(n.topic),
		Key:   sarama.StringEncoder(routingKey),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := n.producer.SyncProducer().SendMessage(message)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	n.logger.Info(logContext,
		zap.String("topic", message.Topic),
		zap.String("routing_key", routingKey),
		zap.String("template", msg.Template),
		zap.String("receiver_email", logger.MaskEmail(msg.ReceiverEmail)),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)

	return nil
}

var _ port.NotificationPublisher = (*Notifier)(nil)

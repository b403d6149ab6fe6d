package kafka

import (
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/config"
)

// Producer wraps a Sarama SyncProducer with lifecycle management. A sync
// producer is used on purpose: a publish call must not return before the
// broker acknowledged the write, because the service reports dispatch
// failures to the caller instead of retrying internally.
type Producer struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
	cfg      config.KafkaSettings
}

// NewProducer initializes the Kafka sync producer.
func NewProducer(cfg config.KafkaSettings, logger *zap.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_5_0_0

	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	// Idempotent production requires a single in-flight request.
	saramaConfig.Net.MaxOpenRequests = 1

	saramaConfig.Metadata.Retry.Max = 3
	saramaConfig.Metadata.Retry.Backoff = 250 * time.Millisecond

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	logger.Info("kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic_prefix", cfg.TopicPrefix),
	)

	return &Producer{
		producer: producer,
		logger:   logger,
		cfg:      cfg,
	}, nil
}

// SyncProducer returns the underlying Sarama producer.
func (p *Producer) SyncProducer() sarama.SyncProducer {
	return p.producer
}

// Close flushes and closes the producer.
func (p *Producer) Close() error {
	p.logger.Info("closing kafka producer")

	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}

	return nil
}

// TopicName returns the full topic name with prefix.
func (p *Producer) TopicName(topic string) string {
	if p.cfg.TopicPrefix == "" {
		return topic
	}

	prefix := fmt.Sprintf("%s.", p.cfg.TopicPrefix)
	if strings.HasPrefix(topic, prefix) {
		return topic
	}

	return fmt.Sprintf("%s%s", prefix, topic)
}

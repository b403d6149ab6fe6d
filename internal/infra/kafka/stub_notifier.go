package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/domain"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/port"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/logger"
)

// StubNotifier logs notifications instead of producing them. Used in
// development environments without a broker.
type StubNotifier struct {
	logger *zap.Logger
}

// NewStubNotifier constructs a logging-only notification publisher.
func NewStubNotifier(log *zap.Logger) *StubNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &StubNotifier{logger: log}
}

// Publish logs the message and reports success.
func (s *StubNotifier) Publish(_ context.Context, msg domain.NotificationMessage, routingKey, logContext string) error {
	s.logger.Info("stub notification publish",
		zap.String("log_context", logContext),
		zap.String("routing_key", routingKey),
		zap.String("template", msg.Template),
		zap.String("username", msg.Username),
		zap.String("receiver_email", logger.MaskEmail(msg.ReceiverEmail)),
	)
	return nil
}

var _ port.NotificationPublisher = (*StubNotifier)(nil)

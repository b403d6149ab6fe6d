package port

import (
	"context"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/domain"
)

// NotificationPublisher hands security-event messages to the messaging
// fabric. A nil return means the broker acknowledged the write; delivery
// beyond that point is the broker's responsibility (at-least-once).
// Callers must only publish after the triggering state mutation committed.
type NotificationPublisher interface {
	Publish(ctx context.Context, msg domain.NotificationMessage, routingKey, logContext string) error
}

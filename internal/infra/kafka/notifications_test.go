package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"go.uber.org/zap/zaptest"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/domain"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/config"
)

func testProducer(t *testing.T, sync sarama.SyncProducer) *Producer {
	t.Helper()
	return &Producer{
		producer: sync,
		logger:   zaptest.NewLogger(t),
		cfg:      config.KafkaSettings{TopicPrefix: "marketplace"},
	}
}

func TestPublishSendsRoutedMessage(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	defer func() {
		if err := mock.Close(); err != nil {
			t.Errorf("close mock producer: %v", err)
		}
	}()

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(pm *sarama.ProducerMessage) error {
		if pm.Topic != "marketplace.email-notification" {
			return errors.New("unexpected topic " + pm.Topic)
		}

		key, err := pm.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "auth-email" {
			return errors.New("unexpected key " + string(key))
		}

		value, err := pm.Value.Encode()
		if err != nil {
			return err
		}
		var decoded domain.NotificationMessage
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.Template != domain.TemplateForgotPassword {
			return errors.New("unexpected template " + decoded.Template)
		}
		if decoded.ReceiverEmail != "gabrielle@example.com" {
			return errors.New("unexpected receiver " + decoded.ReceiverEmail)
		}
		return nil
	})

	notifier := NewNotifier(testProducer(t, mock), "email-notification", zaptest.NewLogger(t))

	msg := domain.NotificationMessage{
		ReceiverEmail: "gabrielle@example.com",
		ResetLink:     "https://app.example.com/reset_password?token=abc",
		Username:      "gabrielle",
		Template:      domain.TemplateForgotPassword,
	}

	if err := notifier.Publish(context.Background(), msg, "auth-email", "test publish"); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
}

func TestPublishWrapsBrokerFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	defer func() { _ = mock.Close() }()

	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	notifier := NewNotifier(testProducer(t, mock), "email-notification", zaptest.NewLogger(t))

	err := notifier.Publish(context.Background(), domain.NotificationMessage{
		Username: "gabrielle",
		Template: domain.TemplateResetPasswordSuccess,
	}, "auth-email", "test publish")

	if !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("Publish() error = %v, want ErrDispatchFailed", err)
	}
}

func TestPublishHonorsCancelledContext(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	defer func() { _ = mock.Close() }()

	notifier := NewNotifier(testProducer(t, mock), "email-notification", zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := notifier.Publish(ctx, domain.NotificationMessage{Template: domain.TemplateForgotPassword}, "auth-email", "test publish")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Publish() error = %v, want context.Canceled", err)
	}
}

func TestTopicName(t *testing.T) {
	producer := testProducer(t, nil)

	cases := []struct {
		in   string
		want string
	}{
		{in: "email-notification", want: "marketplace.email-notification"},
		{in: "marketplace.email-notification", want: "marketplace.email-notification"},
	}
	for _, tc := range cases {
		if got := producer.TopicName(tc.in); got != tc.want {
			t.Errorf("TopicName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	bare := &Producer{cfg: config.KafkaSettings{}}
	if got := bare.TopicName("email-notification"); got != "email-notification" {
		t.Errorf("TopicName without prefix = %q", got)
	}
}

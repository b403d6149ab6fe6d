package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/domain"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/port"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/config"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/logger"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/security"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/repository"
)

const (
	defaultResetTokenTTL = time.Hour

	passwordResetRateLimitScope = "password_reset"

	forgotPasswordLogContext        = "forgot password message sent to notification service"
	resetPasswordSuccessLogContext  = "reset password success message sent to notification service"
	changePasswordSuccessLogContext = "password change success message sent to notification service"
)

var (
	// ErrValidation indicates malformed input, detected before any I/O.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidCredentials indicates an unknown user or a wrong password.
	// Deliberately shared across those cases to limit account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordMismatch indicates the confirmation field differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrTokenExpired indicates the reset token is absent, already consumed,
	// or past expiry. The three cases are indistinguishable by design.
	ErrTokenExpired = errors.New("reset token has expired")
	// ErrTooManyResetRequests indicates the reset rate limit was exceeded.
	ErrTooManyResetRequests = errors.New("too many password reset requests")
)

var emailFormat = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CredentialService orchestrates the forgot-password, reset-password, and
// change-password flows. Each flow validates, looks up, mutates, and only
// after the mutation durably committed, notifies. A dispatch failure is
// surfaced to the caller; the committed mutation stays (the state store and
// the message fabric are not transactional with each other).
type CredentialService struct {
	users      port.UserRepository
	hasher     port.PasswordHasher
	notifier   port.NotificationPublisher
	rateLimits port.RateLimitStore
	validator  *security.PasswordValidator
	logger     *zap.Logger

	clientURL       string
	routingKey      string
	resetTTL        time.Duration
	rateLimitWindow time.Duration
	rateLimitMax    int

	now func() time.Time
}

// NewCredentialService constructs a CredentialService.
func NewCredentialService(cfg *config.AppConfig, users port.UserRepository, hasher port.PasswordHasher, notifier port.NotificationPublisher, rateLimits port.RateLimitStore, validator *security.PasswordValidator, log *zap.Logger) *CredentialService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}

	svc := &CredentialService{
		users:      users,
		hasher:     hasher,
		notifier:   notifier,
		rateLimits: rateLimits,
		validator:  validator,
		logger:     log,
		resetTTL:   defaultResetTokenTTL,
		routingKey: "auth-email",
		now:        func() time.Time { return time.Now().UTC() },
	}

	if cfg != nil {
		svc.clientURL = strings.TrimRight(cfg.Client.URL, "/")
		if cfg.Kafka.RoutingKey != "" {
			svc.routingKey = cfg.Kafka.RoutingKey
		}
		if cfg.Reset.TokenTTL > 0 {
			svc.resetTTL = cfg.Reset.TokenTTL
		}
		svc.rateLimitWindow = cfg.RateLimit.WindowDuration
		svc.rateLimitMax = cfg.RateLimit.PasswordResetMaxAttempts
	}

	return svc
}

// WithClock overrides the service clock, primarily for tests.
func (s *CredentialService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithResetTTL overrides the reset token lifetime, primarily for tests.
func (s *CredentialService) WithResetTTL(ttl time.Duration) {
	if ttl > 0 {
		s.resetTTL = ttl
	}
}

// ForgotPassword issues a reset token for the account registered under the
// supplied email and notifies the downstream notification service.
//
// An unknown email fails with ErrInvalidCredentials before a token is
// issued. This mirrors the documented behavior of the platform's public
// contract even though it reveals account existence; see DESIGN.md for the
// considered-and-deferred uniform-success alternative.
func (s *CredentialService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !emailFormat.MatchString(email) {
		return fmt.Errorf("%w: email format is invalid", ErrValidation)
	}

	if err := s.enforceResetRateLimit(ctx, email); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("lookup user by email: %w", err)
	}

	token, err := security.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expiresAt := s.now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	message := domain.NotificationMessage{
		ReceiverEmail: user.Email,
		ResetLink:     s.resetLink(token),
		Username:      user.Username,
		Template:      domain.TemplateForgotPassword,
	}

	if err := s.notifier.Publish(ctx, message, s.routingKey, forgotPasswordLogContext); err != nil {
		// Token is already persisted; report the dispatch failure as-is.
		return err
	}

	return nil
}

// ResetPassword consumes a reset token and installs the new password. The
// token consume and the hash update are a single conditional write, so a
// token superseded by a concurrent re-issue fails cleanly with
// ErrTokenExpired instead of clobbering the newer token.
func (s *CredentialService) ResetPassword(ctx context.Context, token, password, confirmPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: reset token is required", ErrValidation)
	}
	if err := s.validator.Validate(password); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if password != confirmPassword {
		return ErrPasswordMismatch
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenExpired
		}
		return fmt.Errorf("lookup user by reset token: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := s.users.UpdatePasswordByResetToken(ctx, user.ID, token, hash, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenExpired
		}
		return fmt.Errorf("update password: %w", err)
	}

	message := domain.NotificationMessage{
		Username: user.Username,
		Template: domain.TemplateResetPasswordSuccess,
	}

	if err := s.notifier.Publish(ctx, message, s.routingKey, resetPasswordSuccessLogContext); err != nil {
		return err
	}

	return nil
}

// ChangePassword updates the password of an authenticated user after
// verifying the current one.
func (s *CredentialService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if currentPassword == "" {
		return fmt.Errorf("%w: current password is required", ErrValidation)
	}
	if err := s.validator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	matches, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify current password: %w", err)
	}
	if !matches {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("update password: %w", err)
	}

	message := domain.NotificationMessage{
		Username: user.Username,
		Template: domain.TemplateResetPasswordSuccess,
	}

	if err := s.notifier.Publish(ctx, message, s.routingKey, changePasswordSuccessLogContext); err != nil {
		return err
	}

	return nil
}

func (s *CredentialService) resetLink(token string) string {
	return fmt.Sprintf("%s/reset_password?token=%s", s.clientURL, url.QueryEscape(token))
}

// enforceResetRateLimit bounds reset requests per email. Store failures are
// logged and let the request through; the limiter is a shield, not a
// dependency of the flow.
func (s *CredentialService) enforceResetRateLimit(ctx context.Context, email string) error {
	if s.rateLimits == nil || s.rateLimitMax <= 0 {
		return nil
	}

	window := s.rateLimitWindow
	if window <= 0 {
		window = time.Hour
	}

	now := s.now()
	key := fmt.Sprintf("%s:%s", passwordResetRateLimitScope, strings.ToLower(email))

	if err := s.rateLimits.TrimWindow(ctx, key, window, now); err != nil {
		s.logger.Warn("reset rate limit trim failed", zap.String("email", logger.MaskEmail(email)), zap.Error(err))
		return nil
	}

	count, err := s.rateLimits.CountAttempts(ctx, key, window, now)
	if err != nil {
		s.logger.Warn("reset rate limit count failed", zap.String("email", logger.MaskEmail(email)), zap.Error(err))
		return nil
	}

	if count >= s.rateLimitMax {
		return ErrTooManyResetRequests
	}

	if err := s.rateLimits.RecordAttempt(ctx, key, now); err != nil {
		s.logger.Warn("reset rate limit record failed", zap.String("email", logger.MaskEmail(email)), zap.Error(err))
	}

	return nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/domain"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/port"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/security"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/repository"
)

// ErrUserNotFound indicates the authenticated identity no longer resolves
// to an account.
var ErrUserNotFound = errors.New("user not found")

// AuthService coordinates sign-in and session token issuance.
type AuthService struct {
	users  port.UserRepository
	hasher port.PasswordHasher
	issuer *security.SessionIssuer
	logger *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users port.UserRepository, hasher port.PasswordHasher, issuer *security.SessionIssuer, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:  users,
		hasher: hasher,
		issuer: issuer,
		logger: log,
	}
}

// SignIn validates credentials and issues a session token. The identifier
// may be a username or an email address. Unknown account and wrong
// password fail identically with ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, identifier, password string) (string, domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", domain.User{}, fmt.Errorf("%w: identifier is required", ErrValidation)
	}
	if password == "" {
		return "", domain.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	var (
		user *domain.User
		err  error
	)
	if emailFormat.MatchString(identifier) {
		user, err = s.users.GetByEmail(ctx, identifier)
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	matches, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("verify password: %w", err)
	}
	if !matches {
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID, user.Email, user.Username)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("issue session token: %w", err)
	}

	return token, user.Sanitized(), nil
}

// RefreshToken re-issues a session token for an already-authenticated user.
func (s *AuthService) RefreshToken(ctx context.Context, username string) (string, domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", domain.User{}, fmt.Errorf("%w: username is required", ErrValidation)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.User{}, ErrUserNotFound
		}
		return "", domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	token, err := s.issuer.Issue(user.ID, user.Email, user.Username)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("issue session token: %w", err)
	}

	return token, user.Sanitized(), nil
}

// CurrentUser returns the sanitized profile for an authenticated identity.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.User{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	return user.Sanitized(), nil
}

package port

import (
	"context"
	"time"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/domain"
)

// UserRepository exposes persistence behavior for user credentials.
//
// GetByResetToken must treat expired tokens identically to unknown ones.
// UpdatePasswordByResetToken is the consume half of the reset flow: one
// conditional write keyed by the exact token value that sets the new hash
// and clears both reset columns, so a token issued concurrently by a newer
// request is never clobbered.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)
	SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error
	UpdatePasswordByResetToken(ctx context.Context, userID, token, passwordHash string, changedAt time.Time) error
}

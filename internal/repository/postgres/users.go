package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/domain"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/port"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/repository"
)

// pgExecutor abstracts the pgx query surface so repositories run against a
// pool, a transaction, or a mock.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var userColumns = []string{
	"id",
	"username",
	"email",
	"password_hash",
	"created_at",
	"password_changed_at",
	"reset_token",
	"reset_token_expires_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// NewUserRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the repository clock, primarily for tests.
func (r *UserRepository) WithClock(clock func() time.Time) {
	if clock != nil {
		r.now = clock
	}
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

// GetByResetToken retrieves the user holding a live reset token. Expired
// tokens are filtered in SQL so the caller cannot distinguish expired from
// unknown. Read-only; never mutates on lookup.
func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.And{
		squirrel.Eq{"reset_token": token},
		squirrel.Gt{"reset_token_expires_at": r.now()},
	})
}

func (r *UserRepository) getOne(ctx context.Context, pred any) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("auth.users").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		user           domain.User
		resetToken     sql.NullString
		resetExpiresAt sql.NullTime
	)

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.PasswordChangedAt,
		&resetToken,
		&resetExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if resetToken.Valid {
		value := resetToken.String
		user.ResetToken = &value
	}
	if resetExpiresAt.Valid {
		t := resetExpiresAt.Time
		user.ResetTokenExpiresAt = &t
	}

	return &user, nil
}

// SetResetToken persists a reset token and its expiry against the user,
// overwriting any prior pending token (last issue wins).
func (r *UserRepository) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	stmt, args, err := r.builder.Update("auth.users").
		Set("reset_token", token).
		Set("reset_token_expires_at", expiresAt).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set reset token sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePassword replaces the stored hash and clears any pending reset
// token in the same write.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error {
	stmt, args, err := r.builder.Update("auth.users").
		Set("password_hash", passwordHash).
		Set("password_changed_at", changedAt).
		Set("reset_token", nil).
		Set("reset_token_expires_at", nil).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePasswordByResetToken consumes a reset token: one conditional write
// keyed by the exact token value that sets the new hash and clears both
// reset columns. Zero rows affected means the token was already consumed
// or superseded by a newer issue, reported as ErrNotFound.
func (r *UserRepository) UpdatePasswordByResetToken(ctx context.Context, userID, token, passwordHash string, changedAt time.Time) error {
	stmt, args, err := r.builder.Update("auth.users").
		Set("password_hash", passwordHash).
		Set("password_changed_at", changedAt).
		Set("reset_token", nil).
		Set("reset_token_expires_at", nil).
		Where(squirrel.Eq{"id": userID}).
		Where(squirrel.Eq{"reset_token": token}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build consume reset token sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.UserRepository = (*UserRepository)(nil)

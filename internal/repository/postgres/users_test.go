package postgres

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/repository"
)

const selectUserSQL = "SELECT id, username, email, password_hash, created_at, password_changed_at, reset_token, reset_token_expires_at FROM auth.users"

func newMockRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool() error = %v", err)
	}
	t.Cleanup(mock.Close)

	return NewUserRepository(mock), mock
}

func userRow(token, expiresAt any) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "email", "password_hash", "created_at", "password_changed_at", "reset_token", "reset_token_expires_at",
	}).AddRow(
		"user-1",
		"gabrielle",
		"gabrielle@example.com",
		"argon2id$v=19$m=65536,t=3,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		token,
		expiresAt,
	)
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL+" WHERE email = $1 LIMIT 1")).
		WithArgs("gabrielle@example.com").
		WillReturnRows(userRow(nil, nil))

	user, err := repo.GetByEmail(context.Background(), "gabrielle@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if user.ID != "user-1" || user.Username != "gabrielle" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.ResetToken != nil {
		t.Fatal("reset token should be nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL+" WHERE email = $1 LIMIT 1")).
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "username", "email", "password_hash", "created_at", "password_changed_at", "reset_token", "reset_token_expires_at",
		}))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestGetByResetTokenFiltersExpiryInSQL(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time { return now })

	token := strings.Repeat("ab", 20)
	expiresAt := now.Add(30 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserSQL+" WHERE (reset_token = $1 AND reset_token_expires_at > $2) LIMIT 1")).
		WithArgs(token, now).
		WillReturnRows(userRow(token, expiresAt))

	user, err := repo.GetByResetToken(context.Background(), token)
	if err != nil {
		t.Fatalf("GetByResetToken() error = %v", err)
	}
	if user.ResetToken == nil || *user.ResetToken != token {
		t.Fatalf("reset token not populated: %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSetResetToken(t *testing.T) {
	repo, mock := newMockRepo(t)

	token := strings.Repeat("cd", 20)
	expiresAt := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE auth.users SET reset_token = $1, reset_token_expires_at = $2 WHERE id = $3")).
		WithArgs(token, expiresAt, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.SetResetToken(context.Background(), "user-1", token, expiresAt); err != nil {
		t.Fatalf("SetResetToken() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSetResetTokenUnknownUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE auth.users SET")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SetResetToken(context.Background(), "ghost", "token", time.Now())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("SetResetToken() error = %v, want ErrNotFound", err)
	}
}

func TestUpdatePasswordClearsResetState(t *testing.T) {
	repo, mock := newMockRepo(t)

	changedAt := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE auth.users SET password_hash = $1, password_changed_at = $2, reset_token = $3, reset_token_expires_at = $4 WHERE id = $5")).
		WithArgs("new-hash", changedAt, nil, nil, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdatePassword(context.Background(), "user-1", "new-hash", changedAt); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdatePasswordByResetTokenIsConditional(t *testing.T) {
	repo, mock := newMockRepo(t)

	token := strings.Repeat("ef", 20)
	changedAt := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE auth.users SET password_hash = $1, password_changed_at = $2, reset_token = $3, reset_token_expires_at = $4 WHERE id = $5 AND reset_token = $6")).
		WithArgs("new-hash", changedAt, nil, nil, "user-1", token).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdatePasswordByResetToken(context.Background(), "user-1", token, "new-hash", changedAt); err != nil {
		t.Fatalf("UpdatePasswordByResetToken() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdatePasswordByResetTokenSuperseded(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE auth.users SET")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), nil, nil, "user-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePasswordByResetToken(context.Background(), "user-1", "stale-token", "new-hash", time.Now())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("UpdatePasswordByResetToken() error = %v, want ErrNotFound", err)
	}
}

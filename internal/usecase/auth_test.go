package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/domain"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/security"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/repository"
)

func testIssuer(t *testing.T) *security.SessionIssuer {
	t.Helper()

	issuer, err := security.NewSessionIssuer("test-signing-secret", "auth-service", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionIssuer() error = %v", err)
	}
	return issuer
}

func TestSignInWithEmail(t *testing.T) {
	user := testUser()
	issuer := testIssuer(t)

	usernameLookups := 0
	repo := &fakeUserRepo{
		getByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email != user.Email {
				return nil, repository.ErrNotFound
			}
			return user, nil
		},
		getByUsername: func(context.Context, string) (*domain.User, error) {
			usernameLookups++
			return nil, repository.ErrNotFound
		},
	}

	svc := NewAuthService(repo, &fakeHasher{}, issuer, nil)

	token, got, err := svc.SignIn(context.Background(), user.Email, strongPassword)
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if usernameLookups != 0 {
		t.Fatalf("username lookups = %d, want 0", usernameLookups)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims user id = %q, want %q", claims.UserID, user.ID)
	}
	if claims.Username != user.Username {
		t.Errorf("claims username = %q, want %q", claims.Username, user.Username)
	}

	if got.PasswordHash != "" {
		t.Error("returned user exposes the password hash")
	}
	if got.ResetToken != nil || got.ResetTokenExpiresAt != nil {
		t.Error("returned user exposes reset token state")
	}
}

func TestSignInWithUsername(t *testing.T) {
	user := testUser()
	repo := &fakeUserRepo{
		getByUsername: func(_ context.Context, username string) (*domain.User, error) {
			if username != user.Username {
				return nil, repository.ErrNotFound
			}
			return user, nil
		},
	}

	svc := NewAuthService(repo, &fakeHasher{}, testIssuer(t), nil)

	token, _, err := svc.SignIn(context.Background(), user.Username, strongPassword)
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if token == "" {
		t.Fatal("SignIn() returned an empty token")
	}
}

func TestSignInFailsUniformly(t *testing.T) {
	user := testUser()
	repo := &fakeUserRepo{
		getByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email != user.Email {
				return nil, repository.ErrNotFound
			}
			return user, nil
		},
	}

	svc := NewAuthService(repo, &fakeHasher{}, testIssuer(t), nil)

	cases := []struct {
		name       string
		identifier string
		password   string
	}{
		{name: "unknown account", identifier: "nobody@example.com", password: strongPassword},
		{name: "wrong password", identifier: user.Email, password: "wrong-password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.SignIn(context.Background(), tc.identifier, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("SignIn() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestSignInValidatesInput(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{}, &fakeHasher{}, testIssuer(t), nil)

	if _, _, err := svc.SignIn(context.Background(), "", strongPassword); !errors.Is(err, ErrValidation) {
		t.Errorf("SignIn with empty identifier: error = %v, want ErrValidation", err)
	}
	if _, _, err := svc.SignIn(context.Background(), "gabrielle", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("SignIn with empty password: error = %v, want ErrValidation", err)
	}
}

func TestRefreshToken(t *testing.T) {
	user := testUser()
	repo := &fakeUserRepo{
		getByUsername: func(_ context.Context, username string) (*domain.User, error) {
			if username != user.Username {
				return nil, repository.ErrNotFound
			}
			return user, nil
		},
	}
	issuer := testIssuer(t)

	svc := NewAuthService(repo, &fakeHasher{}, issuer, nil)

	token, got, err := svc.RefreshToken(context.Background(), user.Username)
	if err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if got.PasswordHash != "" {
		t.Error("returned user exposes the password hash")
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims user id = %q, want %q", claims.UserID, user.ID)
	}

	if _, _, err := svc.RefreshToken(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("RefreshToken(unknown) error = %v, want ErrUserNotFound", err)
	}
}

func TestCurrentUser(t *testing.T) {
	user := testUser()
	repo := &fakeUserRepo{
		getByID: func(_ context.Context, id string) (*domain.User, error) {
			if id != user.ID {
				return nil, repository.ErrNotFound
			}
			return user, nil
		},
	}

	svc := NewAuthService(repo, &fakeHasher{}, testIssuer(t), nil)

	got, err := svc.CurrentUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if got.Email != user.Email {
		t.Errorf("email = %q, want %q", got.Email, user.Email)
	}
	if got.PasswordHash != "" {
		t.Error("returned user exposes the password hash")
	}

	if _, err := svc.CurrentUser(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("CurrentUser(unknown) error = %v, want ErrUserNotFound", err)
	}
}

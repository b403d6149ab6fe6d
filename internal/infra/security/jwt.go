package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSigningSecretMissing indicates the session signing secret is not
// configured. Fatal at startup, never surfaced per-request.
var ErrSigningSecretMissing = errors.New("jwt: signing secret is not configured")

// ErrInvalidSessionToken indicates a token that failed signature or claim
// validation.
var ErrInvalidSessionToken = errors.New("jwt: invalid session token")

// SessionClaims carries the identity assertion embedded in a session token.
type SessionClaims struct {
	UserID   string `json:"uid"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionIssuer mints and verifies stateless HS512-signed session tokens.
// The signing secret is process-wide configuration loaded once at startup
// and immutable thereafter.
type SessionIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer constructs a SessionIssuer. The secret is required.
func NewSessionIssuer(secret, issuer string, ttl time.Duration) (*SessionIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSigningSecretMissing
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &SessionIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock overrides the issuer clock, primarily for tests.
func (i *SessionIssuer) WithClock(clock func() time.Time) {
	if clock != nil {
		i.now = clock
	}
}

// Issue mints a signed session token bound to the supplied identity claims.
// Pure function of its inputs plus the signing secret; no I/O.
func (i *SessionIssuer) Issue(userID, email, username string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}

	issuedAt := i.now()
	claims := SessionClaims{
		UserID:   userID,
		Email:    email,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// Parse validates the signature and time bounds of a session token and
// returns its claims.
func (i *SessionIssuer) Parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(i.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
	}
	if i.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(i.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, parserOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}

	if !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidSessionToken
	}

	return claims, nil
}

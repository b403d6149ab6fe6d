package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/security"
)

func authTestRouter(t *testing.T, issuer *security.SessionIssuer) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/protected", RequireAuth(issuer), func(c *gin.Context) {
		userID, _ := GetAuthenticatedUserID(c)
		username, _ := GetAuthenticatedUsername(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "username": username})
	})
	return engine
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	issuer, err := security.NewSessionIssuer("middleware-test-secret", "auth-service", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionIssuer() error = %v", err)
	}

	token, err := issuer.Issue("user-1", "gabrielle@example.com", "gabrielle")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	engine := authTestRouter(t, issuer)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
}

func TestRequireAuthRejectsBadHeaders(t *testing.T) {
	issuer, err := security.NewSessionIssuer("middleware-test-secret", "auth-service", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionIssuer() error = %v", err)
	}

	engine := authTestRouter(t, issuer)

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "no scheme", header: "just-a-token"},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "empty token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not.a.jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			engine.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	issuer, err := security.NewSessionIssuer("middleware-test-secret", "auth-service", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionIssuer() error = %v", err)
	}

	past := time.Now().Add(-48 * time.Hour)
	issuer.WithClock(func() time.Time { return past })
	token, err := issuer.Issue("user-1", "a@example.com", "a")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	issuer.WithClock(func() time.Time { return time.Now().UTC() })

	engine := authTestRouter(t, issuer)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

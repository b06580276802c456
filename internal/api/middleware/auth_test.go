package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/garagecrm/access-api/internal/core/domain"
)

type stubTokenStore struct {
	revoked map[string]bool
	err     error
}

func (s *stubTokenStore) Revoke(_ context.Context, jti string, _ time.Duration) error {
	if s.revoked == nil {
		s.revoked = make(map[string]bool)
	}
	s.revoked[jti] = true
	return s.err
}

func (s *stubTokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[jti], nil
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func tokenFor(t *testing.T, userID string, role domain.Role) string {
	return signToken(t, jwt.MapClaims{
		"sub":       userID,
		"tenant_id": "tenant_1",
		"role":      string(role),
		"email":     userID + "@example.com",
		"jti":       "jti-" + userID,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
}

func runAuth(t *testing.T, store *stubTokenStore, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(NewAuthenticator("secret", store))(next)
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func mustNotRun(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	called := false
	rec := runAuth(t, &stubTokenStore{}, "Bearer "+tokenFor(t, "alice", domain.RoleManager), func(c echo.Context) error {
		called = true
		claims, ok := ClaimsFrom(c)
		if !ok {
			t.Fatalf("claims not set")
		}
		if claims.UserID != "alice" || claims.TenantID != "tenant_1" || claims.Role != domain.RoleManager {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		if claims.JTI != "jti-alice" || claims.ExpiresAt.IsZero() {
			t.Fatalf("token id or expiry missing: %+v", claims)
		}
		if c.Get("role") != domain.RoleManager {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expired := signToken(t, jwt.MapClaims{"sub": "bob", "role": "USER", "exp": time.Now().Add(-time.Minute).Unix()})
	noSubject := signToken(t, jwt.MapClaims{"role": "USER", "exp": time.Now().Add(time.Hour).Unix()})
	otherKey, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "bob"}).SignedString([]byte("other"))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"invalid header format", "Token abc"},
		{"garbage token", "Bearer not-a-token"},
		{"expired token", "Bearer " + expired},
		{"token without subject", "Bearer " + noSubject},
		{"wrong signing key", "Bearer " + otherKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runAuth(t, &stubTokenStore{}, tt.header, mustNotRun(t))
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	store := &stubTokenStore{revoked: map[string]bool{"jti-carol": true}}
	rec := runAuth(t, store, "Bearer "+tokenFor(t, "carol", domain.RoleOwner), mustNotRun(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "token revoked") {
		t.Fatalf("expected revoked message, got %s", rec.Body.String())
	}
}

func TestAuthMiddleware_RevocationStoreDown(t *testing.T) {
	store := &stubTokenStore{err: errors.New("connection refused")}
	rec := runAuth(t, store, "Bearer "+tokenFor(t, "dave", domain.RoleOwner), mustNotRun(t))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

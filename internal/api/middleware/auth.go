package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/garagecrm/access-api/internal/core/domain"
	"github.com/garagecrm/access-api/internal/core/ports"
)

const claimsKey = "claims"

// Claims is the verified identity carried by a session token.
type Claims struct {
	UserID    string
	TenantID  string
	Role      domain.Role
	Email     string
	JTI       string
	ExpiresAt time.Time
}

var (
	errMissingHeader   = errors.New("missing authorization header")
	errMalformedHeader = errors.New("invalid authorization header")
	errInvalidToken    = errors.New("invalid token")
	errRevocationCheck = errors.New("token revocation check unavailable")
)

// Authenticator verifies bearer tokens issued by the auth service.
type Authenticator struct {
	secret []byte
	tokens ports.TokenStore
}

// NewAuthenticator returns an Authenticator for HS256 tokens signed with
// jwtSecret. tokens may be nil, in which case revocation is not checked.
func NewAuthenticator(jwtSecret string, tokens ports.TokenStore) *Authenticator {
	return &Authenticator{secret: []byte(jwtSecret), tokens: tokens}
}

// Authenticate verifies the request's bearer token and stores the claims in
// the context. A logged-out token yields domain.ErrTokenRevoked and a failing
// revocation store yields errRevocationCheck.
func (a *Authenticator) Authenticate(c echo.Context) (Claims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return Claims{}, errMissingHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return Claims{}, errMalformedHeader
	}

	mc := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(parts[1], mc, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !tkn.Valid {
		return Claims{}, errInvalidToken
	}

	claims := claimsFromMap(mc)
	if claims.UserID == "" {
		return Claims{}, errInvalidToken
	}

	if a.tokens != nil && claims.JTI != "" {
		revoked, err := a.tokens.IsRevoked(c.Request().Context(), claims.JTI)
		if err != nil {
			return Claims{}, errRevocationCheck
		}
		if revoked {
			return Claims{}, domain.ErrTokenRevoked
		}
	}

	SetClaims(c, claims)
	return claims, nil
}

// Auth validates the JWT and injects claims into context.
func Auth(a *Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := a.Authenticate(c); err != nil {
				return authError(err)
			}
			return next(c)
		}
	}
}

func authError(err error) *echo.HTTPError {
	if errors.Is(err, errRevocationCheck) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
}

// ClaimsFrom returns the claims stored by Auth or Guard, if any.
func ClaimsFrom(c echo.Context) (Claims, bool) {
	claims, ok := c.Get(claimsKey).(Claims)
	return claims, ok
}

// SetClaims stores the session claims on the request context.
func SetClaims(c echo.Context, claims Claims) {
	c.Set(claimsKey, claims)
	c.Set("user_id", claims.UserID)
	c.Set("tenant_id", claims.TenantID)
	c.Set("role", claims.Role)
}

func claimsFromMap(mc jwt.MapClaims) Claims {
	str := func(key string) string {
		s, _ := mc[key].(string)
		return s
	}
	claims := Claims{
		UserID:   str("sub"),
		TenantID: str("tenant_id"),
		Role:     domain.Role(str("role")),
		Email:    str("email"),
		JTI:      str("jti"),
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims
}

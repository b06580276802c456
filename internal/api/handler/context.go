package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garagecrm/access-api/internal/api/middleware"
	"github.com/garagecrm/access-api/internal/core/ports"
)

// ctxClaims returns the session claims stored by the guard. Handlers behind
// an authenticated route always find them; their absence means the route was
// registered without a policy entry, so fail with 401 rather than guess.
func ctxClaims(c echo.Context) (middleware.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.UserID == "" {
		return middleware.Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}

// ctxActor is ctxClaims narrowed to what team operations need. Tokens without
// a tenant are structurally valid but operationally unusable.
func ctxActor(c echo.Context) (ports.Actor, error) {
	claims, err := ctxClaims(c)
	if err != nil {
		return ports.Actor{}, err
	}
	if claims.TenantID == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "token missing tenant identity")
	}
	return ports.Actor{UserID: claims.UserID, TenantID: claims.TenantID, Role: claims.Role}, nil
}

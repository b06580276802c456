package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/garagecrm/access-api/internal/api/metrics"
	"github.com/garagecrm/access-api/internal/core/domain"
	"github.com/garagecrm/access-api/internal/core/policy"
	"github.com/garagecrm/access-api/internal/core/ports"
)

// denialResponse is the body of a refused request.
type denialResponse struct {
	Error               string              `json:"error"`
	Message             string              `json:"message"`
	RequiredPermission  domain.Permission   `json:"required_permission,omitempty"`
	RequiredPermissions []domain.Permission `json:"required_permissions,omitempty"`
	RequiredRoles       []domain.Role       `json:"required_roles,omitempty"`
	CurrentRole         domain.Role         `json:"current_role,omitempty"`
}

// Guard enforces route requirements and reports every refusal.
type Guard struct {
	auth       *Authenticator
	recorder   ports.SecurityRecorder
	log        zerolog.Logger
	production bool
}

// NewGuard builds a Guard. recorder may be a nil interface when no audit trail
// is kept; a typed nil pointer is not nil and will be called.
// In production denials are logged at warn level, otherwise at debug.
func NewGuard(auth *Authenticator, recorder ports.SecurityRecorder, log zerolog.Logger, production bool) *Guard {
	return &Guard{auth: auth, recorder: recorder, log: log, production: production}
}

// RequireAuth only asks for a valid, unrevoked token.
func (g *Guard) RequireAuth() echo.MiddlewareFunc {
	return g.require(policy.Authenticated())
}

// RequirePermission lets the request through when the caller's role holds p.
func (g *Guard) RequirePermission(p domain.Permission) echo.MiddlewareFunc {
	return g.require(policy.Permission(p))
}

// RequireAnyPermission lets the request through when the caller holds at least
// one of perms. An empty list denies everyone.
func (g *Guard) RequireAnyPermission(perms ...domain.Permission) echo.MiddlewareFunc {
	return g.require(policy.AnyOf(perms...))
}

// RequireAllPermissions needs every one of perms. An empty list only needs a
// valid role.
func (g *Guard) RequireAllPermissions(perms ...domain.Permission) echo.MiddlewareFunc {
	return g.require(policy.AllOf(perms...))
}

// RequireRole restricts the request to the listed roles.
func (g *Guard) RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return g.require(policy.RoleIn(roles...))
}

func (g *Guard) require(req policy.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := g.check(c, req); err != nil {
				return err
			}
			if c.Response().Committed {
				return nil
			}
			return next(c)
		}
	}
}

// Enforce guards every route with the requirement registered for it in table.
// Requests that resolve to no registered route continue so the router can
// answer 404 or 405. A registered route without an entry is refused.
func (g *Guard) Enforce(table *policy.Table) echo.MiddlewareFunc {
	var (
		once   sync.Once
		routes map[string]struct{}
	)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method, route := c.Request().Method, c.Path()
			req, ok := table.Lookup(method, route)
			if !ok {
				once.Do(func() { routes = registeredRoutes(c.Echo()) })
				if _, registered := routes[method+" "+route]; !registered {
					return next(c)
				}
				return g.denyUnmapped(c)
			}
			if err := g.check(c, req); err != nil {
				return err
			}
			if c.Response().Committed {
				return nil
			}
			return next(c)
		}
	}
}

// check evaluates req for the current request. It writes the denial response
// itself, so callers must stop when the response is committed.
func (g *Guard) check(c echo.Context, req policy.Requirement) error {
	if !req.NeedsAuthentication() {
		return nil
	}

	claims, ok := ClaimsFrom(c)
	if !ok {
		var err error
		claims, err = g.auth.Authenticate(c)
		if errors.Is(err, errRevocationCheck) {
			g.log.Error().Err(err).Str("path", c.Path()).Msg("cannot verify session")
			return authError(err)
		}
		if err != nil {
			return g.deny(c, Claims{}, req, domain.ReasonUnauthenticated, http.StatusUnauthorized, denialResponse{
				Error:   "Authentication required",
				Message: "Vous devez être connecté pour accéder à cette ressource",
			})
		}
	}

	if req.Mode == policy.ModeAuthenticated {
		return nil
	}

	if claims.Role == "" {
		return g.deny(c, claims, req, domain.ReasonInvalidRole, http.StatusForbidden, denialResponse{
			Error:   "Invalid user role",
			Message: "Votre rôle utilisateur est invalide",
		})
	}

	if req.Allows(claims.Role) {
		metrics.AuthzDecisionsTotal.WithLabelValues(req.String(), metrics.ResultAllowed).Inc()
		return nil
	}
	metrics.AuthzDecisionsTotal.WithLabelValues(req.String(), metrics.ResultDenied).Inc()

	switch {
	case req.Mode == policy.ModeRoles:
		return g.deny(c, claims, req, domain.ReasonRoleDenied, http.StatusForbidden, denialResponse{
			Error:         "Access denied",
			Message:       "Cette action est réservée aux rôles: " + joinRoles(req.Roles),
			RequiredRoles: req.Roles,
			CurrentRole:   claims.Role,
		})
	case req.Mode == policy.ModeAnyOf:
		return g.deny(c, claims, req, domain.ReasonPermissionDenied, http.StatusForbidden, denialResponse{
			Error:               "Permission denied",
			Message:             "Vous n'avez aucune des permissions requises",
			RequiredPermissions: req.Permissions,
			CurrentRole:         claims.Role,
		})
	case len(req.Permissions) == 1:
		return g.deny(c, claims, req, domain.ReasonPermissionDenied, http.StatusForbidden, denialResponse{
			Error:              "Permission denied",
			Message:            fmt.Sprintf("Vous n'avez pas la permission requise: %s", req.Permissions[0]),
			RequiredPermission: req.Permissions[0],
			CurrentRole:        claims.Role,
		})
	default:
		return g.deny(c, claims, req, domain.ReasonPermissionDenied, http.StatusForbidden, denialResponse{
			Error:               "Permission denied",
			Message:             "Vous n'avez pas toutes les permissions requises",
			RequiredPermissions: req.Permissions,
			CurrentRole:         claims.Role,
		})
	}
}

func (g *Guard) denyUnmapped(c echo.Context) error {
	claims, _ := ClaimsFrom(c)
	return g.deny(c, claims, policy.Requirement{}, domain.ReasonUnmappedRoute, http.StatusForbidden, denialResponse{
		Error:   "Access denied",
		Message: "Aucune règle d'accès n'est définie pour cette route",
	})
}

func (g *Guard) deny(c echo.Context, claims Claims, req policy.Requirement, reason domain.DenialReason, status int, body denialResponse) error {
	metrics.AuthzDenialsTotal.WithLabelValues(string(reason)).Inc()

	event := domain.SecurityEvent{
		ID:                  uuid.NewString(),
		TenantID:            claims.TenantID,
		UserID:              claims.UserID,
		Role:                claims.Role,
		Method:              c.Request().Method,
		Path:                c.Request().URL.Path,
		Reason:              reason,
		RequiredPermissions: req.Permissions,
		RequiredRoles:       req.Roles,
		OccurredAt:          time.Now().UTC(),
	}
	if g.recorder != nil {
		g.recorder.Record(event)
	}

	logEvent := g.log.Debug()
	if g.production {
		logEvent = g.log.Warn()
	}
	logEvent.
		Str("user_id", claims.UserID).
		Str("tenant_id", claims.TenantID).
		Str("role", string(claims.Role)).
		Str("method", event.Method).
		Str("path", event.Path).
		Str("reason", string(reason)).
		Str("requirement", req.String()).
		Msg("unauthorized access attempt")

	return c.JSON(status, body)
}

// registeredRoutes indexes the router's routes, leaving out the catch-all
// not-found routes Echo adds for groups.
func registeredRoutes(e *echo.Echo) map[string]struct{} {
	out := make(map[string]struct{})
	for _, r := range e.Routes() {
		if r.Method == echo.RouteNotFound {
			continue
		}
		out[r.Method+" "+r.Path] = struct{}{}
	}
	return out
}

func joinRoles(roles []domain.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/garagecrm/access-api/internal/core/access"
	"github.com/garagecrm/access-api/internal/core/domain"
	"github.com/garagecrm/access-api/internal/core/policy"
)

// AccessHandler exposes the permission matrix to the UI and to other
// services that need an authorisation decision.
type AccessHandler struct {
	routes *policy.Table
}

// NewAccessHandler answers route checks against routes, normally
// policy.CRMRoutes().
func NewAccessHandler(routes *policy.Table) *AccessHandler {
	return &AccessHandler{routes: routes}
}

func describeRole(role domain.Role) roleResponse {
	return roleResponse{
		Role:        role,
		Label:       access.RoleLabel(role),
		Description: access.RoleDescription(role),
		Permissions: access.RolePermissions(role),
	}
}

// Me returns the caller's identity together with everything its role grants.
//
// @Summary      Current member and its permissions
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [get]
func (h *AccessHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{
		UserID:       claims.UserID,
		TenantID:     claims.TenantID,
		Email:        claims.Email,
		roleResponse: describeRole(claims.Role),
	})
}

// Roles lists every role with its label, description and permissions.
//
// @Summary      List roles
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  rolesResponse
// @Router       /v1/roles [get]
func (h *AccessHandler) Roles(c echo.Context) error {
	all := domain.Roles()
	out := make([]roleResponse, 0, len(all))
	for _, role := range all {
		out = append(out, describeRole(role))
	}
	return c.JSON(http.StatusOK, rolesResponse{Roles: out})
}

// Role describes a single role.
//
// @Summary      Describe a role
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "Role (e.g. MANAGER)"
// @Success      200   {object}  roleResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/roles/{role} [get]
func (h *AccessHandler) Role(c echo.Context) error {
	role, ok := domain.ParseRole(c.Param("role"))
	if !ok {
		return domain.ErrRoleNotFound
	}
	return c.JSON(http.StatusOK, describeRole(role))
}

// Permissions returns the permission vocabulary, flat and grouped.
//
// @Summary      Permission vocabulary
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  permissionsResponse
// @Router       /v1/permissions [get]
func (h *AccessHandler) Permissions(c echo.Context) error {
	return c.JSON(http.StatusOK, permissionsResponse{
		Permissions: domain.AllPermissions(),
		Groups:      domain.PermissionGroups(),
	})
}

// Check evaluates a set of permissions for the caller's role.
//
// @Summary      Check permissions
// @Tags         access
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      checkRequest  true  "Permissions to check; mode is any or all (default all)"
// @Success      200   {object}  checkResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/authz/check [post]
func (h *AccessHandler) Check(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	perms := make([]domain.Permission, len(req.Permissions))
	for i, p := range req.Permissions {
		perms[i] = domain.Permission(p)
	}

	mode := req.Mode
	if mode == "" {
		mode = "all"
	}
	allowed := access.HasAllPermissions(claims.Role, perms)
	if mode == "any" {
		allowed = access.HasAnyPermission(claims.Role, perms)
	}

	return c.JSON(http.StatusOK, checkResponse{
		Role:    claims.Role,
		Mode:    mode,
		Allowed: allowed,
		Missing: access.MissingPermissions(claims.Role, perms),
	})
}

// CheckRoute tells whether a role may call a CRM API route.
//
// @Summary      Check a CRM route
// @Tags         access
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      routeCheckRequest  true  "Concrete method and path, e.g. DELETE /api/contacts/42"
// @Success      200   {object}  routeCheckResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/authz/routes/check [post]
func (h *AccessHandler) CheckRoute(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req routeCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	role := claims.Role
	if req.Role != "" {
		role = domain.Role(req.Role)
	}

	entry, ok := h.routes.Match(strings.ToUpper(req.Method), req.Path)
	if !ok {
		return c.JSON(http.StatusOK, routeCheckResponse{Known: false, Role: role, Allowed: false})
	}
	return c.JSON(http.StatusOK, routeCheckResponse{
		Known:       true,
		Route:       entry.Method + " " + entry.Path,
		Role:        role,
		Allowed:     entry.Requirement.Allows(role),
		Requirement: entry.Requirement.String(),
	})
}

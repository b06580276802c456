package handler

import (
	"github.com/garagecrm/access-api/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type roleResponse struct {
	Role        domain.Role         `json:"role"`
	Label       string              `json:"label"`
	Description string              `json:"description"`
	Permissions []domain.Permission `json:"permissions"`
}

type meResponse struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	roleResponse
}

type rolesResponse struct {
	Roles []roleResponse `json:"roles"`
}

type permissionsResponse struct {
	Permissions []domain.Permission      `json:"permissions"`
	Groups      []domain.PermissionGroup `json:"groups"`
}

type checkRequest struct {
	Permissions []string `json:"permissions" validate:"required,min=1,dive,permission"`
	Mode        string   `json:"mode"        validate:"omitempty,oneof=any all"`
}

type checkResponse struct {
	Role    domain.Role         `json:"role"`
	Mode    string              `json:"mode"`
	Allowed bool                `json:"allowed"`
	Missing []domain.Permission `json:"missing"`
}

type routeCheckRequest struct {
	Method string `json:"method" validate:"required"`
	Path   string `json:"path"   validate:"required"`
	// Role defaults to the caller's own role.
	Role string `json:"role,omitempty"`
}

type routeCheckResponse struct {
	Known       bool        `json:"known"`
	Route       string      `json:"route,omitempty"`
	Role        domain.Role `json:"role"`
	Allowed     bool        `json:"allowed"`
	Requirement string      `json:"requirement,omitempty"`
}

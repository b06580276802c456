package domain

import "time"

// DenialReason classifies why a guarded request was refused.
type DenialReason string

const (
	ReasonUnauthenticated  DenialReason = "unauthenticated"
	ReasonInvalidRole      DenialReason = "invalid_role"
	ReasonPermissionDenied DenialReason = "permission_denied"
	ReasonRoleDenied       DenialReason = "role_denied"
	ReasonUnmappedRoute    DenialReason = "unmapped_route"
)

// SecurityEvent records a refused authorisation attempt for the audit trail.
type SecurityEvent struct {
	ID                  string       `json:"id"`
	TenantID            string       `json:"tenant_id,omitempty"`
	UserID              string       `json:"user_id,omitempty"`
	Role                Role         `json:"role,omitempty"`
	Method              string       `json:"method"`
	Path                string       `json:"path"`
	Reason              DenialReason `json:"reason"`
	RequiredPermissions []Permission `json:"required_permissions,omitempty"`
	RequiredRoles       []Role       `json:"required_roles,omitempty"`
	OccurredAt          time.Time    `json:"occurred_at"`
}

package ports

import (
	"context"

	"github.com/garagecrm/access-api/internal/core/domain"
)

// Actor is the authenticated member performing a team operation.
type Actor struct {
	UserID   string
	TenantID string
	Role     domain.Role
}

type InviteInput struct {
	Actor Actor
	Name  string
	Email string
	Role  string
}

type ChangeRoleInput struct {
	Actor    Actor
	MemberID string
	Role     string
}

type TeamService interface {
	ListMembers(ctx context.Context, tenantID string) ([]*domain.User, error)
	GetMember(ctx context.Context, tenantID, id string) (*domain.User, error)
	// Invite returns the invited member; its InviteToken is set.
	Invite(ctx context.Context, in InviteInput) (*domain.User, error)
	ChangeRole(ctx context.Context, in ChangeRoleInput) (*domain.User, error)
	RemoveMember(ctx context.Context, actor Actor, memberID string) error
}

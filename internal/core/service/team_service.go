package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garagecrm/access-api/internal/core/domain"
	"github.com/garagecrm/access-api/internal/core/ports"
)

// TeamService manages tenant membership: invitations, role changes and
// removals. Route guards decide whether the actor may use an operation at all;
// TeamService enforces the rules that depend on who is being acted upon.
type TeamService struct {
	repo ports.UserRepository
	now  func() time.Time
}

func NewTeamService(repo ports.UserRepository) *TeamService {
	return &TeamService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *TeamService) ListMembers(ctx context.Context, tenantID string) ([]*domain.User, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *TeamService) GetMember(ctx context.Context, tenantID, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, tenantID, id)
}

func (s *TeamService) Invite(ctx context.Context, in ports.InviteInput) (*domain.User, error) {
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, domain.ErrInvalidRole
	}
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, domain.ErrInvalidMember
	}
	if !canAssign(in.Actor.Role, role) {
		return nil, domain.ErrForbidden
	}

	now := s.now()
	return s.repo.Create(ctx, &domain.User{
		TenantID:    in.Actor.TenantID,
		Name:        name,
		Email:       email,
		Role:        role,
		Status:      domain.MemberInvited,
		InviteToken: uuid.NewString(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *TeamService) ChangeRole(ctx context.Context, in ports.ChangeRoleInput) (*domain.User, error) {
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, domain.ErrInvalidRole
	}
	// SUPER_ADMIN is provisioned outside the team endpoints and never granted here.
	if role == domain.RoleSuperAdmin {
		return nil, domain.ErrForbidden
	}
	if in.MemberID == in.Actor.UserID && in.Actor.Role != domain.RoleSuperAdmin {
		return nil, domain.ErrSelfModification
	}

	member, err := s.repo.FindByID(ctx, in.Actor.TenantID, in.MemberID)
	if err != nil {
		return nil, err
	}
	if !canAssign(in.Actor.Role, member.Role) || !canAssign(in.Actor.Role, role) {
		return nil, domain.ErrForbidden
	}
	if member.Role == role {
		return member, nil
	}

	return s.repo.UpdateRole(ctx, in.Actor.TenantID, in.MemberID, role)
}

func (s *TeamService) RemoveMember(ctx context.Context, actor ports.Actor, memberID string) error {
	if memberID == actor.UserID {
		return domain.ErrSelfModification
	}

	member, err := s.repo.FindByID(ctx, actor.TenantID, memberID)
	if err != nil {
		return err
	}
	if !canAssign(actor.Role, member.Role) {
		return domain.ErrForbidden
	}

	return s.repo.Delete(ctx, actor.TenantID, memberID)
}

// canAssign reports whether actor may hand out, take away or otherwise act on
// the target role. SUPER_ADMIN is reserved to SUPER_ADMIN; OWNER additionally
// to OWNER.
func canAssign(actor, target domain.Role) bool {
	switch target {
	case domain.RoleSuperAdmin:
		return actor == domain.RoleSuperAdmin
	case domain.RoleOwner:
		return actor == domain.RoleSuperAdmin || actor == domain.RoleOwner
	default:
		return true
	}
}

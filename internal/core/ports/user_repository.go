package ports

import (
	"context"

	"github.com/garagecrm/access-api/internal/core/domain"
)

// UserRepository defines persistence for team members.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, tenantID, id string) (*domain.User, error)
	FindByInviteToken(ctx context.Context, token string) (*domain.User, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.User, error)
	UpdateRole(ctx context.Context, tenantID, id string, role domain.Role) (*domain.User, error)
	// Activate sets the password of an invited member and clears its invite token.
	Activate(ctx context.Context, id, passwordHash string) (*domain.User, error)
	Delete(ctx context.Context, tenantID, id string) error
}

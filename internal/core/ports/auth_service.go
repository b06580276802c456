package ports

import (
	"context"
	"time"

	"github.com/garagecrm/access-api/internal/core/domain"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthService interface {
	// Register creates a new tenant whose first member is its OWNER.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	AcceptInvitation(ctx context.Context, token, password string) (*domain.User, error)
}

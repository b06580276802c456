package ports

import (
	"context"

	"github.com/garagecrm/access-api/internal/core/domain"
)

// SecurityEventRepository persists denied authorisation attempts.
type SecurityEventRepository interface {
	Insert(ctx context.Context, event *domain.SecurityEvent) error
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]*domain.SecurityEvent, error)
}

// SecurityRecorder accepts denial events without blocking the request path.
type SecurityRecorder interface {
	Record(event domain.SecurityEvent)
}

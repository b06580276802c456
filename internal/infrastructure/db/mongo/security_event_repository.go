package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/garagecrm/access-api/internal/core/domain"
	"github.com/garagecrm/access-api/internal/core/ports"
)

const securityEventsCollection = "security_events"

// SecurityEventRepository implements ports.SecurityEventRepository using MongoDB.
type SecurityEventRepository struct {
	coll *mongo.Collection
}

var _ ports.SecurityEventRepository = (*SecurityEventRepository)(nil)

func NewSecurityEventRepository(db *mongo.Database) *SecurityEventRepository {
	return &SecurityEventRepository{coll: db.Collection(securityEventsCollection)}
}

// EnsureIndexes creates the per-tenant listing index on the security_events
// collection.
func (r *SecurityEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "occurred_at", Value: -1}},
	})
	return err
}

type mongoSecurityEvent struct {
	ID                  string    `bson:"_id"`
	TenantID            string    `bson:"tenant_id,omitempty"`
	UserID              string    `bson:"user_id,omitempty"`
	Role                string    `bson:"role,omitempty"`
	Method              string    `bson:"method"`
	Path                string    `bson:"path"`
	Reason              string    `bson:"reason"`
	RequiredPermissions []string  `bson:"required_permissions,omitempty"`
	RequiredRoles       []string  `bson:"required_roles,omitempty"`
	OccurredAt          time.Time `bson:"occurred_at"`
}

// Insert persists one denial. Events are keyed by their uuid so a retried
// insert of the same event is rejected rather than duplicated.
func (r *SecurityEventRepository) Insert(ctx context.Context, event *domain.SecurityEvent) error {
	doc := mongoSecurityEvent{
		ID:         event.ID,
		TenantID:   event.TenantID,
		UserID:     event.UserID,
		Role:       string(event.Role),
		Method:     event.Method,
		Path:       event.Path,
		Reason:     string(event.Reason),
		OccurredAt: event.OccurredAt.UTC(),
	}
	for _, p := range event.RequiredPermissions {
		doc.RequiredPermissions = append(doc.RequiredPermissions, string(p))
	}
	for _, role := range event.RequiredRoles {
		doc.RequiredRoles = append(doc.RequiredRoles, string(role))
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert security event: %w", err)
	}
	return nil
}

// ListByTenant returns the most recent denials of a tenant, newest first.
func (r *SecurityEventRepository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*domain.SecurityEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list security events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoSecurityEvent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode security events: %w", err)
	}

	events := make([]*domain.SecurityEvent, 0, len(docs))
	for _, d := range docs {
		ev := &domain.SecurityEvent{
			ID:         d.ID,
			TenantID:   d.TenantID,
			UserID:     d.UserID,
			Role:       domain.Role(d.Role),
			Method:     d.Method,
			Path:       d.Path,
			Reason:     domain.DenialReason(d.Reason),
			OccurredAt: d.OccurredAt.UTC(),
		}
		for _, p := range d.RequiredPermissions {
			ev.RequiredPermissions = append(ev.RequiredPermissions, domain.Permission(p))
		}
		for _, role := range d.RequiredRoles {
			ev.RequiredRoles = append(ev.RequiredRoles, domain.Role(role))
		}
		events = append(events, ev)
	}
	return events, nil
}

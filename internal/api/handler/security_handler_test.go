package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/garagecrm/access-api/internal/core/domain"
)

type stubEventRepo struct {
	tenantID string
	limit    int
}

func (r *stubEventRepo) Insert(context.Context, *domain.SecurityEvent) error { return nil }

func (r *stubEventRepo) ListByTenant(_ context.Context, tenantID string, limit int) ([]*domain.SecurityEvent, error) {
	r.tenantID, r.limit = tenantID, limit
	return []*domain.SecurityEvent{{ID: "ev-1", TenantID: tenantID, Reason: domain.ReasonPermissionDenied}}, nil
}

func TestSecurityHandler_Events(t *testing.T) {
	owner := claimsFor("u1", domain.RoleOwner)

	tests := []struct {
		query     string
		wantCode  int
		wantLimit int
	}{
		{"", http.StatusOK, 50},
		{"?limit=10", http.StatusOK, 10},
		{"?limit=10000", http.StatusOK, 500},
		{"?limit=0", http.StatusBadRequest, 0},
		{"?limit=abc", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		repo := &stubEventRepo{}
		rec, err := call(t, NewSecurityHandler(repo).Events, jsonRequest(http.MethodGet, "/v1/security/events"+tt.query, nil), owner)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.query, err)
		}
		if rec.Code != tt.wantCode || repo.limit != tt.wantLimit {
			t.Fatalf("%q: got %d limit=%d, want %d limit=%d", tt.query, rec.Code, repo.limit, tt.wantCode, tt.wantLimit)
		}
		if tt.wantCode != http.StatusOK {
			continue
		}
		if repo.tenantID != "tenant_1" {
			t.Fatalf("listed tenant %q", repo.tenantID)
		}
		var resp securityEventsResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if len(resp.Events) != 1 || resp.Events[0].Reason != domain.ReasonPermissionDenied {
			t.Fatalf("unexpected events: %+v", resp.Events)
		}
	}
}

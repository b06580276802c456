package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/garagecrm/access-api/internal/core/domain"
	"github.com/garagecrm/access-api/internal/core/policy"
)

func newAccessHandler() *AccessHandler {
	return NewAccessHandler(policy.CRMRoutes())
}

func TestAccessHandler_Me(t *testing.T) {
	rec, err := call(t, newAccessHandler().Me, jsonRequest(http.MethodGet, "/v1/me", nil), claimsFor("u1", domain.RoleAccountant))
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", rec.Code, err)
	}

	var resp meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.UserID != "u1" || resp.TenantID != "tenant_1" || resp.Role != domain.RoleAccountant || resp.Label != "Comptable" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Permissions) == 0 {
		t.Fatalf("expected the accountant's permissions")
	}
}

func TestAccessHandler_Roles(t *testing.T) {
	rec, err := call(t, newAccessHandler().Roles, jsonRequest(http.MethodGet, "/v1/roles", nil), claimsFor("u1", domain.RoleUser))
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", rec.Code, err)
	}
	var resp rolesResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Roles) != 5 || resp.Roles[0].Role != domain.RoleSuperAdmin {
		t.Fatalf("unexpected roles: %+v", resp.Roles)
	}
}

func TestAccessHandler_Role(t *testing.T) {
	h := newAccessHandler()

	rec, err := call(t, h.Role, jsonRequest(http.MethodGet, "/", nil), nil, "role", "MANAGER")
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", rec.Code, err)
	}

	if _, err := call(t, h.Role, jsonRequest(http.MethodGet, "/", nil), nil, "role", "manager"); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("role names are case-sensitive, expected ErrRoleNotFound, got %v", err)
	}
}

func TestAccessHandler_Permissions(t *testing.T) {
	rec, err := call(t, newAccessHandler().Permissions, jsonRequest(http.MethodGet, "/", nil), nil)
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", rec.Code, err)
	}
	var resp permissionsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Permissions) != len(domain.AllPermissions()) || len(resp.Groups) == 0 {
		t.Fatalf("unexpected vocabulary: %d permissions, %d groups", len(resp.Permissions), len(resp.Groups))
	}
}

func TestAccessHandler_Check(t *testing.T) {
	h := newAccessHandler()
	manager := claimsFor("u2", domain.RoleManager)

	tests := []struct {
		name        string
		body        string
		wantAllowed bool
		wantMode    string
		wantMissing []domain.Permission
	}{
		{"all granted", `{"permissions":["view_contacts","edit_contacts"]}`, true, "all", []domain.Permission{}},
		{"one missing", `{"permissions":["view_contacts","delete_bank_accounts"]}`, false, "all", []domain.Permission{domain.PermDeleteBankAccounts}},
		{"any granted", `{"permissions":["delete_bank_accounts","view_contacts"],"mode":"any"}`, true, "any", []domain.Permission{domain.PermDeleteBankAccounts}},
		{"any none", `{"permissions":["delete_bank_accounts","edit_company"],"mode":"any"}`, false, "any", []domain.Permission{domain.PermDeleteBankAccounts, domain.PermEditCompany}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := call(t, h.Check, jsonRequest(http.MethodPost, "/v1/authz/check", strings.NewReader(tt.body)), manager)
			if err != nil || rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d %v", rec.Code, err)
			}
			var resp checkResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Allowed != tt.wantAllowed || resp.Mode != tt.wantMode || resp.Role != domain.RoleManager {
				t.Fatalf("unexpected response: %+v", resp)
			}
			if len(resp.Missing) != len(tt.wantMissing) {
				t.Fatalf("missing = %v, want %v", resp.Missing, tt.wantMissing)
			}
			for i := range tt.wantMissing {
				if resp.Missing[i] != tt.wantMissing[i] {
					t.Fatalf("missing = %v, want %v", resp.Missing, tt.wantMissing)
				}
			}
		})
	}
}

func TestAccessHandler_Check_RejectsBadRequests(t *testing.T) {
	h := newAccessHandler()
	user := claimsFor("u3", domain.RoleUser)

	for _, body := range []string{
		`{"permissions":[]}`,
		`{"permissions":["fly_planes"]}`,
		`{"permissions":["view_contacts"],"mode":"most"}`,
	} {
		rec, _ := call(t, h.Check, jsonRequest(http.MethodPost, "/v1/authz/check", strings.NewReader(body)), user)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %d", body, rec.Code)
		}
	}

	rec, _ := call(t, h.Check, jsonRequest(http.MethodPost, "/v1/authz/check", strings.NewReader(`{"permissions":["fly_planes"]}`)), user)
	if !strings.Contains(rec.Body.String(), "unknown permission") {
		t.Fatalf("expected an unknown permission message, got %s", rec.Body.String())
	}
}

func TestAccessHandler_CheckRoute(t *testing.T) {
	h := newAccessHandler()
	accountant := claimsFor("u4", domain.RoleAccountant)

	tests := []struct {
		name        string
		body        string
		wantKnown   bool
		wantAllowed bool
		wantRoute   string
	}{
		{"own role allowed", `{"method":"post","path":"/api/accounting/expenses/9/approve"}`, true, true, "POST /api/accounting/expenses/:id/approve"},
		{"own role denied", `{"method":"DELETE","path":"/api/contacts/42"}`, true, false, "DELETE /api/contacts/:id"},
		{"other role", `{"method":"DELETE","path":"/api/contacts/42","role":"OWNER"}`, true, true, "DELETE /api/contacts/:id"},
		{"unknown role", `{"method":"GET","path":"/api/contacts","role":"GHOST"}`, true, false, "GET /api/contacts"},
		{"public route", `{"method":"POST","path":"/api/webhooks/stripe"}`, true, true, "POST /api/webhooks/stripe"},
		{"unknown route", `{"method":"GET","path":"/api/spaceships"}`, false, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := call(t, h.CheckRoute, jsonRequest(http.MethodPost, "/v1/authz/routes/check", strings.NewReader(tt.body)), accountant)
			if err != nil || rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d %v", rec.Code, err)
			}
			var resp routeCheckResponse
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp.Known != tt.wantKnown || resp.Allowed != tt.wantAllowed || resp.Route != tt.wantRoute {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/garagecrm/access-api/internal/core/domain"
	"github.com/garagecrm/access-api/internal/core/policy"
	"github.com/garagecrm/access-api/internal/core/ports"
)

type stubRecorder struct {
	mu     sync.Mutex
	events []domain.SecurityEvent
}

func (r *stubRecorder) Record(event domain.SecurityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func newTestGuard(rec *stubRecorder) *Guard {
	var recorder ports.SecurityRecorder
	if rec != nil {
		recorder = rec
	}
	return NewGuard(NewAuthenticator("secret", &stubTokenStore{}), recorder, zerolog.Nop(), false)
}

func serveGuarded(t *testing.T, mw echo.MiddlewareFunc, token string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func decodeDenial(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return body
}

func TestRequirePermission_Allows(t *testing.T) {
	rec, called := serveGuarded(t, newTestGuard(nil).RequirePermission(domain.PermEditContacts), tokenFor(t, "mia", domain.RoleManager))
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequirePermission_Forbids(t *testing.T) {
	events := &stubRecorder{}
	rec, called := serveGuarded(t, newTestGuard(events).RequirePermission(domain.PermDeleteBankAccounts), tokenFor(t, "mia", domain.RoleManager))
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	body := decodeDenial(t, rec)
	if body["error"] != "Permission denied" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
	if body["message"] != "Vous n'avez pas la permission requise: delete_bank_accounts" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	if body["required_permission"] != "delete_bank_accounts" || body["current_role"] != "MANAGER" {
		t.Fatalf("unexpected denial details: %v", body)
	}

	if len(events.events) != 1 {
		t.Fatalf("expected 1 security event, got %d", len(events.events))
	}
	ev := events.events[0]
	if ev.Reason != domain.ReasonPermissionDenied || ev.UserID != "mia" || ev.TenantID != "tenant_1" || ev.Path != "/resource" {
		t.Fatalf("unexpected security event: %+v", ev)
	}
	if ev.ID == "" || ev.OccurredAt.IsZero() {
		t.Fatalf("security event missing id or timestamp: %+v", ev)
	}
}

func TestGuard_Unauthenticated(t *testing.T) {
	events := &stubRecorder{}
	rec, called := serveGuarded(t, newTestGuard(events).RequireAuth(), "")
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := decodeDenial(t, rec)
	if body["error"] != "Authentication required" || body["message"] != "Vous devez être connecté pour accéder à cette ressource" {
		t.Fatalf("unexpected body: %v", body)
	}
	if len(events.events) != 1 || events.events[0].Reason != domain.ReasonUnauthenticated {
		t.Fatalf("expected one unauthenticated event, got %+v", events.events)
	}
}

func TestGuard_EmptyRole(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "nora", "tenant_id": "tenant_1"})
	rec, called := serveGuarded(t, newTestGuard(nil).RequirePermission(domain.PermViewDashboard), token)
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if body := decodeDenial(t, rec); body["error"] != "Invalid user role" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGuard_RequireAuthAcceptsAnyRole(t *testing.T) {
	rec, called := serveGuarded(t, newTestGuard(nil).RequireAuth(), tokenFor(t, "olga", "GHOST"))
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestGuard_UnknownRoleIsDenied(t *testing.T) {
	rec, called := serveGuarded(t, newTestGuard(nil).RequirePermission(domain.PermViewDashboard), tokenFor(t, "olga", "GHOST"))
	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAnyPermission(t *testing.T) {
	g := newTestGuard(nil)
	accountant := tokenFor(t, "paul", domain.RoleAccountant)

	if rec, called := serveGuarded(t, g.RequireAnyPermission(domain.PermDeleteContacts, domain.PermViewAccounting), accountant); !called {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}

	rec, called := serveGuarded(t, g.RequireAnyPermission(domain.PermDeleteContacts, domain.PermViewTeam), accountant)
	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	body := decodeDenial(t, rec)
	if body["message"] != "Vous n'avez aucune des permissions requises" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	if perms, _ := body["required_permissions"].([]any); len(perms) != 2 {
		t.Fatalf("expected required_permissions, got %v", body)
	}

	if _, called := serveGuarded(t, g.RequireAnyPermission(), tokenFor(t, "root", domain.RoleSuperAdmin)); called {
		t.Fatalf("empty any-of list must deny")
	}
}

func TestRequireAllPermissions(t *testing.T) {
	g := newTestGuard(nil)
	user := tokenFor(t, "quinn", domain.RoleUser)

	if _, called := serveGuarded(t, g.RequireAllPermissions(domain.PermViewTasks, domain.PermCreateTasks), user); !called {
		t.Fatalf("expected pass-through")
	}

	rec, called := serveGuarded(t, g.RequireAllPermissions(domain.PermViewTasks, domain.PermDeleteTasks), user)
	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if body := decodeDenial(t, rec); body["message"] != "Vous n'avez pas toutes les permissions requises" {
		t.Fatalf("unexpected message: %v", body["message"])
	}

	if _, called := serveGuarded(t, g.RequireAllPermissions(), user); !called {
		t.Fatalf("empty all-of list must allow")
	}
}

func TestRequireRole(t *testing.T) {
	events := &stubRecorder{}
	g := newTestGuard(events)
	mw := g.RequireRole(domain.RoleOwner, domain.RoleSuperAdmin)

	if _, called := serveGuarded(t, mw, tokenFor(t, "rita", domain.RoleOwner)); !called {
		t.Fatalf("expected pass-through for OWNER")
	}

	rec, called := serveGuarded(t, mw, tokenFor(t, "sam", domain.RoleManager))
	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	body := decodeDenial(t, rec)
	if body["error"] != "Access denied" || body["message"] != "Cette action est réservée aux rôles: OWNER, SUPER_ADMIN" {
		t.Fatalf("unexpected body: %v", body)
	}
	if len(events.events) != 1 || events.events[0].Reason != domain.ReasonRoleDenied {
		t.Fatalf("expected one role_denied event, got %+v", events.events)
	}
}

func newEnforcedEcho(t *testing.T, events *stubRecorder) *echo.Echo {
	t.Helper()
	table, err := policy.NewTable([]policy.Entry{
		{Method: http.MethodGet, Path: "/health", Requirement: policy.Public()},
		{Method: http.MethodGet, Path: "/v1/team/members/:id", Requirement: policy.Permission(domain.PermViewTeam)},
		{Method: http.MethodDelete, Path: "/v1/team/members/:id", Requirement: policy.Permission(domain.PermRemoveMembers)},
	})
	if err != nil {
		t.Fatalf("build table: %v", err)
	}

	e := echo.New()
	e.Use(newTestGuard(events).Enforce(table))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/health", ok)
	e.GET("/v1/team/members/:id", ok)
	e.DELETE("/v1/team/members/:id", ok)
	e.GET("/v1/unlisted", ok)
	return e
}

func TestEnforce(t *testing.T) {
	events := &stubRecorder{}
	e := newEnforcedEcho(t, events)
	manager := tokenFor(t, "tom", domain.RoleManager)
	owner := tokenFor(t, "uma", domain.RoleOwner)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"public route", http.MethodGet, "/health", "", http.StatusOK},
		{"protected without token", http.MethodGet, "/v1/team/members/1", "", http.StatusUnauthorized},
		{"protected allowed", http.MethodGet, "/v1/team/members/1", manager, http.StatusOK},
		{"protected denied", http.MethodDelete, "/v1/team/members/1", manager, http.StatusForbidden},
		{"protected allowed for owner", http.MethodDelete, "/v1/team/members/1", owner, http.StatusOK},
		{"registered route without policy", http.MethodGet, "/v1/unlisted", owner, http.StatusForbidden},
		{"unknown path", http.MethodGet, "/v1/nowhere", "", http.StatusNotFound},
		{"wrong method", http.MethodPost, "/v1/team/members/1", owner, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d (%s)", tt.want, rec.Code, rec.Body.String())
			}
		})
	}

	var unmapped int
	for _, ev := range events.events {
		if ev.Reason == domain.ReasonUnmappedRoute {
			unmapped++
		}
	}
	if unmapped != 1 {
		t.Fatalf("expected 1 unmapped_route event, got %d", unmapped)
	}
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/garagecrm/access-api/internal/api"
	"github.com/garagecrm/access-api/internal/api/middleware"
	"github.com/garagecrm/access-api/internal/core/access"
	"github.com/garagecrm/access-api/internal/core/domain"
	"github.com/garagecrm/access-api/internal/core/policy"
)

type roleRow struct {
	Role        domain.Role         `json:"role" yaml:"role"`
	Label       string              `json:"label" yaml:"label"`
	Description string              `json:"description" yaml:"description"`
	Permissions []domain.Permission `json:"permissions" yaml:"permissions"`
}

func runMatrix(args []string, stdout io.Writer) error {
	fs := newFlagSet("matrix", stdout)
	roleName := fs.String("role", "", "only print this role")
	format := fs.StringP("format", "f", formatTable, "output format: table, json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	roles := domain.Roles()
	if *roleName != "" {
		role, ok := domain.ParseRole(*roleName)
		if !ok {
			return fmt.Errorf("unknown role %q", *roleName)
		}
		roles = []domain.Role{role}
	}

	rows := make([]roleRow, 0, len(roles))
	for _, r := range roles {
		rows = append(rows, roleRow{
			Role:        r,
			Label:       access.RoleLabel(r),
			Description: access.RoleDescription(r),
			Permissions: access.RolePermissions(r),
		})
	}

	return render(stdout, *format, rows, func(t *table) {
		t.header("ROLE", "LABEL", "PERMISSIONS", "DESCRIPTION")
		for _, row := range rows {
			t.row(string(row.Role), row.Label, fmt.Sprint(len(row.Permissions)), row.Description)
		}
	})
}

type checkResult struct {
	Role    domain.Role         `json:"role" yaml:"role"`
	Mode    string              `json:"mode" yaml:"mode"`
	Allowed bool                `json:"allowed" yaml:"allowed"`
	Missing []domain.Permission `json:"missing,omitempty" yaml:"missing,omitempty"`
}

func runCheck(args []string, stdout io.Writer) error {
	fs := newFlagSet("check", stdout)
	roleName := fs.StringP("role", "r", "", "role to check (required)")
	perms := fs.StringSliceP("perm", "p", nil, "permissions, comma separated or repeated (required)")
	mode := fs.String("mode", "all", "all: every permission is needed, any: one is enough")
	format := fs.StringP("format", "f", formatTable, "output format: table, json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *roleName == "" || len(*perms) == 0 {
		return fmt.Errorf("--role and --perm are required")
	}
	role, ok := domain.ParseRole(*roleName)
	if !ok {
		return fmt.Errorf("unknown role %q", *roleName)
	}
	wanted := make([]domain.Permission, 0, len(*perms))
	for _, s := range *perms {
		p, ok := domain.ParsePermission(s)
		if !ok {
			return fmt.Errorf("unknown permission %q", s)
		}
		wanted = append(wanted, p)
	}

	res := checkResult{Role: role, Mode: *mode}
	switch *mode {
	case "all":
		res.Allowed = access.HasAllPermissions(role, wanted)
		res.Missing = access.MissingPermissions(role, wanted)
	case "any":
		res.Allowed = access.HasAnyPermission(role, wanted)
		if !res.Allowed {
			res.Missing = wanted
		}
	default:
		return fmt.Errorf("unknown mode %q, want all or any", *mode)
	}

	err := render(stdout, *format, res, func(t *table) {
		verdict := "allowed"
		if !res.Allowed {
			verdict = "denied"
		}
		t.header("ROLE", "MODE", "RESULT", "MISSING")
		t.row(string(res.Role), res.Mode, verdict, joinPermissions(res.Missing))
	})
	if err != nil {
		return err
	}
	if !res.Allowed {
		return &exitError{code: 1}
	}
	return nil
}

type routeRow struct {
	Method      string `json:"method" yaml:"method"`
	Path        string `json:"path" yaml:"path"`
	Requirement string `json:"requirement" yaml:"requirement"`
}

func runRoutes(args []string, stdout io.Writer) error {
	fs := newFlagSet("routes", stdout)
	crm := fs.Bool("crm", false, "print the CRM application policy instead of this service's")
	format := fs.StringP("format", "f", formatTable, "output format: table, json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tbl := policy.ServiceRoutes()
	if *crm {
		tbl = policy.CRMRoutes()
	}

	entries := tbl.Entries()
	rows := make([]routeRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, routeRow{Method: e.Method, Path: e.Path, Requirement: e.Requirement.String()})
	}

	return render(stdout, *format, rows, func(t *table) {
		t.header("METHOD", "PATH", "REQUIREMENT")
		for _, r := range rows {
			t.row(r.Method, r.Path, r.Requirement)
		}
	})
}

func runScan(args []string, stdout io.Writer) error {
	fs := newFlagSet("scan", stdout)
	format := fs.StringP("format", "f", formatTable, "output format: table, json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	report := policy.Scan(api.Routes(offlineRouter()), policy.ServiceRoutes())

	err := render(stdout, *format, report, func(t *table) {
		t.header("METHOD", "PATH", "COVERAGE", "REQUIREMENT")
		for _, rs := range report.Routes {
			t.row(rs.Method, rs.Path, string(rs.Coverage), rs.Requirement)
		}
		for _, e := range report.Stale {
			t.row(e.Method, e.Path, "stale", e.Requirement.String())
		}
		t.footer(fmt.Sprintf("%d protected, %d public, %d missing, %d stale",
			report.Count(policy.CoverageProtected),
			report.Count(policy.CoveragePublic),
			report.Count(policy.CoverageMissing),
			len(report.Stale)))
	})
	if err != nil {
		return err
	}
	if !report.OK() {
		return &exitError{code: 1, msg: "route policy is incomplete"}
	}
	return nil
}

// offlineRouter builds the service router without any backing store. Only
// its route registrations are used.
func offlineRouter() *echo.Echo {
	guard := middleware.NewGuard(middleware.NewAuthenticator("offline", nil), nil, zerolog.Nop(), false)
	return api.NewRouter(api.Dependencies{
		Log:        zerolog.Nop(),
		Guard:      guard,
		Registerer: prometheus.NewRegistry(),
	})
}

func joinPermissions(perms []domain.Permission) string {
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}

package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/garagecrm/access-api/docs"
	"github.com/garagecrm/access-api/internal/api/handler"
	"github.com/garagecrm/access-api/internal/api/middleware"
	"github.com/garagecrm/access-api/internal/core/policy"
	"github.com/garagecrm/access-api/internal/core/ports"
	"github.com/garagecrm/access-api/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Log            zerolog.Logger
	Guard          *middleware.Guard
	AuthService    ports.AuthService
	TeamService    ports.TeamService
	SecurityEvents ports.SecurityEventRepository

	// ReadinessChecks are run by GET /health/ready, keyed by dependency name.
	ReadinessChecks map[string]handlers.Check

	// Registerer receives the HTTP request metrics. Defaults to the global
	// Prometheus registerer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Every route is guarded by policy.ServiceRoutes(); a route added here without
// a policy entry answers 403.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(httpMetrics(deps.Registerer))
	e.Use(deps.Guard.Enforce(policy.ServiceRoutes()))

	// --- Probes, metrics and docs (public) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(deps.ReadinessChecks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.POST("/auth/invitations/:token/accept", authHandler.AcceptInvitation)

	v1 := e.Group("/v1")

	// --- Access catalogue and decisions ---
	accessHandler := handler.NewAccessHandler(policy.CRMRoutes())
	v1.GET("/me", accessHandler.Me)
	v1.GET("/roles", accessHandler.Roles)
	v1.GET("/roles/:role", accessHandler.Role)
	v1.GET("/permissions", accessHandler.Permissions)
	v1.POST("/authz/check", accessHandler.Check)
	v1.POST("/authz/routes/check", accessHandler.CheckRoute)

	// --- Team management ---
	teamHandler := handler.NewTeamHandler(deps.TeamService)
	v1.GET("/team/members", teamHandler.List)
	v1.GET("/team/members/:id", teamHandler.Get)
	v1.PATCH("/team/members/:id", teamHandler.ChangeRole)
	v1.DELETE("/team/members/:id", teamHandler.Remove)
	v1.POST("/team/invitations", teamHandler.Invite)

	// --- Security audit ---
	securityHandler := handler.NewSecurityHandler(deps.SecurityEvents)
	v1.GET("/security/events", securityHandler.Events)

	return e
}

// Routes lists the routes registered on e in the form the policy scanner
// expects, skipping the catch-all not-found routes Echo adds for groups.
func Routes(e *echo.Echo) []policy.Route {
	var out []policy.Route
	for _, r := range e.Routes() {
		if r.Method == echo.RouteNotFound {
			continue
		}
		out = append(out, policy.Route{Method: r.Method, Path: r.Path})
	}
	return out
}

func httpMetrics(reg prometheus.Registerer) echo.MiddlewareFunc {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "access_http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

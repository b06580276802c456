package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/garagecrm/access-api/internal/core/ports"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// SecurityHandler exposes the tenant's audit trail of refused requests.
type SecurityHandler struct {
	events ports.SecurityEventRepository
}

func NewSecurityHandler(events ports.SecurityEventRepository) *SecurityHandler {
	return &SecurityHandler{events: events}
}

// Events lists the most recent denials recorded for the caller's tenant.
//
// @Summary      List security events
// @Tags         security
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of events (default 50, max 500)"
// @Success      200    {object}  securityEventsResponse
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /v1/security/events [get]
func (h *SecurityHandler) Events(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	limit := defaultEventLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, maxEventLimit)
	}

	events, err := h.events.ListByTenant(c.Request().Context(), actor.TenantID, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, securityEventsResponse{Events: events})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/garagecrm/access-api/internal/core/ports"
)

// TeamHandler serves tenant membership management.
type TeamHandler struct {
	service ports.TeamService
}

func NewTeamHandler(service ports.TeamService) *TeamHandler {
	return &TeamHandler{service: service}
}

// List returns the members of the caller's tenant.
//
// @Summary      List team members
// @Tags         team
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  membersResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/team/members [get]
func (h *TeamHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	members, err := h.service.ListMembers(c.Request().Context(), actor.TenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, membersResponse{Members: members, Total: len(members)})
}

// Get returns one member of the caller's tenant.
//
// @Summary      Get a team member
// @Tags         team
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Member id"
// @Success      200  {object}  domain.User
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/team/members/{id} [get]
func (h *TeamHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	member, err := h.service.GetMember(c.Request().Context(), actor.TenantID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

// ChangeRole assigns a new role to a member.
//
// @Summary      Change a member's role
// @Tags         team
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Member id"
// @Param        body  body      changeRoleRequest  true  "New role"
// @Success      200   {object}  domain.User
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/team/members/{id} [patch]
func (h *TeamHandler) ChangeRole(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req changeRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	member, err := h.service.ChangeRole(c.Request().Context(), ports.ChangeRoleInput{
		Actor:    actor,
		MemberID: c.Param("id"),
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

// Remove deletes a member from the caller's tenant.
//
// @Summary      Remove a team member
// @Tags         team
// @Security     BearerAuth
// @Param        id   path  string  true  "Member id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/team/members/{id} [delete]
func (h *TeamHandler) Remove(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.RemoveMember(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Invite creates a pending member with the given role.
//
// @Summary      Invite a team member
// @Tags         team
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      inviteRequest  true  "Invitee"
// @Success      201   {object}  invitationResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/team/invitations [post]
func (h *TeamHandler) Invite(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req inviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	member, err := h.service.Invite(c.Request().Context(), ports.InviteInput{
		Actor: actor,
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, invitationResponse{
		Member:    member,
		AcceptURL: "/auth/invitations/" + member.InviteToken + "/accept",
	})
}

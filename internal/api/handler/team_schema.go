package handler

import "github.com/garagecrm/access-api/internal/core/domain"

type inviteRequest struct {
	Name  string `json:"name"  validate:"required,max=255"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"  validate:"required"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type membersResponse struct {
	Members []*domain.User `json:"members"`
	Total   int            `json:"total"`
}

type invitationResponse struct {
	Member *domain.User `json:"member"`
	// AcceptURL is the path the invitee posts its password to.
	AcceptURL string `json:"accept_url"`
}

type securityEventsResponse struct {
	Events []*domain.SecurityEvent `json:"events"`
}

package domain

import "time"

// MemberStatus tracks whether a team member has completed sign-up.
type MemberStatus string

const (
	MemberActive  MemberStatus = "active"
	MemberInvited MemberStatus = "invited"
)

// User models a tenant member. Role is assigned at registration or invitation
// time and changed only through the team-management flow.
type User struct {
	ID           string       `json:"id"`
	TenantID     string       `json:"tenant_id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         Role         `json:"role"`
	Status       MemberStatus `json:"status"`
	InviteToken  string       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

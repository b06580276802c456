package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidMember      = errors.New("member name and email are required")
	ErrRoleNotFound       = errors.New("role not found")
	ErrSelfModification   = errors.New("members cannot change or remove themselves")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrTokenRevoked       = errors.New("token revoked")
)

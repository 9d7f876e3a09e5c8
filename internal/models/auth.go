package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest creates an email/password identity.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminModeRequest carries the shared admin password.
type AdminModeRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Session is the explicit identity handed to collaborators. The zero value is anonymous.
type Session struct {
	Authenticated bool     `json:"authenticated"`
	UserID        string   `json:"user_id,omitempty"`
	Email         string   `json:"email,omitempty"`
	FullName      string   `json:"full_name,omitempty"`
	Role          UserRole `json:"role,omitempty"`
}

// Key identifies the session for server-held state. Anonymous sessions have no key.
func (s Session) Key() string {
	if !s.Authenticated {
		return ""
	}
	return s.UserID
}

// Permissions gates roster mutations.
type Permissions struct {
	CanAdd    bool `json:"can_add"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

// AdminPermissions grants every mutation.
func AdminPermissions() Permissions {
	return Permissions{CanAdd: true, CanEdit: true, CanDelete: true}
}

// PermissionsFor derives capabilities from a session.
func PermissionsFor(s Session) Permissions {
	if !s.Authenticated {
		return Permissions{}
	}
	if s.Role == RoleAdmin {
		return AdminPermissions()
	}
	return Permissions{CanAdd: true}
}

package models

import "time"

type Role string

const (
	RoleNone       Role = ""
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Session is the gateway-side view of an authenticated console user.
// Token is the upstream bearer token; it is sealed before hitting
// durable storage and only ever held in clear in memory.
type Session struct {
	ID           string
	Token        string
	Role         Role
	UserID       string
	Name         string
	VerifiedRole Role
	CreatedAt    time.Time
}

// Empty reports whether the session carries no authenticated identity.
// An empty session has no token, no role and no user id; a non-empty
// one has all three.
func (s Session) Empty() bool {
	return s.Token == "" || s.UserID == "" || s.Role == RoleNone
}

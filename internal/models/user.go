package models

import "time"

// Role is the platform role attached to an identity.
type Role string

const (
	RoleHost   Role = "host"
	RoleAgency Role = "agency"
	RoleBrand  Role = "brand"
	RoleGifter Role = "gifter"
	RoleAdmin  Role = "admin"
)

// AssignableRoles are the roles a user may pick at registration.
// Admin is granted out-of-band, never self-assigned.
func AssignableRoles() []Role {
	return []Role{RoleHost, RoleAgency, RoleBrand, RoleGifter}
}

func (r Role) Valid() bool {
	switch r {
	case RoleHost, RoleAgency, RoleBrand, RoleGifter, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

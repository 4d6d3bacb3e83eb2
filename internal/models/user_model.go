package models

import "time"

// Role is the access level of a user profile.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleAuditor       Role = "auditor"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdministrator || r == RoleAuditor
}

// User is an application profile linked to an identity in the authentication provider.
type User struct {
	ID        string    `json:"id" firestore:"-"`
	AuthUID   string    `json:"authUid" firestore:"authUid"` // identity provider UID
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email" firestore:"email"`
	Role      Role      `json:"role" firestore:"role"`
	Active    bool      `json:"active" firestore:"active"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// IsAdmin is true only for active administrators.
func (u User) IsAdmin() bool {
	return u.Active && u.Role == RoleAdministrator
}

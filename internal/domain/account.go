package domain

import "time"

// Role enumerates the two fixed account roles.
type Role string

const (
	RoleClient  Role = "Client"
	RoleSupport Role = "Support"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleClient || r == RoleSupport
}

// Account is the credential record shared by clients and support staff.
// Username is unique and immutable; Role is fixed at registration.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	Email        string
	CreatedAt    time.Time
}

// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// Role is the access level of a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// ReservedUsername cannot be registered because it collides with the self endpoint.
const ReservedUsername = "me"

// IsReservedUsername reports whether name is reserved, ignoring case.
func IsReservedUsername(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), ReservedUsername)
}

// User is a registered account. Accounts are created by signup or by an admin.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	Username    string `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email       string `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FirstName   string `gorm:"size:150" json:"first_name"`
	LastName    string `gorm:"size:150" json:"last_name"`
	Bio         string `json:"bio"`
	Role        Role   `gorm:"size:20;not null;default:user" json:"role"`
	IsSuperuser bool   `gorm:"not null;default:false" json:"-"`
	// SecurityStamp salts confirmation codes; rotating it invalidates every code issued before.
	SecurityStamp string    `gorm:"size:64;not null;default:''" json:"-"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// IsAdmin is true for superusers and for the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && (u.IsSuperuser || u.Role == RoleAdmin)
}

// IsModerator is true for the moderator role only.
func (u *User) IsModerator() bool {
	return u != nil && u.Role == RoleModerator
}

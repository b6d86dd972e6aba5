package models

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
)

const (
	PermManageUsers    = "manage_users"
	PermEditBookings   = "edit_bookings"
	PermDeleteBookings = "delete_bookings"
)

// Permissions maps a role to the lifecycle actions and management
// screens it can reach.
func (r Role) Permissions() []string {
	switch r {
	case RoleAdmin:
		return []string{PermManageUsers, PermEditBookings, PermDeleteBookings}
	case RoleManager:
		return []string{PermEditBookings, PermDeleteBookings}
	default:
		return []string{PermEditBookings}
	}
}

func (r Role) Has(perm string) bool {
	for _, p := range r.Permissions() {
		if p == perm {
			return true
		}
	}
	return false
}

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash,omitempty"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	CreatedBy    string     `json:"created_by,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

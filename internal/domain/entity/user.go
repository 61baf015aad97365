package entity

import "time"

// Roles válidos para User.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
	RoleViewer     = "viewer"
)

// User representa un usuario del sistema (pertenece a una Organization).
type User struct {
	ID             string
	OrganizationID string
	Email          string
	PasswordHash   string // bcrypt
	Name           string
	Role           string // superadmin, admin, technician, viewer
	Status         string // active, inactive
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

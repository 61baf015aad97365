package entity

import "time"

// Estados de una organización.
const (
	OrganizationActive    = "active"
	OrganizationSuspended = "suspended"
)

// Organization representa un tenant del CMMS. Tier guarda el último plan
// activado con ActivateTier (vacío si nunca se asignó).
type Organization struct {
	ID        string
	Name      string
	Tier      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

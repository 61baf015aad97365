package entity

import (
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// Tipos y estados de solicitud de módulo.
const (
	RequestTypeTrial      = "trial"
	RequestTypeActivation = "activation"
	RequestTypeUpgrade    = "upgrade"

	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// ModuleRequest solicitud de una organización para probar o activar un módulo.
type ModuleRequest struct {
	ID             string
	OrganizationID string
	RequestedByID  string
	ModuleCode     licensing.ModuleCode
	RequestType    string
	Justification  string
	ExpectedUsage  string
	Status         string
	ReviewNotes    string
	ReviewedByID   *string
	ReviewedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

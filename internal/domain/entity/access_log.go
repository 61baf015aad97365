package entity

import (
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// AccessAction tipo de evento registrado en la bitácora de acceso.
type AccessAction string

const (
	ActionAccessed    AccessAction = "accessed"
	ActionDenied      AccessAction = "denied"
	ActionActivated   AccessAction = "activated"
	ActionDeactivated AccessAction = "deactivated"
)

// ModuleAccessLog es una entrada de la bitácora (solo inserción).
type ModuleAccessLog struct {
	ID             string
	OrganizationID string
	ModuleCode     licensing.ModuleCode
	UserID         string
	Action         AccessAction
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
}

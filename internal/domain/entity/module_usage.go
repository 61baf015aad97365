package entity

import (
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// ModuleUsage contadores diarios de uso por (organización, módulo, día).
type ModuleUsage struct {
	ID             string
	OrganizationID string
	ModuleCode     licensing.ModuleCode
	Date           time.Time // truncada al día en UTC
	ActiveUsers    int64
	Transactions   int64
	APICalls       int64
	StorageUsed    int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UsageCounters contadores opcionales: solo los no nil se sobrescriben.
type UsageCounters struct {
	ActiveUsers  *int64
	Transactions *int64
	APICalls     *int64
	StorageUsed  *int64
}

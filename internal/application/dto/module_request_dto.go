package dto

import "time"

// CreateModuleRequestRequest entrada para solicitar un módulo.
type CreateModuleRequestRequest struct {
	ModuleCode    string `json:"moduleCode" validate:"required"`
	RequestType   string `json:"requestType" validate:"required,oneof=trial activation upgrade"`
	Justification string `json:"justification" validate:"required,min=10,max=2000"`
	ExpectedUsage string `json:"expectedUsage" validate:"omitempty,max=2000"`
}

// ReviewModuleRequestRequest decisión del revisor.
type ReviewModuleRequestRequest struct {
	Status      string     `json:"status" validate:"required,oneof=approved rejected"`
	ReviewNotes string     `json:"reviewNotes" validate:"omitempty,max=2000"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	TrialDays   int        `json:"trialDays" validate:"omitempty,min=1,max=365"`
}

// ModuleRequestResponse salida de una solicitud.
type ModuleRequestResponse struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organizationId"`
	RequestedByID  string     `json:"requestedById"`
	ModuleCode     string     `json:"moduleCode"`
	RequestType    string     `json:"requestType"`
	Justification  string     `json:"justification"`
	ExpectedUsage  string     `json:"expectedUsage,omitempty"`
	Status         string     `json:"status"`
	ReviewNotes    string     `json:"reviewNotes,omitempty"`
	ReviewedByID   *string    `json:"reviewedById,omitempty"`
	ReviewedAt     *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

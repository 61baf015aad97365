package dto

import "time"

// CreatePMScheduleRequest entrada para crear un programa preventivo.
type CreatePMScheduleRequest struct {
	AssetID       string     `json:"asset_id" validate:"required,max=100"`
	Title         string     `json:"title" validate:"required,min=1,max=200"`
	FrequencyDays int        `json:"frequency_days" validate:"required,min=1,max=3650"`
	NextDueAt     *time.Time `json:"next_due_at"`
}

// UpdatePMScheduleRequest entrada para actualizar un programa preventivo.
type UpdatePMScheduleRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=1,max=200"`
	FrequencyDays *int       `json:"frequency_days" validate:"omitempty,min=1,max=3650"`
	NextDueAt     *time.Time `json:"next_due_at"`
}

// PMScheduleResponse salida de un programa preventivo.
type PMScheduleResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	AssetID        string    `json:"asset_id"`
	Title          string    `json:"title"`
	FrequencyDays  int       `json:"frequency_days"`
	NextDueAt      time.Time `json:"next_due_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PMScheduleListResponse lista paginada de programas.
type PMScheduleListResponse struct {
	Items []PMScheduleResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// PMForecastItem próxima ejecución proyectada de un programa.
type PMForecastItem struct {
	ScheduleID string    `json:"schedule_id"`
	AssetID    string    `json:"asset_id"`
	Title      string    `json:"title"`
	DueAt      time.Time `json:"due_at"`
}

// PMForecastResponse ejecuciones previstas dentro de la ventana pedida.
type PMForecastResponse struct {
	Days  int              `json:"days"`
	Items []PMForecastItem `json:"items"`
}

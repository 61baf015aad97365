package entity

import "time"

// PMSchedule programa de mantenimiento preventivo de un activo.
type PMSchedule struct {
	ID             string
	OrganizationID string
	AssetID        string
	Title          string
	FrequencyDays  int
	NextDueAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Advance mueve la próxima fecha según la frecuencia.
func (s *PMSchedule) Advance() {
	s.NextDueAt = s.NextDueAt.AddDate(0, 0, s.FrequencyDays)
}

package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/domain"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

// Ventana del pronóstico en días.
const (
	DefaultForecastDays = 30
	MaxForecastDays     = 365
)

// PMScheduleUseCase casos de uso de programas de mantenimiento preventivo.
type PMScheduleUseCase struct {
	repo repository.PMScheduleRepository
	now  func() time.Time
}

// NewPMScheduleUseCase construye el caso de uso.
func NewPMScheduleUseCase(repo repository.PMScheduleRepository) *PMScheduleUseCase {
	return &PMScheduleUseCase{repo: repo, now: time.Now}
}

// Create crea un programa. Sin NextDueAt la primera ejecución es hoy + frecuencia.
func (uc *PMScheduleUseCase) Create(ctx context.Context, organizationID string, in dto.CreatePMScheduleRequest) (*dto.PMScheduleResponse, error) {
	now := uc.now().UTC()
	next := now.AddDate(0, 0, in.FrequencyDays)
	if in.NextDueAt != nil {
		next = in.NextDueAt.UTC()
	}
	s := &entity.PMSchedule{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		AssetID:        in.AssetID,
		Title:          in.Title,
		FrequencyDays:  in.FrequencyDays,
		NextDueAt:      next,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toPMScheduleResponse(s), nil
}

// GetByID obtiene un programa de la organización.
func (uc *PMScheduleUseCase) GetByID(ctx context.Context, organizationID, id string) (*dto.PMScheduleResponse, error) {
	s, err := uc.repo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return toPMScheduleResponse(s), nil
}

// Update actualiza un programa.
func (uc *PMScheduleUseCase) Update(ctx context.Context, organizationID, id string, in dto.UpdatePMScheduleRequest) (*dto.PMScheduleResponse, error) {
	s, err := uc.repo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if in.Title != nil {
		s.Title = *in.Title
	}
	if in.FrequencyDays != nil {
		s.FrequencyDays = *in.FrequencyDays
	}
	if in.NextDueAt != nil {
		s.NextDueAt = in.NextDueAt.UTC()
	}
	s.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toPMScheduleResponse(s), nil
}

// Complete registra la ejecución y mueve la próxima fecha una frecuencia.
func (uc *PMScheduleUseCase) Complete(ctx context.Context, organizationID, id string) (*dto.PMScheduleResponse, error) {
	s, err := uc.repo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	s.Advance()
	s.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toPMScheduleResponse(s), nil
}

// List lista programas por organización con paginación.
func (uc *PMScheduleUseCase) List(ctx context.Context, organizationID string, limit, offset int) (*dto.PMScheduleListResponse, error) {
	list, err := uc.repo.ListByOrganization(ctx, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PMScheduleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toPMScheduleResponse(s))
	}
	return &dto.PMScheduleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Forecast proyecta las ejecuciones de los próximos days días; las vencidas
// aparecen con su fecha original.
func (uc *PMScheduleUseCase) Forecast(ctx context.Context, organizationID string, days int) (*dto.PMForecastResponse, error) {
	if days <= 0 {
		days = DefaultForecastDays
	}
	if days > MaxForecastDays {
		days = MaxForecastDays
	}
	until := uc.now().UTC().AddDate(0, 0, days)
	list, err := uc.repo.ListDueBefore(ctx, organizationID, until)
	if err != nil {
		return nil, err
	}
	items := []dto.PMForecastItem{}
	for _, s := range list {
		if s.FrequencyDays <= 0 {
			continue
		}
		for due := s.NextDueAt; !due.After(until); due = due.AddDate(0, 0, s.FrequencyDays) {
			items = append(items, dto.PMForecastItem{
				ScheduleID: s.ID,
				AssetID:    s.AssetID,
				Title:      s.Title,
				DueAt:      due,
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].DueAt.Before(items[j].DueAt) })
	return &dto.PMForecastResponse{Days: days, Items: items}, nil
}

func toPMScheduleResponse(s *entity.PMSchedule) *dto.PMScheduleResponse {
	if s == nil {
		return nil
	}
	return &dto.PMScheduleResponse{
		ID:             s.ID,
		OrganizationID: s.OrganizationID,
		AssetID:        s.AssetID,
		Title:          s.Title,
		FrequencyDays:  s.FrequencyDays,
		NextDueAt:      s.NextDueAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
